package domain

import (
	"testing"

	"admin_console_backend/platform/apperr"
)

var allStatuses = []Status{
	StatusNew, StatusAssigned, StatusContacted,
	StatusQualified, StatusConverted, StatusRejected,
}

func TestCanTransitionFullTable(t *testing.T) {
	legal := map[[2]Status]bool{
		{StatusNew, StatusAssigned}:        true,
		{StatusAssigned, StatusContacted}:  true,
		{StatusContacted, StatusQualified}: true,
		{StatusContacted, StatusRejected}:  true,
		{StatusQualified, StatusConverted}: true,
		{StatusQualified, StatusRejected}:  true,
		{StatusRejected, StatusNew}:        true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		name            string
		from, to        Status
		forbidConverted bool
		wantErr         bool
		wantKind        apperr.Kind
	}{
		{"legal forward move", StatusNew, StatusAssigned, true, false, apperr.KindUnknown},
		{"rejection from contacted", StatusContacted, StatusRejected, true, false, apperr.KindUnknown},
		{"reactivation", StatusRejected, StatusNew, true, false, apperr.KindUnknown},
		{"conversion via workflow", StatusQualified, StatusConverted, false, false, apperr.KindUnknown},
		{"direct write to converted", StatusQualified, StatusConverted, true, true, apperr.KindInvalidTransition},
		{"skipping a stage", StatusNew, StatusQualified, true, true, apperr.KindInvalidTransition},
		{"backward move", StatusQualified, StatusContacted, true, true, apperr.KindInvalidTransition},
		{"out of converted", StatusConverted, StatusNew, true, true, apperr.KindInvalidTransition},
		{"unknown target", StatusNew, Status("archived"), true, true, apperr.KindValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(tc.from, tc.to, tc.forbidConverted)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("CheckTransition(%s, %s) = %v, want nil", tc.from, tc.to, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("CheckTransition(%s, %s) = nil, want error", tc.from, tc.to)
			}
			if got := apperr.GetKind(err); got != tc.wantKind {
				t.Errorf("kind = %d, want %d", got, tc.wantKind)
			}
		})
	}
}

func TestIsTerminalAndIsOpen(t *testing.T) {
	for _, s := range allStatuses {
		if got := IsTerminal(s); got != (s == StatusConverted) {
			t.Errorf("IsTerminal(%s) = %v", s, got)
		}
		wantOpen := s != StatusConverted && s != StatusRejected
		if got := IsOpen(s); got != wantOpen {
			t.Errorf("IsOpen(%s) = %v, want %v", s, got, wantOpen)
		}
	}
}

func TestLegalNextStatusesIsACopy(t *testing.T) {
	next := LegalNextStatuses(StatusContacted)
	if !next[StatusQualified] || !next[StatusRejected] || len(next) != 2 {
		t.Fatalf("LegalNextStatuses(contacted) = %v", next)
	}

	next[StatusConverted] = true
	if LegalNextStatuses(StatusContacted)[StatusConverted] {
		t.Error("mutating the returned map leaked into the transition table")
	}
}
