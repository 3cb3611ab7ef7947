// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"admin_console_backend/platform/apperr"
)

// Status is a lead's position in the qualification pipeline.
type Status string

const (
	StatusNew       Status = "new"
	StatusAssigned  Status = "assigned"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusRejected  Status = "rejected"
)

// legalTransitions is the full transition table. The only backward edge is
// rejected→new (reactivation). converted is terminal.
var legalTransitions = map[Status][]Status{
	StatusNew:       {StatusAssigned},
	StatusAssigned:  {StatusContacted},
	StatusContacted: {StatusQualified, StatusRejected},
	StatusQualified: {StatusConverted, StatusRejected},
	StatusConverted: {},
	StatusRejected:  {StatusNew},
}

// IsKnownStatus reports whether s is one of the pipeline statuses.
func IsKnownStatus(s Status) bool {
	_, ok := legalTransitions[s]
	return ok
}

// LegalNextStatuses returns the set of statuses reachable from current.
// The returned map is freshly allocated; callers may mutate it.
func LegalNextStatuses(current Status) map[Status]bool {
	next := make(map[Status]bool, len(legalTransitions[current]))
	for _, s := range legalTransitions[current] {
		next[s] = true
	}
	return next
}

// CanTransition reports whether the (from, to) pair is in the transition table.
func CanTransition(from, to Status) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition validates a status move, returning a typed error for an
// illegal pair. Reaching converted is legal from qualified in the table, but
// only the conversion workflow may take that edge; callers outside the
// workflow must use forbidConverted.
func CheckTransition(from, to Status, forbidConverted bool) error {
	if !IsKnownStatus(to) {
		return apperr.Validation("unknown lead status: " + string(to))
	}
	if forbidConverted && to == StatusConverted {
		// A bare status write to converted bypasses tenant provisioning.
		return apperr.InvalidTransition(string(from), string(to))
	}
	if !CanTransition(from, to) {
		return apperr.InvalidTransition(string(from), string(to))
	}
	return nil
}

// IsTerminal reports whether no further pipeline movement is expected.
// rejected still allows reactivation to new, so only converted is terminal.
func IsTerminal(s Status) bool {
	return s == StatusConverted
}

// IsOpen reports whether a lead still counts against an admin's open
// assignment load.
func IsOpen(s Status) bool {
	return s != StatusConverted && s != StatusRejected
}
