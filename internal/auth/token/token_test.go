package token

import (
	"strings"
	"testing"
)

func TestGenerateRandomToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := GenerateRandomToken(12)
		if err != nil {
			t.Fatalf("GenerateRandomToken() error = %v", err)
		}
		// 12 bytes encode to 16 base64url characters, no padding.
		if len(tok) != 16 {
			t.Fatalf("token length = %d, want 16", len(tok))
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Errorf("token %q contains non-url-safe characters", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true
	}
}

func TestHashSHA256(t *testing.T) {
	a := HashSHA256("refresh-token-value")
	b := HashSHA256("refresh-token-value")
	if a != b {
		t.Error("hash is not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex characters", len(a))
	}
	if a == HashSHA256("other-value") {
		t.Error("distinct inputs collided")
	}
}
