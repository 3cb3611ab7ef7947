package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("S3cret!pass")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "S3cret!pass" {
		t.Fatal("Hash() returned the plaintext")
	}
	if err := Compare(hash, "S3cret!pass"); err != nil {
		t.Errorf("Compare() with correct password = %v", err)
	}
	if err := Compare(hash, "wrong"); err == nil {
		t.Error("Compare() accepted a wrong password")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("same input")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	b, err := Hash("same input")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}
