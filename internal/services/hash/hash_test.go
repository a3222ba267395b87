package hash

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hs := NewHashService()

	digest, err := hs.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if string(digest) == "hunter22" {
		t.Fatal("digest must not equal the plaintext")
	}

	if !hs.CheckPassword("hunter22", digest) {
		t.Fatal("expected matching password to verify")
	}
	if hs.CheckPassword("wrong-pass", digest) {
		t.Fatal("expected non-matching password to fail")
	}
	if hs.CheckPassword("hunter22", nil) {
		t.Fatal("expected nil digest to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	hs := NewHashService()

	a, err := hs.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	b, err := hs.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if string(a) == string(b) {
		t.Fatal("two digests of the same password must differ")
	}
}
