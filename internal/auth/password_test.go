package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with the right password error = %v", err)
	}
	if err := ps.Verify(hash, "wrong password"); err == nil {
		t.Error("Verify() with the wrong password should fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	first, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password are identical — salt is missing")
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Fatal("Hash() should reject passwords over 72 bytes")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	if err := ps.Verify("not-a-bcrypt-hash", "anything"); err == nil {
		t.Fatal("Verify() should fail on a malformed stored hash")
	}
}
