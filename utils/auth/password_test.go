package auth

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cure-pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cure-pass" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword("s3cure-pass", hash) {
		t.Error("expected the original password to verify")
	}
	if CheckPassword("wrong-pass", hash) {
		t.Error("expected a wrong password to fail")
	}
}
