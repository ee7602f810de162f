package auth

import "testing"

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Admin@Example.TEST "); got != "admin@example.test" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}

func TestPrincipalValid(t *testing.T) {
	if (Principal{Email: "a@example.test"}).Valid() {
		t.Fatalf("principal without access token should be invalid")
	}
	if !(Principal{Email: "a@example.test", AccessToken: "tok"}).Valid() {
		t.Fatalf("principal with email and token should be valid")
	}
}
