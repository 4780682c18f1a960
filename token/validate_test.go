package token

import (
	"strings"
	"testing"
	"time"
)

func issueSessionToken(t *testing.T, keychain *Keychain, username string) string {
	t.Helper()

	signed, err := NewSessionStrategy(keychain).Generate(SessionClaims(Principal{
		ID:       "u-42",
		Username: username,
		Roles:    []string{"USER"},
		State:    "ACTIVE",
	}), username)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	return signed
}

func TestSessionValidatorRoundTrip(t *testing.T) {
	keychain := newTestKeychain(t)
	validator := NewSessionValidator(keychain, nil)

	signed := issueSessionToken(t, keychain, "margarita")
	if !validator.Validate(signed, "margarita") {
		t.Fatal("freshly issued session token must validate")
	}
}

func TestSessionValidatorSubjectMismatch(t *testing.T) {
	keychain := newTestKeychain(t)
	validator := NewSessionValidator(keychain, nil)

	signed := issueSessionToken(t, keychain, "margarita")
	if validator.Validate(signed, "someone-else") {
		t.Fatal("token issued for another subject must not validate")
	}
}

func TestSessionValidatorTamperedSignature(t *testing.T) {
	keychain := newTestKeychain(t)
	validator := NewSessionValidator(keychain, nil)

	signed := issueSessionToken(t, keychain, "margarita")
	segments := strings.Split(signed, ".")
	if len(segments) != 3 {
		t.Fatalf("expected a compact JWS, got %d segments", len(segments))
	}

	// Flip one byte in the middle of the signature segment.
	sig := []byte(segments[2])
	mid := len(sig) / 2
	if sig[mid] == 'A' {
		sig[mid] = 'B'
	} else {
		sig[mid] = 'A'
	}
	tampered := segments[0] + "." + segments[1] + "." + string(sig)

	if validator.Validate(tampered, "margarita") {
		t.Fatal("tampered signature validated")
	}
}

func TestSessionValidatorExpiredToken(t *testing.T) {
	cfg := testKeychainConfig(t)
	cfg.SessionTTL = time.Millisecond
	keychain, err := NewKeychain(cfg)
	if err != nil {
		t.Fatalf("NewKeychain error: %v", err)
	}
	validator := NewSessionValidator(keychain, nil)

	signed := issueSessionToken(t, keychain, "margarita")
	time.Sleep(20 * time.Millisecond)

	if validator.Validate(signed, "margarita") {
		t.Fatal("expired session token must not validate")
	}
}

func TestSessionValidatorGarbageInput(t *testing.T) {
	validator := NewSessionValidator(newTestKeychain(t), nil)

	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if validator.Validate(tok, "margarita") {
			t.Fatalf("garbage input %q validated", tok)
		}
	}
}

func TestParseSubjectEmptySubject(t *testing.T) {
	keychain := newTestKeychain(t)

	signed, err := NewEmailVerificationStrategy(keychain).Generate(nil, "")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := ParseSubject(keychain, CategoryEmailVerification, signed); err == nil {
		t.Fatal("expected a token without subject to be rejected")
	}
}
