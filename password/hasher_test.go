package password

import (
	"errors"
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Memory:      16 * 1024,
		Iterations:  2,
		Parallelism: 2,
		HashLength:  32,
		SaltLength:  16,
		Secret:      []byte("unit-test-pepper-0123456789"),
	}
}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()

	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	return hasher
}

func TestEncodeAndMatches(t *testing.T) {
	hasher := newTestHasher(t)

	encoded, err := hasher.Encode("correct horse battery")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	if parts := strings.Split(encoded, ":"); len(parts) != 3 {
		t.Fatalf("expected 3 colon-joined segments, got %d: %s", len(parts), encoded)
	}

	ok, err := hasher.Matches("correct horse battery", encoded)
	if err != nil {
		t.Fatalf("Matches error: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}
}

func TestMatchesWrongPassword(t *testing.T) {
	hasher := newTestHasher(t)

	encoded, err := hasher.Encode("the-real-password")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	ok, err := hasher.Matches("not-the-password", encoded)
	if err != nil {
		t.Fatalf("Matches error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestEncodeIsSalted(t *testing.T) {
	hasher := newTestHasher(t)

	first, err := hasher.Encode("same-input")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	second, err := hasher.Encode("same-input")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	if first == second {
		t.Fatal("two encodings of the same password must differ")
	}
}

func TestMatchesMalformedCredential(t *testing.T) {
	hasher := newTestHasher(t)

	cases := []string{
		"",
		"only-one-segment",
		"two:segments",
		"a:b:c:d",
		"!!!:!!!:!!!",
	}

	for _, encoded := range cases {
		ok, err := hasher.Matches("whatever", encoded)
		if ok {
			t.Fatalf("malformed credential %q must never verify", encoded)
		}
		if !errors.Is(err, ErrMalformedCredential) {
			t.Fatalf("expected ErrMalformedCredential for %q, got %v", encoded, err)
		}
	}
}

func TestMatchesTamperedDigest(t *testing.T) {
	hasher := newTestHasher(t)

	encoded, err := hasher.Encode("tamper-target")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	// Re-encode with a digest from a different password but the original
	// salt and secret segments.
	other, err := hasher.Encode("another-password")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	parts := strings.Split(encoded, ":")
	parts[2] = strings.Split(other, ":")[2]

	ok, err := hasher.Matches("tamper-target", strings.Join(parts, ":"))
	if err != nil {
		t.Fatalf("Matches error: %v", err)
	}
	if ok {
		t.Fatal("swapped digest must fail verification")
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	weak := []Config{
		{Memory: 1024, Iterations: 2, Parallelism: 1, HashLength: 32, SaltLength: 16, Secret: []byte("0123456789abcdef")},
		{Memory: 16 * 1024, Iterations: 0, Parallelism: 1, HashLength: 32, SaltLength: 16, Secret: []byte("0123456789abcdef")},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 0, HashLength: 32, SaltLength: 16, Secret: []byte("0123456789abcdef")},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 1, HashLength: 8, SaltLength: 16, Secret: []byte("0123456789abcdef")},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 1, HashLength: 32, SaltLength: 8, Secret: []byte("0123456789abcdef")},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 1, HashLength: 32, SaltLength: 16, Secret: []byte("short")},
	}

	for i, cfg := range weak {
		if _, err := NewHasher(cfg); err == nil {
			t.Fatalf("case %d: expected weak config to be rejected", i)
		}
	}
}
