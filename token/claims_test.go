package token

import (
	"reflect"
	"testing"
)

func TestSessionClaimsComplete(t *testing.T) {
	claims := SessionClaims(Principal{
		ID:          "u-42",
		Username:    "margarita",
		Roles:       []string{"USER", "ADMIN"},
		Authorities: []string{"user:read", "user:write"},
		State:       "ACTIVE",
	})

	want := map[string]any{
		"userId":      "u-42",
		"username":    "margarita",
		"userRoles":   []string{"USER", "ADMIN"},
		"authorities": []string{"user:read", "user:write"},
		"userState":   "ACTIVE",
	}
	if !reflect.DeepEqual(claims, want) {
		t.Fatalf("SessionClaims = %#v, want %#v", claims, want)
	}
}

func TestSessionClaimsSparse(t *testing.T) {
	claims := SessionClaims(Principal{Username: "bare"})

	if len(claims) != 1 {
		t.Fatalf("expected only the username claim, got %#v", claims)
	}
	for _, absent := range []string{"userId", "userRoles", "authorities", "userState"} {
		if _, ok := claims[absent]; ok {
			t.Fatalf("absent value produced claim %q: %#v", absent, claims)
		}
	}
}

func TestPersistedClaims(t *testing.T) {
	claims := PersistedClaims("u-42", "margarita", "m@example.com", "ACCOUNT_VERIFICATION")

	want := map[string]any{
		"userId":       "u-42",
		"username":     "margarita",
		"email":        "m@example.com",
		"tokenPurpose": "ACCOUNT_VERIFICATION",
		"tokenState":   "PENDING",
	}
	if !reflect.DeepEqual(claims, want) {
		t.Fatalf("PersistedClaims = %#v, want %#v", claims, want)
	}
}

func TestPersistedClaimsExcludeRoles(t *testing.T) {
	claims := PersistedClaims("u-42", "margarita", "m@example.com", "PASSWORD_RECOVERY")

	for _, forbidden := range []string{"userRoles", "authorities", "roles"} {
		if _, ok := claims[forbidden]; ok {
			t.Fatalf("persisted claims must not carry %q", forbidden)
		}
	}
}
