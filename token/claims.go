package token

// Claim keys as they appear on the wire.
const (
	claimUserID       = "userId"
	claimUsername     = "username"
	claimEmail        = "email"
	claimUserState    = "userState"
	claimUserRoles    = "userRoles"
	claimAuthorities  = "authorities"
	claimTokenPurpose = "tokenPurpose"
	claimTokenState   = "tokenState"
	claimRoleSnapshot = "roles"
)

// statePendingName is the initial lifecycle state embedded in every
// persisted-token claim set.
const statePendingName = "PENDING"

// Principal is the authenticated-subject view that session claims are built
// from.
type Principal struct {
	ID          string
	Username    string
	Email       string
	Roles       []string
	Authorities []string
	State       string
}

// SessionClaims builds the claim set for a session JWT. The map is sparse:
// claims whose value is absent are omitted entirely, never set to null.
// Pure function, no I/O.
func SessionClaims(p Principal) map[string]any {
	claims := make(map[string]any, 5)

	putString(claims, claimUserID, p.ID)
	putString(claims, claimUsername, p.Username)
	putStrings(claims, claimUserRoles, p.Roles)
	putStrings(claims, claimAuthorities, p.Authorities)
	putString(claims, claimUserState, p.State)

	return claims
}

// PersistedClaims builds the claim set for an email-verification or
// password-reset token: subject identity, the token purpose, and the initial
// PENDING state. Roles and authorities are deliberately not included.
// Pure function, no I/O.
func PersistedClaims(userID, username, email, purpose string) map[string]any {
	claims := make(map[string]any, 5)

	putString(claims, claimUserID, userID)
	putString(claims, claimUsername, username)
	putString(claims, claimEmail, email)
	putString(claims, claimTokenPurpose, purpose)
	claims[claimTokenState] = statePendingName

	return claims
}

func putString(claims map[string]any, key, value string) {
	if value != "" {
		claims[key] = value
	}
}

func putStrings(claims map[string]any, key string, values []string) {
	if len(values) > 0 {
		claims[key] = values
	}
}
