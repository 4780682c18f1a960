package regauth

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	verificationSubject  = "User verification email"
	passwordResetSubject = "Password reset email"
)

// VerificationLink builds the account-verification redemption URL embedded
// in the notification body.
func VerificationLink(baseURL, tok string) string {
	return redemptionLink(baseURL, tok, "ACCOUNT_VERIFICATION")
}

// PasswordResetLink builds the password-recovery redemption URL embedded in
// the notification body.
func PasswordResetLink(baseURL, tok string) string {
	return redemptionLink(baseURL, tok, "PASSWORD_RECOVERY")
}

func redemptionLink(baseURL, tok, purpose string) string {
	return fmt.Sprintf("%s/api/v1/user/verify-token?token=%s&token_purpose=%s",
		strings.TrimSuffix(baseURL, "/"),
		url.QueryEscape(tok),
		purpose,
	)
}
