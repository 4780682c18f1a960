package token

// Category selects the signing key source, signature algorithm and
// expiration policy for a token.
type Category uint8

const (
	// CategorySession is the stateless login JWT, signed with the EC
	// session key pair.
	CategorySession Category = iota
	// CategoryEmailVerification is the persisted account-verification token.
	CategoryEmailVerification
	// CategoryPasswordReset is the persisted password-recovery token.
	CategoryPasswordReset
)

func (c Category) String() string {
	switch c {
	case CategorySession:
		return "SESSION"
	case CategoryEmailVerification:
		return "EMAIL_VERIFICATION"
	case CategoryPasswordReset:
		return "PASSWORD_RESET"
	default:
		return "UNKNOWN"
	}
}
