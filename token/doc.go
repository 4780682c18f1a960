// Package token mints and verifies the three bearer-token categories used by
// the registration service: stateless session JWTs signed with the EC session
// key (ES256), and HMAC-signed (HS256) email-verification and password-reset
// tokens whose lifecycle is tracked in durable storage.
//
// The [Keychain] resolves key material, signature algorithm and expiration per
// category and is built once at startup. One [Strategy] exists per category;
// the [Generator] holds an exhaustive, duplicate-free category map of them,
// verified at construction.
//
// # What this package must NOT do
//
//   - Touch persisted token records — lifecycle checks live with the store.
//   - Mutate any state after construction.
package token
