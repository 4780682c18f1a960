// Package password implements password hashing and verification with Argon2id.
//
// # Output format
//
// Encoded credentials are three independently base64-encoded segments joined
// with a colon:
//
//	base64(salt):base64(secret):base64(hash)
//
// The salt is random per encoding; the secret is a fixed server-held pepper
// folded into the hash input; the hash is the Argon2id digest of the raw
// password, the salt and the secret.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (length,
// reuse history) is enforced by the caller. [Pool] bounds how many hashes run
// concurrently so the memory-hard work cannot starve latency-sensitive paths.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other regauth package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
