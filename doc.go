// Package regauth is the credential-issuance and verification core of a
// user-registration service.
//
// The Engine mints and validates three categories of bearer tokens: stateless
// session JWTs signed with an EC key loaded from a PKCS#12 container, and two
// persisted HMAC-signed token categories (account verification and password
// recovery) whose lifecycle is tracked in a token store. It also hashes and
// verifies passwords through a bounded argon2id worker pool, retires expired
// pending tokens with a background sweep, and queues redemption-link
// notifications to a consumer-supplied sender.
//
// Consumers wire their own user directory, token record store, and sender
// through the Builder:
//
//	engine, err := regauth.New().
//		WithConfig(cfg).
//		WithStore(store).
//		WithDirectory(directory).
//		WithSender(sender).
//		Build()
//
// All key material is loaded inside Build; an Engine that exists is ready.
package regauth
