// Package tokenstore persists the lifecycle of email-verification and
// password-reset tokens alongside the directory accounts they belong to.
//
// Two backends implement the same Store contract: SQLite for a single-file
// relational deployment and Redis for shared state across replicas. Records
// move PENDING -> VERIFIED on redemption, or PENDING -> FORCIBLY_EXPIRED
// when the background sweep retires them; terminal states never transition
// again.
package tokenstore
