// Package users provides a user-account backend: registration, login,
// profile retrieval, partial updates, and soft deletion, backed by a
// relational store through Bun.
//
// Account lifecycle:
//   - Accounts carry an Active flag that is persisted via Bun. Deactivated
//     accounts are never removed; they are invisible to every read, update,
//     and authentication flow, so a second deactivation of the same id
//     reports the account as not found.
//
// Authentication:
//   - Login collapses unknown email, wrong password, and inactive account
//     into a single invalid-credentials error so callers cannot probe which
//     case occurred.
//   - Issued JWTs embed only the account identifier. Every token validation
//     re-reads the account from the store, so a deactivation takes effect
//     immediately regardless of the token's remaining lifetime.
package users
