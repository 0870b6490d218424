// Package accounts provides the user-account and credential primitives
// for an API backend: password hashing, field validation, active-email
// uniqueness, and refresh token identity (JTI) lifecycle management.
//
// Accounts:
//   - Account rows are persisted via Bun. An account participates in
//     authentication and in the email uniqueness constraint only while
//     activated; deactivated rows are invisible to both.
//   - CreateAccountHandler and UpdateAccountHandler run the full write
//     pipeline (normalize, validate, uniqueness, hash, persist) inside
//     a single transaction. Validation failures come back as a
//     per-field validation.Errors map carrying structured errors.
//
// Credentials:
//   - Secrets are bcrypt hashed; plaintext never touches storage or
//     logs. VerifyPassword is a boolean outcome so a wrong password is
//     indistinguishable from an unknown account at the API boundary.
//
// Refresh sessions:
//   - Each account trusts at most one refresh token identity at a
//     time. RefreshIdentityManager remembers the jti of the latest
//     issued refresh token and forgets it on logout; a presented token
//     whose jti is no longer remembered is revoked.
package accounts
