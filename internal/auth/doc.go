// Package auth provides credential checks and request identity for the front desk.
//
// # Passwords
//
// Passwords are stored as bcrypt hashes. Authenticate performs a bcrypt
// comparison even for unknown usernames (against a fixed dummy hash) so the
// response time does not reveal which usernames exist, and returns the same
// ErrInvalidCredentials for both failure cases.
//
// EnsureDefaultUser seeds the first admin account on an empty database. The
// store performs the emptiness check and the insert as one statement, so
// concurrent starts cannot create two accounts.
//
// # Identity
//
// The session guard resolves the session cookie to an Identity and attaches
// it with WithIdentity. Handlers read it with FromContext.
//
// # Notices
//
// One-time notices ("Visitor added successfully") survive a redirect inside
// a cookie holding an HS256 JWT signed with the configured secret. The token
// expires after NoticeTTL; tampered or expired tokens are rejected and the
// notices are dropped.
package auth
