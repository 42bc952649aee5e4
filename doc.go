// Package credkit provides a small credential manager that composes salted
// adaptive password hashing (bcrypt) and signed, time-bound session tokens
// (HS256 JWT) behind a single facade.
//
// The package is designed for concurrent server workloads: Manager methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. A Manager holds exactly one immutable signing secret for its
// lifetime; every operation is a pure function of its arguments and that secret.
//
// # Architecture boundaries
//
// credkit is the public surface. It exposes [Manager], [Builder], [Config], and
// value types (MetricsSnapshot, AuditEvent). Hashing lives in the password
// sub-package and token signing in the jwt sub-package; neither imports the
// root package.
//
// # What this package must NOT do
//
//   - Store credentials or sessions, keep revocation lists, or rate-limit
//     callers — those are external collaborators consuming this facade.
//   - Surface credential rejection as an error. A wrong password, an expired
//     token, and a forged token are expected outcomes communicated through
//     negative return values; callers branch on the value, never on an error.
//   - Log plaintext passwords, hashes, or token contents.
//
// # Performance contract
//
// VerifyToken is the hot path. It performs one HMAC computation and no I/O;
// latency is observable through the optional metrics histogram. HashPassword
// and VerifyPassword cost is governed by the configured bcrypt work factor,
// which slows brute force deliberately.
package credkit
