// Package jwt manages session-token issuance and verification using a symmetric
// HS256 secret and strict validation semantics suitable for low-latency
// authentication paths.
//
// # Wire format
//
// Tokens are compact JWS strings: three base64url segments (header, payload,
// signature) joined by dots. The payload always carries a "user_id" claim and
// an "exp" claim; both are required for a token to verify.
//
// # Architecture boundaries
//
// This package owns signing and parsing only. The collapsed expired-vs-invalid
// result contract, metrics, and audit emission belong to the Manager in the
// root package.
package jwt
