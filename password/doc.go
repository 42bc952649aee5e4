// Package password implements password hashing and verification with bcrypt.
//
// # Output format
//
// Hashes are encoded in the bcrypt modular-crypt format:
//
//	$2a$<cost>$<22-char salt><31-char digest>
//
// The salt is generated fresh on every call, so hashing the same password
// twice produces two different encoded strings that both verify against the
// original password. The [Hasher] supports transparent cost upgrades: if the
// stored hash was produced with a lower cost, [Hasher.NeedsRehash] returns
// true so the caller can re-hash on the next successful verification.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy and
// failure accounting are the Manager's responsibility.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other credkit package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
