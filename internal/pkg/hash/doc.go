// Package hash provides keyed digests for short-lived secrets.
//
// One-time codes are never kept in plaintext: the challenge stores the
// HMAC-SHA256 digest and verification recomputes it from the submitted value
// with a constant-time comparison.
package hash

// Hash digests a secret and verifies a plaintext against a stored digest.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
