// Package otp issues and verifies short numeric one-time codes.
//
// An Engine creates Challenges. A Challenge keeps only the digest of its
// current code together with the code deadline, the resend cooldown and the
// attempt counter. Challenges are not safe for concurrent use; the owner must
// serialize Resend and Verify calls on the same challenge.
package otp
