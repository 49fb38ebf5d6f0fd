// Package validator provides a small validation abstraction for request and
// dependency structs.
//
// Business code depends on the Validator interface. The go-playground v10
// implementation adds the "otpcode" and "chequeref" tags and reports failures
// as a snake_case field to message map.
package validator

// Validator validates a struct according to its `validate` tags.
type Validator interface {
	Validate(data any) error
}
