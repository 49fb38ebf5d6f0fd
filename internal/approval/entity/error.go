package entity

import "errors"

var (
	ErrWorkflowNotFound         = errors.New("approval: workflow not found")
	ErrWorkflowAlreadyFinalized = errors.New("approval: workflow already finalized")
	ErrSessionExpired           = errors.New("approval: session expired")
	ErrResendTooSoon            = errors.New("approval: otp resend requested too soon")
	ErrChallengeExpired         = errors.New("approval: otp expired")
	ErrAttemptsExhausted        = errors.New("approval: otp attempts exhausted")
	ErrNoMatch                  = errors.New("approval: otp does not match")
	ErrOTPNotRequested          = errors.New("approval: otp not requested")
	ErrDeliveryFailed           = errors.New("approval: otp delivery failed")
	ErrChequeNotFound           = errors.New("approval: cheque not found")
	ErrDuplicateWorkflow        = errors.New("approval: cheque already has a live workflow")
	ErrDecisionAlreadyRecorded  = errors.New("approval: decision already recorded")
)
