package usecase

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
)

func errWorkflowNotFound() error {
	return goerror.NewBusinessWrap(entity.ErrWorkflowNotFound, "Approval link not found", goerror.CodeNotFound)
}

func errAlreadyFinalized(state entity.State) error {
	return goerror.NewBusinessWrap(entity.ErrWorkflowAlreadyFinalized,
		"This approval link is no longer active", goerror.CodeConflict, "state", state.String())
}

func errSessionExpired() error {
	return goerror.NewBusinessWrap(entity.ErrSessionExpired, "This approval session has expired", goerror.CodeGone)
}

func errResendTooSoon(wait time.Duration) error {
	secs := int64((wait + time.Second - 1) / time.Second)
	return goerror.NewBusinessWrap(entity.ErrResendTooSoon, "Please wait before requesting a new code",
		goerror.CodeTooManyRequest, "retry_after_seconds", strconv.FormatInt(secs, 10))
}

func errChallengeExpired() error {
	return goerror.NewBusinessWrap(entity.ErrChallengeExpired,
		"Verification code has expired, request a new one", goerror.CodeExpired)
}

func errAttemptsExhausted() error {
	return goerror.NewBusinessWrap(entity.ErrAttemptsExhausted,
		"Too many incorrect attempts, request a new code", goerror.CodeLocked, "attempts_remaining", "0")
}

func errNoMatch(remaining int) error {
	return goerror.NewBusinessWrap(entity.ErrNoMatch, "Verification code is incorrect",
		goerror.CodeInvalidInput, "attempts_remaining", strconv.Itoa(remaining))
}

func errOTPNotRequested() error {
	return goerror.NewBusinessWrap(entity.ErrOTPNotRequested,
		"Approve the cheque before using a verification code", goerror.CodeConflict)
}

func errDeliveryFailed(cause error) error {
	return goerror.NewBusinessWrap(fmt.Errorf("%w: %w", entity.ErrDeliveryFailed, cause),
		"Verification code could not be delivered, request a new one", goerror.CodeDeliveryFailed)
}

func errChequeNotFound() error {
	return goerror.NewBusinessWrap(entity.ErrChequeNotFound, "Cheque not found", goerror.CodeNotFound)
}

func errDuplicateWorkflow() error {
	return goerror.NewBusinessWrap(entity.ErrDuplicateWorkflow,
		"An approval link is already active for this cheque", goerror.CodeConflict)
}
