package inbound

import (
	"context"

	"github.com/shandysiswandi/chequeflow/internal/approval/usecase"
	"github.com/shandysiswandi/chequeflow/internal/pkg/router"
)

type uc interface {
	Create(ctx context.Context, in usecase.CreateInput) (*usecase.CreateOutput, error)
	GetStatus(ctx context.Context, id string) (*usecase.StatusOutput, error)
	GetCheque(ctx context.Context, id string) (*usecase.ChequeOutput, error)

	Approve(ctx context.Context, id string) (*usecase.ApproveOutput, error)
	Reject(ctx context.Context, id string) (*usecase.RejectOutput, error)

	ResendOTP(ctx context.Context, id string) (*usecase.ResendOTPOutput, error)
	SubmitOTP(ctx context.Context, in usecase.SubmitOTPInput) (*usecase.SubmitOTPOutput, error)
}

// RegisterHTTPEndpoint mounts the approval routes. Creating a link is a
// back-office call and needs one of apiKeys; the other routes are reached
// through the link id alone.
func RegisterHTTPEndpoint(r *router.Router, uc uc, apiKeys []string) {
	end := &HTTPEndpoint{uc: uc}

	// Back office
	r.POST("/api/v1/approvals", end.Create, router.RequireAPIKey(apiKeys))

	// Payer page
	r.GET("/api/v1/approvals/:id", end.GetStatus)
	r.GET("/api/v1/approvals/:id/cheque", end.GetCheque)
	r.POST("/api/v1/approvals/:id/approve", end.Approve)
	r.POST("/api/v1/approvals/:id/reject", end.Reject)

	// OTP
	r.POST("/api/v1/approvals/:id/otp/resend", end.ResendOTP)
	r.POST("/api/v1/approvals/:id/otp/verify", end.SubmitOTP)
}
