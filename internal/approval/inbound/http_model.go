package inbound

import (
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/chequeflow/internal/approval/usecase"
)

type CreateRequest struct {
	ChequeRef      string `json:"cheque_ref"`
	SessionMinutes int    `json:"session_minutes,omitempty"`
}

type CreateResponse struct {
	ID        string    `json:"id"`
	ChequeRef string    `json:"cheque_ref"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (CreateResponse) StatusCode() int { return http.StatusCreated }

func (CreateResponse) Message() string { return "Approval link created" }

type OTPStatusResponse struct {
	MaskedDestination string    `json:"masked_destination"`
	CodeExpiresAt     time.Time `json:"code_expires_at"`
	ResendAvailableAt time.Time `json:"resend_available_at"`
	AttemptsRemaining int       `json:"attempts_remaining"`
	Exhausted         bool      `json:"exhausted"`
}

type StatusResponse struct {
	ID               string             `json:"id"`
	ChequeRef        string             `json:"cheque_ref"`
	State            string             `json:"state"`
	Decision         *string            `json:"decision,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	ExpiresAt        time.Time          `json:"expires_at"`
	DecidedAt        *time.Time         `json:"decided_at,omitempty"`
	RemainingSeconds int64              `json:"remaining_seconds"`
	Urgency          string             `json:"urgency"`
	OTP              *OTPStatusResponse `json:"otp,omitempty"`
}

func newStatusResponse(s *usecase.StatusOutput) StatusResponse {
	resp := StatusResponse{
		ID:               s.ID,
		ChequeRef:        s.ChequeRef,
		State:            s.State.String(),
		Decision:         lo.EmptyableToPtr(s.Decision.String()),
		CreatedAt:        s.CreatedAt,
		ExpiresAt:        s.ExpiresAt,
		DecidedAt:        s.DecidedAt,
		RemainingSeconds: s.RemainingSeconds,
		Urgency:          s.Urgency.String(),
	}
	if s.OTP != nil {
		resp.OTP = &OTPStatusResponse{
			MaskedDestination: s.OTP.MaskedDestination,
			CodeExpiresAt:     s.OTP.CodeExpiresAt,
			ResendAvailableAt: s.OTP.ResendAvailableAt,
			AttemptsRemaining: s.OTP.AttemptsRemaining,
			Exhausted:         s.OTP.Exhausted,
		}
	}
	return resp
}

type ChequeResponse struct {
	Ref           string    `json:"ref"`
	Number        string    `json:"number"`
	HolderName    string    `json:"holder_name"`
	PayeeName     string    `json:"payee_name"`
	MaskedMobile  string    `json:"masked_mobile"`
	AmountMinor   int64     `json:"amount_minor"`
	Currency      string    `json:"currency"`
	IssueDate     string    `json:"issue_date"`
	FrontImageURL *string   `json:"front_image_url,omitempty"`
	BackImageURL  *string   `json:"back_image_url,omitempty"`
	URLExpiresAt  time.Time `json:"url_expires_at"`
}

func newChequeResponse(c *usecase.ChequeOutput) ChequeResponse {
	return ChequeResponse{
		Ref:           c.Ref,
		Number:        c.Number,
		HolderName:    c.HolderName,
		PayeeName:     c.PayeeName,
		MaskedMobile:  c.MaskedMobile,
		AmountMinor:   c.AmountMinor,
		Currency:      c.Currency,
		IssueDate:     c.IssueDate.Format(time.DateOnly),
		FrontImageURL: lo.EmptyableToPtr(c.FrontImageURL),
		BackImageURL:  lo.EmptyableToPtr(c.BackImageURL),
		URLExpiresAt:  c.URLExpiresAt,
	}
}

// OTPChallengeResponse describes the live challenge after approve or resend.
type OTPChallengeResponse struct {
	State             string    `json:"state"`
	MaskedDestination string    `json:"masked_destination"`
	CodeExpiresAt     time.Time `json:"code_expires_at"`
	ResendAvailableAt time.Time `json:"resend_available_at"`
	AttemptsRemaining *int      `json:"attempts_remaining,omitempty"`

	deliveryFailed bool
}

func (o OTPChallengeResponse) StatusCode() int {
	if o.deliveryFailed {
		return http.StatusAccepted
	}
	return http.StatusOK
}

func (o OTPChallengeResponse) Message() string {
	if o.deliveryFailed {
		return "Verification code could not be delivered, request a new one"
	}
	return "Verification code sent to " + o.MaskedDestination
}

type SubmitOTPRequest struct {
	Code string `json:"code"`
}

type DecisionResponse struct {
	State    string `json:"state"`
	Decision string `json:"decision"`
}
