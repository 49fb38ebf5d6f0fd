package inbound

import (
	"errors"

	"github.com/samber/lo"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/approval/usecase"
	"github.com/shandysiswandi/chequeflow/internal/pkg/router"
)

// HeaderIdempotencyKey lets a client retry an otp submission safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// HTTPEndpoint exposes HTTP handlers for the cheque approval workflow.
type HTTPEndpoint struct {
	uc uc
}

// Create opens an approval link for a cheque.
func (h *HTTPEndpoint) Create(r *router.Request) (any, error) {
	var req CreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Create(r.Context(), usecase.CreateInput{
		ChequeRef:      req.ChequeRef,
		SessionMinutes: req.SessionMinutes,
	})
	if err != nil {
		return nil, err
	}

	return CreateResponse{
		ID:        resp.ID,
		ChequeRef: resp.ChequeRef,
		State:     resp.State.String(),
		CreatedAt: resp.CreatedAt,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

func (h *HTTPEndpoint) GetStatus(r *router.Request) (any, error) {
	resp, err := h.uc.GetStatus(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return newStatusResponse(resp), nil
}

func (h *HTTPEndpoint) GetCheque(r *router.Request) (any, error) {
	resp, err := h.uc.GetCheque(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return newChequeResponse(resp), nil
}

// Approve starts otp verification. When the code could not be sent the
// challenge still exists, so the client is told to ask for a resend with 202.
func (h *HTTPEndpoint) Approve(r *router.Request) (any, error) {
	resp, err := h.uc.Approve(r.Context(), r.GetParam("id"))
	if resp == nil || (err != nil && !errors.Is(err, entity.ErrDeliveryFailed)) {
		return nil, err
	}

	return OTPChallengeResponse{
		State:             resp.State.String(),
		MaskedDestination: resp.MaskedDestination,
		CodeExpiresAt:     resp.CodeExpiresAt,
		ResendAvailableAt: resp.ResendAvailableAt,
		deliveryFailed:    err != nil,
	}, nil
}

func (h *HTTPEndpoint) Reject(r *router.Request) (any, error) {
	resp, err := h.uc.Reject(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return DecisionResponse{
		State:    resp.State.String(),
		Decision: resp.Decision.String(),
	}, nil
}

func (h *HTTPEndpoint) ResendOTP(r *router.Request) (any, error) {
	resp, err := h.uc.ResendOTP(r.Context(), r.GetParam("id"))
	if resp == nil || (err != nil && !errors.Is(err, entity.ErrDeliveryFailed)) {
		return nil, err
	}

	return OTPChallengeResponse{
		State:             resp.State.String(),
		MaskedDestination: resp.MaskedDestination,
		CodeExpiresAt:     resp.CodeExpiresAt,
		ResendAvailableAt: resp.ResendAvailableAt,
		AttemptsRemaining: lo.ToPtr(resp.AttemptsRemaining),
		deliveryFailed:    err != nil,
	}, nil
}

func (h *HTTPEndpoint) SubmitOTP(r *router.Request) (any, error) {
	var req SubmitOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SubmitOTP(r.Context(), usecase.SubmitOTPInput{
		ID:             r.GetParam("id"),
		Code:           req.Code,
		IdempotencyKey: r.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		return nil, err
	}

	return DecisionResponse{
		State:    resp.State.String(),
		Decision: resp.Decision.String(),
	}, nil
}
