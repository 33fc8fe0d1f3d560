package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/backend"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/cart"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/session"
	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

var rejectionStatus = map[cart.Reason]int{
	cart.ReasonStockInsufficient:    http.StatusConflict,
	cart.ReasonCheckoutInProgress:   http.StatusConflict,
	cart.ReasonEmptyCart:            http.StatusUnprocessableEntity,
	cart.ReasonCustomerRequired:     http.StatusUnprocessableEntity,
	cart.ReasonInvalidPaymentStatus: http.StatusBadRequest,
	cart.ReasonProductNotFound:      http.StatusNotFound,
	cart.ReasonItemNotInCart:        http.StatusNotFound,
}

// handleServiceError maps service and engine errors onto the JSON error envelope. Every cart
// rejection gets its own code so the page can show a specific message.
func handleServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, backend.ErrUnauthorized) {
		// the page shell clears the stored credential and redirects on 401
		respondError(w, http.StatusUnauthorized, "unauthenticated", "credential rejected by backend")
		return
	}

	if reason, ok := cart.ReasonOf(err); ok {
		status, known := rejectionStatus[reason]
		if !known {
			status = http.StatusBadRequest
		}
		respondError(w, status, string(reason), err.Error())
		return
	}

	if errors.Is(err, session.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "session_not_found", "session not found or expired")
		return
	}

	var subErr *cart.SubmissionError
	if errors.As(err, &subErr) {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, backend.ErrBackendUnavailable):
			status = http.StatusServiceUnavailable
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		}
		respondJSON(w, status, ErrorResponse{
			Error:   subErr.Message,
			Code:    "submission_failed",
			Details: "cart kept; the same order can be submitted again",
		})
		return
	}

	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrBackendUnavailable):
		respondError(w, http.StatusServiceUnavailable, "backend_unavailable", "backend temporarily unavailable")
	case errors.As(err, &apiErr):
		respondError(w, http.StatusBadGateway, "backend_error", apiErr.UserMessage())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "backend did not answer in time")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
