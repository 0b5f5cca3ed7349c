package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agbank/banking-api/internal/middleware"
	"github.com/agbank/banking-api/internal/service"
	"github.com/golang-jwt/jwt/v5"
)

// errorResponse is the wire shape of every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code string, status int, message string) {
	h.respondJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error onto its HTTP status. Unknown errors
// are logged and reported as a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		h.logger.Error("unexpected error", "error", err)
		h.respondError(w, "internal_error", http.StatusInternalServerError, "internal error")
		return
	}

	status := statusForCode(svcErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("backend failure", "code", svcErr.Code, "error", err)
	}
	h.respondError(w, svcErr.Code, status, svcErr.Message)
}

func statusForCode(code string) int {
	switch code {
	case service.ErrCodeAccountNotFound, service.ErrCodeRecipientNotFound:
		return http.StatusNotFound
	case service.ErrCodeEmailInUse, service.ErrCodePhoneInUse:
		return http.StatusConflict
	case service.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case service.ErrCodeBackendUnavailable:
		return http.StatusServiceUnavailable
	case service.ErrCodeInvalidRequest, service.ErrCodeInvalidAmount,
		service.ErrCodeCardMismatch, service.ErrCodeInvalidCardInfo,
		service.ErrCodeSelfTransfer, service.ErrCodeInsufficientBalance,
		service.ErrCodeInsufficientCardBalance:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, "invalid_request", http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

// authSubject returns the subject of the verified bearer token, or "" on
// public routes.
func authSubject(r *http.Request) string {
	claims, ok := r.Context().Value(middleware.ClaimsContextKey).(*jwt.RegisteredClaims)
	if !ok {
		return ""
	}
	return claims.Subject
}

// NotFound is the router's fallback for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, "not_found", http.StatusNotFound, "no such endpoint: "+r.URL.Path)
}
