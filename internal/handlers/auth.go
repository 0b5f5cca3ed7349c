package handlers

import "net/http"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.logger.Info("login succeeded", "account_id", result.Account.ID)
	h.respondJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/v1/logout. Tokens are stateless bearer
// credentials, so logout is a client-side discard; the endpoint exists for
// API symmetry.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusNoContent, nil)
}
