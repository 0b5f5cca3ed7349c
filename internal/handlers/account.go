package handlers

import (
	"net/http"

	"github.com/agbank/banking-api/internal/models"
	"github.com/agbank/banking-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CreateAccount handles POST /api/v1/accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAccountReq
	if !h.decodeBody(w, r, &req) {
		return
	}

	account, err := h.accounts.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.logger.Info("account created",
		"account_id", account.ID,
		"account_number", account.AccountNumber,
	)
	h.respondJSON(w, http.StatusCreated, account.Sanitized())
}

// ListAccounts handles GET /api/v1/accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	sanitized := make([]*models.Account, 0, len(accounts))
	for i := range accounts {
		sanitized = append(sanitized, accounts[i].Sanitized())
	}
	h.respondJSON(w, http.StatusOK, sanitized)
}

// GetAccount handles GET /api/v1/accounts/{accountID}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, account.Sanitized())
}

// GetAccountByNumber handles GET /api/v1/accounts/by-number/{accountNumber}
func (h *Handler) GetAccountByNumber(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetByAccountNumber(r.Context(), chi.URLParam(r, "accountNumber"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, account.Sanitized())
}

// GetAccountByCard handles GET /api/v1/accounts/by-card/{cardNumber}
func (h *Handler) GetAccountByCard(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetByCardNumber(r.Context(), chi.URLParam(r, "cardNumber"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, account.Sanitized())
}

// DeleteAccount handles DELETE /api/v1/accounts/{accountID}
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.logger.Info("account deleted", "account_id", id, "subject", authSubject(r))
	h.respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) accountIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		h.respondError(w, "invalid_request", http.StatusBadRequest, "invalid account ID format")
		return uuid.Nil, false
	}
	return id, true
}
