package handlers

import (
	"net/http"

	"github.com/agbank/banking-api/internal/models"
	"github.com/agbank/banking-api/internal/service"
)

type withdrawRequest struct {
	CardNumber string `json:"card_number"`
	Amount     int64  `json:"amount"`
}

type depositRequest struct {
	CardNumber  string `json:"card_number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
	Amount      int64  `json:"amount"`
}

type transferRequest struct {
	AccountNumber string `json:"account_number"`
	Amount        int64  `json:"amount"`
}

type transferResponse struct {
	Message                string          `json:"message"`
	Amount                 int64           `json:"amount"`
	RecipientAccountNumber string          `json:"recipient_account_number"`
	Sender                 *models.Account `json:"sender"`
}

// Withdraw handles POST /api/v1/accounts/{accountID}/withdraw
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	var req withdrawRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	account, err := h.money.Withdraw(r.Context(), id, req.CardNumber, req.Amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.logger.Info("withdrawal completed",
		"account_id", id,
		"amount", req.Amount,
		"subject", authSubject(r),
	)
	h.respondJSON(w, http.StatusOK, account.Sanitized())
}

// Deposit handles POST /api/v1/accounts/{accountID}/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	var req depositRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	account, err := h.money.Deposit(r.Context(), service.DepositReq{
		AccountID:   id,
		CardNumber:  req.CardNumber,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVV:         req.CVV,
		Amount:      req.Amount,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.logger.Info("deposit completed",
		"account_id", id,
		"amount", req.Amount,
		"subject", authSubject(r),
	)
	h.respondJSON(w, http.StatusOK, account.Sanitized())
}

// Transfer handles POST /api/v1/accounts/{accountID}/transfer
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	result, err := h.money.Transfer(r.Context(), id, req.AccountNumber, req.Amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.logger.Info("transfer completed",
		"sender_id", id,
		"recipient_account_number", req.AccountNumber,
		"amount", req.Amount,
		"subject", authSubject(r),
	)
	h.respondJSON(w, http.StatusOK, transferResponse{
		Message:                "money sent successfully",
		Amount:                 result.Amount,
		RecipientAccountNumber: result.Recipient.AccountNumber,
		Sender:                 result.Sender.Sanitized(),
	})
}
