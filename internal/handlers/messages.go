package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/calculator"
	"github.com/mmynk/splitchat/internal/models"
)

type postMessageRequest struct {
	Text string `json:"text"`
}

// postMessageResponse reports the recorded transaction. ClaimError is set
// when an expense claim was extracted but rejected; the message itself is
// still in the history.
type postMessageResponse struct {
	Transaction *models.Transaction `json:"transaction"`
	ClaimError  string              `json:"claim_error,omitempty"`
}

type addExpenseRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Label  string          `json:"label"`
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req postMessageRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}

	result, err := h.chat.PostMessage(r.Context(), chi.URLParam(r, "groupID"), uid, req.Text)
	if err != nil {
		serviceError(w, err)
		return
	}

	resp := postMessageResponse{Transaction: result.Transaction}
	if result.ClaimErr != nil {
		resp.ClaimError = result.ClaimErr.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	txs, err := h.chat.History(r.Context(), chi.URLParam(r, "groupID"), uid)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req addExpenseRequest
	if !readJSON(w, r, &req) {
		return
	}

	tx, err := h.chat.AddExpense(r.Context(), chi.URLParam(r, "groupID"), uid, req.Amount, req.Label)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}
