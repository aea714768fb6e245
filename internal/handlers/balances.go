package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type userBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	balances, err := h.chat.GroupBalances(r.Context(), chi.URLParam(r, "groupID"), uid)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (h *Handler) MyBalance(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	balance, err := h.chat.UserBalance(r.Context(), uid)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userBalanceResponse{Balance: balance})
}

func (h *Handler) MyCategories(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	spending, err := h.chat.CategorySpending(r.Context(), uid)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spending)
}
