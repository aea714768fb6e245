// Package handlers exposes the HTTP API. Handlers decode JSON, call the
// service layer with the authenticated user id, and encode the result;
// they hold no application logic of their own.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitchat/internal/auth"
	"github.com/mmynk/splitchat/internal/events"
	"github.com/mmynk/splitchat/internal/middleware"
	"github.com/mmynk/splitchat/internal/service"
	"github.com/mmynk/splitchat/internal/storage"
)

// Handler carries the dependencies shared by all routes.
type Handler struct {
	chat          *service.ChatService
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	hub           *events.Hub
}

func New(chat *service.ChatService, authenticator auth.Authenticator, jwtManager *auth.JWTManager, hub *events.Hub) *Handler {
	return &Handler{
		chat:          chat,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		hub:           hub,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

// userID pulls the authenticated user id set by the auth middleware.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken)
	}
	return id, ok
}

// serviceError maps service and storage errors to HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotGroupMember):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, storage.ErrExpenseAttached):
		writeError(w, http.StatusConflict, err)
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
