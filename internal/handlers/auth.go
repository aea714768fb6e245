package handlers

import (
	"errors"
	"net/http"

	"github.com/mmynk/splitchat/internal/auth"
	"github.com/mmynk/splitchat/internal/models"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, errors.New("email and display_name are required"))
		return
	}

	user, err := h.authenticator.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, auth.ErrEmailExists):
			writeError(w, http.StatusConflict, err)
		default:
			serviceError(w, err)
		}
		return
	}

	h.issueSession(w, user, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !readJSON(w, r, &req) {
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials)
		return
	}

	h.issueSession(w, user, http.StatusOK)
}

func (h *Handler) issueSession(w http.ResponseWriter, user *models.User, status int) {
	token, err := h.jwtManager.Generate(user)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, status, sessionResponse{Token: token, User: user})
}
