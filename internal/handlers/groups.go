package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

type addMemberRequest struct {
	Email     string `json:"email"`
	UPIHandle string `json:"upi_handle,omitempty"`
}

type setUPIRequest struct {
	Handle string `json:"handle"`
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req createGroupRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	group, err := h.chat.CreateGroup(r.Context(), uid, req.Name)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	groups, err := h.chat.ListGroups(r.Context(), uid)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	members, err := h.chat.Members(r.Context(), chi.URLParam(r, "groupID"), uid)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req addMemberRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, errors.New("email is required"))
		return
	}

	if err := h.chat.AddMember(r.Context(), chi.URLParam(r, "groupID"), uid, req.Email, req.UPIHandle); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetUPIHandle(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req setUPIRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Handle == "" {
		writeError(w, http.StatusBadRequest, errors.New("handle is required"))
		return
	}

	if err := h.chat.SetUPIHandle(r.Context(), uid, req.Handle); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
