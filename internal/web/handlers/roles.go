package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/maperezv/staff-attendance/internal/database"
)

// RolesHandler handles role CRUD endpoints
type RolesHandler struct {
	store database.RoleStore
}

// NewRolesHandler creates a new roles handler
func NewRolesHandler(store database.RoleStore) *RolesHandler {
	return &RolesHandler{store: store}
}

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *RolesHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.List(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if roles == nil {
		roles = []database.Role{}
	}
	respondJSON(w, http.StatusOK, roles)
}

func (h *RolesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	role := database.Role{Name: req.Name, Description: req.Description}
	if err := h.store.Create(r.Context(), &role); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, role)
}

func (h *RolesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	role, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, role)
}

func (h *RolesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	role := database.Role{ID: id, Name: req.Name, Description: req.Description}
	if err := h.store.Update(r.Context(), &role); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, role)
}

func (h *RolesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
