package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/maperezv/staff-attendance/internal/database"
)

// UsersHandler handles application user CRUD endpoints. Passwords are
// bcrypt-hashed before they reach the store and never serialized back.
type UsersHandler struct {
	store database.UserStore
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(store database.UserStore) *UsersHandler {
	return &UsersHandler{store: store}
}

type userRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	RoleID      int64  `json:"role_id"`
	ProfessorID *int64 `json:"professor_id"`
}

func (req *userRequest) validate(passwordRequired bool) string {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return "first_name and last_name are required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "a valid email is required"
	}
	if req.RoleID <= 0 {
		return "role_id is required"
	}
	if passwordRequired && len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	return ""
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if users == nil {
		users = []database.AppUser{}
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if msg := req.validate(true); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "hashing password")
		return
	}

	user := database.AppUser{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		RoleID:       req.RoleID,
		ProfessorID:  req.ProfessorID,
	}
	if err := h.store.Create(r.Context(), &user); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if msg := req.validate(false); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.Email = req.Email
	existing.RoleID = req.RoleID
	existing.ProfessorID = req.ProfessorID
	if req.Password != "" {
		if len(req.Password) < 8 {
			respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "hashing password")
			return
		}
		existing.PasswordHash = string(hash)
	}

	if err := h.store.Update(r.Context(), existing); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
