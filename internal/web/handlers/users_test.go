package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/maperezv/staff-attendance/internal/database"
	"github.com/maperezv/staff-attendance/internal/database/mock"
)

func TestUsersHandler_CreateHashesPassword(t *testing.T) {
	store := mock.NewMockUserStore()
	handler := NewUsersHandler(store)

	req := jsonRequest(t, "POST", "/api/v1/users", userRequest{
		FirstName: "Ana",
		LastName:  "Lopez",
		Email:     "ana.lopez@uni.edu",
		Password:  "super-secret-1",
		RoleID:    1,
	})
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var body map[string]any
	parseJSONResponse(t, recorder, &body)
	if _, ok := body["password_hash"]; ok {
		t.Error("password hash leaked in response")
	}

	stored, err := store.Get(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if stored.PasswordHash == "super-secret-1" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("super-secret-1")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestUsersHandler_CreateValidation(t *testing.T) {
	handler := NewUsersHandler(mock.NewMockUserStore())

	tests := []struct {
		name string
		req  userRequest
	}{
		{"bad email", userRequest{FirstName: "A", LastName: "B", Email: "not-an-email", Password: "12345678", RoleID: 1}},
		{"short password", userRequest{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "short", RoleID: 1}},
		{"missing role", userRequest{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "12345678"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.Create(recorder, jsonRequest(t, "POST", "/api/v1/users", tt.req))
			assertStatusCode(t, recorder, http.StatusBadRequest)
		})
	}
}

func TestUsersHandler_DuplicateEmail(t *testing.T) {
	store := mock.NewMockUserStore()
	handler := NewUsersHandler(store)

	req := userRequest{
		FirstName: "Ana",
		LastName:  "Lopez",
		Email:     "ana.lopez@uni.edu",
		Password:  "super-secret-1",
		RoleID:    1,
	}
	handler.Create(httptest.NewRecorder(), jsonRequest(t, "POST", "/api/v1/users", req))

	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(t, "POST", "/api/v1/users", req))
	assertStatusCode(t, recorder, http.StatusConflict)
}

func TestUsersHandler_UpdateKeepsPasswordWhenOmitted(t *testing.T) {
	store := mock.NewMockUserStore()
	handler := NewUsersHandler(store)

	user := database.AppUser{
		FirstName:    "Ana",
		LastName:     "Lopez",
		Email:        "ana.lopez@uni.edu",
		PasswordHash: "$2a$10$existinghash",
		RoleID:       1,
	}
	if err := store.Create(context.Background(), &user); err != nil {
		t.Fatal(err)
	}

	req := requestWithChiParams(
		jsonRequest(t, "PUT", "/api/v1/users/1", userRequest{
			FirstName: "Ana Maria",
			LastName:  "Lopez",
			Email:     "ana.lopez@uni.edu",
			RoleID:    2,
		}),
		map[string]string{"id": "1"},
	)
	recorder := httptest.NewRecorder()
	handler.Update(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	stored, err := store.Get(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if stored.PasswordHash != "$2a$10$existinghash" {
		t.Error("password hash changed on update without password")
	}
	if stored.FirstName != "Ana Maria" || stored.RoleID != 2 {
		t.Errorf("update not applied: %+v", stored)
	}
}

func TestUsersHandler_GetNotFound(t *testing.T) {
	handler := NewUsersHandler(mock.NewMockUserStore())

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/users/7", nil), map[string]string{"id": "7"})
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}
