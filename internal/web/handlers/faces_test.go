package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/maperezv/staff-attendance/internal/database"
	"github.com/maperezv/staff-attendance/internal/database/mock"
)

type stubEmbedder struct {
	embedding []float32
	err       error
}

func (s *stubEmbedder) Embed(ctx context.Context, cropData []byte) ([]float32, error) {
	return s.embedding, s.err
}

func setupFacesTest(t *testing.T) (*mock.MockFaceStore, *mock.MockProfessorStore, *FacesHandler, *stubEmbedder) {
	t.Helper()
	faces := mock.NewMockFaceStore()
	professors := mock.NewMockProfessorStore()
	embedder := &stubEmbedder{embedding: []float32{0.1, 0.2, 0.3}}
	handler := NewFacesHandler(testConfig(t), faces, professors, embedder)
	return faces, professors, handler, embedder
}

func uploadRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	return multipartRequest(t, "/api/v1/faces", "image", "ref.jpg", testJPEG(t), fields)
}

func TestFacesUpload(t *testing.T) {
	faces, professors, handler, _ := setupFacesTest(t)
	seedProfessor(t, professors)

	req := uploadRequest(t, map[string]string{"professor_id": "1"})
	recorder := httptest.NewRecorder()
	handler.Upload(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)
	var face database.GalleryFace
	parseJSONResponse(t, recorder, &face)
	if face.Label != "Maria_Gomez" {
		t.Errorf("label = %q, want professor name default", face.Label)
	}
	if filepath.Dir(filepath.Dir(face.ImagePath)) != handler.config.Gallery.Path {
		t.Errorf("image stored outside gallery: %q", face.ImagePath)
	}
	if _, err := os.Stat(face.ImagePath); err != nil {
		t.Errorf("gallery file missing: %v", err)
	}

	stored, err := faces.Get(context.Background(), face.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Embedding) != 3 {
		t.Errorf("embedding not persisted: %+v", stored)
	}
}

func TestFacesUpload_CustomLabelCleaned(t *testing.T) {
	_, professors, handler, _ := setupFacesTest(t)
	seedProfessor(t, professors)

	req := uploadRequest(t, map[string]string{"professor_id": "1", "label": "José Pérez"})
	recorder := httptest.NewRecorder()
	handler.Upload(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)
	var face database.GalleryFace
	parseJSONResponse(t, recorder, &face)
	if face.Label != "Jose_Perez" {
		t.Errorf("label = %q, want diacritics stripped", face.Label)
	}
}

func TestFacesUpload_UnknownProfessor(t *testing.T) {
	_, _, handler, _ := setupFacesTest(t)

	req := uploadRequest(t, map[string]string{"professor_id": "42"})
	recorder := httptest.NewRecorder()
	handler.Upload(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestFacesUpload_MissingProfessorID(t *testing.T) {
	_, _, handler, _ := setupFacesTest(t)

	recorder := httptest.NewRecorder()
	handler.Upload(recorder, uploadRequest(t, nil))

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestFacesUpload_InvalidImage(t *testing.T) {
	_, professors, handler, _ := setupFacesTest(t)
	seedProfessor(t, professors)

	req := multipartRequest(t, "/api/v1/faces", "image", "ref.jpg", []byte("not an image"),
		map[string]string{"professor_id": "1"})
	recorder := httptest.NewRecorder()
	handler.Upload(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestFacesUpload_EmbedderDown(t *testing.T) {
	_, professors, handler, embedder := setupFacesTest(t)
	seedProfessor(t, professors)
	embedder.err = errMock

	req := uploadRequest(t, map[string]string{"professor_id": "1"})
	recorder := httptest.NewRecorder()
	handler.Upload(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadGateway)
}

func TestFacesUpload_StoreFailureRemovesFile(t *testing.T) {
	faces, professors, handler, _ := setupFacesTest(t)
	seedProfessor(t, professors)
	faces.CreateError = errMock

	req := uploadRequest(t, map[string]string{"professor_id": "1"})
	recorder := httptest.NewRecorder()
	handler.Upload(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)

	dir := filepath.Join(handler.config.Gallery.Path, "Maria_Gomez")
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) > 0 {
		t.Errorf("orphan gallery file left behind: %v", entries)
	}
}

func TestFacesDelete(t *testing.T) {
	faces, _, handler, _ := setupFacesTest(t)

	imagePath := filepath.Join(handler.config.Gallery.Path, "x.jpg")
	if err := os.WriteFile(imagePath, testJPEG(t), 0o644); err != nil {
		t.Fatal(err)
	}
	face := database.GalleryFace{ProfessorID: 1, Label: "x", ImagePath: imagePath, Embedding: []float32{1}}
	if err := faces.Create(context.Background(), &face); err != nil {
		t.Fatal(err)
	}

	req := requestWithChiParams(
		httptest.NewRequest("DELETE", "/api/v1/faces/1", nil),
		map[string]string{"id": "1"},
	)
	recorder := httptest.NewRecorder()
	handler.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if _, err := os.Stat(imagePath); !os.IsNotExist(err) {
		t.Error("gallery image not removed")
	}
	if _, err := faces.Get(context.Background(), 1); err != database.ErrNotFound {
		t.Errorf("face row still present: %v", err)
	}
}

func TestFacesListByProfessor_Empty(t *testing.T) {
	_, _, handler, _ := setupFacesTest(t)

	req := requestWithChiParams(
		httptest.NewRequest("GET", "/api/v1/faces/professor/1", nil),
		map[string]string{"professorID": "1"},
	)
	recorder := httptest.NewRecorder()
	handler.ListByProfessor(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var list []database.GalleryFace
	parseJSONResponse(t, recorder, &list)
	if list == nil || len(list) != 0 {
		t.Errorf("want empty list, got %v", list)
	}
}
