package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/maperezv/staff-attendance/internal/vision"
)

type stubDetector struct {
	faces   []vision.FaceRegion
	err     error
	gotMin  float64
	gotData []byte
}

func (s *stubDetector) Detect(ctx context.Context, imageData []byte, minConfidence float64) ([]vision.FaceRegion, error) {
	s.gotData = imageData
	s.gotMin = minConfidence
	return s.faces, s.err
}

func TestDetectHandler(t *testing.T) {
	detector := &stubDetector{faces: []vision.FaceRegion{
		{X1: 10, Y1: 10, X2: 50, Y2: 50, Confidence: 0.93},
	}}
	handler := NewDetectHandler(testConfig(t), detector)

	req := multipartRequest(t, "/api/v1/detect", "image", "frame.jpg", testJPEG(t), nil)
	recorder := httptest.NewRecorder()
	handler.Detect(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp detectResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 1 || len(resp.Faces) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if detector.gotMin != 0.8 {
		t.Errorf("min confidence = %v, want configured 0.8", detector.gotMin)
	}
	if len(detector.gotData) == 0 {
		t.Error("detector never received the upload")
	}
}

func TestDetectHandler_MinConfidenceOverride(t *testing.T) {
	detector := &stubDetector{}
	handler := NewDetectHandler(testConfig(t), detector)

	req := multipartRequest(t, "/api/v1/detect", "image", "frame.jpg", testJPEG(t),
		map[string]string{"min_confidence": "0.5"})
	recorder := httptest.NewRecorder()
	handler.Detect(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if detector.gotMin != 0.5 {
		t.Errorf("min confidence = %v, want 0.5", detector.gotMin)
	}

	var resp detectResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Faces == nil || resp.Count != 0 {
		t.Errorf("empty result should serialize as [], got %+v", resp)
	}
}

func TestDetectHandler_InvalidMinConfidence(t *testing.T) {
	handler := NewDetectHandler(testConfig(t), &stubDetector{})

	for _, raw := range []string{"abc", "-0.1", "1.5"} {
		req := multipartRequest(t, "/api/v1/detect", "image", "frame.jpg", testJPEG(t),
			map[string]string{"min_confidence": raw})
		recorder := httptest.NewRecorder()
		handler.Detect(recorder, req)
		assertStatusCode(t, recorder, http.StatusBadRequest)
	}
}

func TestDetectHandler_MissingImage(t *testing.T) {
	handler := NewDetectHandler(testConfig(t), &stubDetector{})

	req := multipartRequest(t, "/api/v1/detect", "other", "frame.jpg", testJPEG(t), nil)
	recorder := httptest.NewRecorder()
	handler.Detect(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestDetectHandler_DetectorDown(t *testing.T) {
	handler := NewDetectHandler(testConfig(t), &stubDetector{err: errMock})

	req := multipartRequest(t, "/api/v1/detect", "image", "frame.jpg", testJPEG(t), nil)
	recorder := httptest.NewRecorder()
	handler.Detect(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadGateway)
}

func TestDetectHandler_SaveImage(t *testing.T) {
	cfg := testConfig(t)
	handler := NewDetectHandler(cfg, &stubDetector{})

	req := multipartRequest(t, "/api/v1/detect", "image", "frame.jpg", testJPEG(t),
		map[string]string{"save_image": "true"})
	recorder := httptest.NewRecorder()
	handler.Detect(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp detectResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.SavedPath == "" {
		t.Fatal("saved_path missing")
	}
	if filepath.Dir(resp.SavedPath) != filepath.Join(cfg.Gallery.Path, "detections") {
		t.Errorf("saved under %q", resp.SavedPath)
	}
	if _, err := os.Stat(resp.SavedPath); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}
