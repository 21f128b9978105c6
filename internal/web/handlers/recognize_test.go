package handlers

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maperezv/staff-attendance/internal/recognizer"
	"github.com/maperezv/staff-attendance/internal/vision"
)

type stubGate struct {
	live bool
	err  error
}

func (s *stubGate) IsLive(ctx context.Context, face image.Image) (bool, error) {
	return s.live, s.err
}

type stubMatcher struct {
	matches []vision.Match
	err     error
}

func (s *stubMatcher) Find(ctx context.Context, cropData []byte, galleryPath string) ([]vision.Match, error) {
	return s.matches, s.err
}

func newTestVoter(gate recognizer.LivenessGate, matcher vision.Matcher) *recognizer.Voter {
	return recognizer.New(gate, matcher, "/gallery", 224, 1)
}

func recognizeRequest(t *testing.T, facesJSON string) *http.Request {
	t.Helper()
	fields := map[string]string{}
	if facesJSON != "" {
		fields["faces"] = facesJSON
	}
	return multipartRequest(t, "/api/v1/recognize", "image", "frame.jpg", testJPEG(t), fields)
}

func TestRecognizeHandler_Identity(t *testing.T) {
	matcher := &stubMatcher{matches: []vision.Match{
		{IdentityPath: "/gallery/Maria_Gomez/a.jpg", Distance: 0.2},
		{IdentityPath: "/gallery/Maria_Gomez/b.jpg", Distance: 0.3},
	}}
	handler := NewRecognizeHandler(newTestVoter(&stubGate{live: true}, matcher))

	req := recognizeRequest(t, `[{"x1":0,"y1":0,"x2":16,"y2":16,"confidence":0.9}]`)
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp recognizeResponse
	parseJSONResponse(t, recorder, &resp)
	if len(resp.Identities) != 1 || resp.Identities[0] != "Maria_Gomez" {
		t.Errorf("identities = %v", resp.Identities)
	}
}

func TestRecognizeHandler_Spoof(t *testing.T) {
	handler := NewRecognizeHandler(newTestVoter(&stubGate{live: false}, &stubMatcher{}))

	req := recognizeRequest(t, `[{"x1":0,"y1":0,"x2":16,"y2":16,"confidence":0.9}]`)
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp recognizeResponse
	parseJSONResponse(t, recorder, &resp)
	if len(resp.Identities) != 1 || resp.Identities[0] != recognizer.SpoofIdentity {
		t.Errorf("identities = %v", resp.Identities)
	}
}

func TestRecognizeHandler_EmptyRegions(t *testing.T) {
	handler := NewRecognizeHandler(newTestVoter(&stubGate{live: true}, &stubMatcher{}))

	req := recognizeRequest(t, `[]`)
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp recognizeResponse
	parseJSONResponse(t, recorder, &resp)
	if len(resp.Identities) != 1 || resp.Identities[0] != recognizer.UnknownIdentity {
		t.Errorf("identities = %v", resp.Identities)
	}
}

func TestRecognizeHandler_MissingFaces(t *testing.T) {
	handler := NewRecognizeHandler(newTestVoter(&stubGate{live: true}, &stubMatcher{}))

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, recognizeRequest(t, ""))

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestRecognizeHandler_InvalidFacesJSON(t *testing.T) {
	handler := NewRecognizeHandler(newTestVoter(&stubGate{live: true}, &stubMatcher{}))

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, recognizeRequest(t, `{"not":"a list"`))

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestRecognizeHandler_GateDown(t *testing.T) {
	handler := NewRecognizeHandler(newTestVoter(&stubGate{err: errMock}, &stubMatcher{}))

	req := recognizeRequest(t, `[{"x1":0,"y1":0,"x2":16,"y2":16,"confidence":0.9}]`)
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadGateway)
}

func TestRecognizeHandler_MatcherFailureIsUnknown(t *testing.T) {
	handler := NewRecognizeHandler(newTestVoter(&stubGate{live: true}, &stubMatcher{err: errMock}))

	req := recognizeRequest(t, `[{"x1":0,"y1":0,"x2":16,"y2":16,"confidence":0.9}]`)
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp recognizeResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Identities[0] != recognizer.UnknownIdentity {
		t.Errorf("identities = %v", resp.Identities)
	}
}
