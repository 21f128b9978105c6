package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"strconv"
)

// Detector locates candidate face regions in an image. Implementations are
// loaded once at startup and shared read-only across requests.
type Detector interface {
	Detect(ctx context.Context, imageData []byte, minConfidence float64) ([]FaceRegion, error)
}

// HTTPDetector calls the YOLO face-detector sidecar.
type HTTPDetector struct {
	client *client
}

// NewHTTPDetector creates a detector client for the given base URL. Pass a
// http.Client with a timeout; detector failures are retryable from the
// caller's point of view.
func NewHTTPDetector(baseURL string, httpClient *http.Client) (*HTTPDetector, error) {
	c, err := newClient(baseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating detector client: %w", err)
	}
	return &HTTPDetector{client: c}, nil
}

type detectResponse struct {
	Faces []FaceRegion `json:"faces"`
}

// Detect sends the image to the detector service and returns the face regions
// with confidence at or above minConfidence. Regions are clipped to the image
// bounds; degenerate regions are discarded.
func (d *HTTPDetector) Detect(ctx context.Context, imageData []byte, minConfidence float64) ([]FaceRegion, error) {
	resp, err := postImageJSON[detectResponse](ctx, d.client, "detect", imageData,
		formField{name: "min_confidence", value: strconv.FormatFloat(minConfidence, 'f', -1, 64)},
	)
	if err != nil {
		return nil, fmt.Errorf("detector call failed: %w", err)
	}

	bounds, err := decodeBounds(imageData)
	if err != nil {
		return nil, fmt.Errorf("decoding image for bounds check: %w", err)
	}

	var faces []FaceRegion
	for _, f := range resp.Faces {
		if f.Confidence < minConfidence {
			continue
		}
		f = f.Clip(bounds)
		if !f.Valid() {
			continue
		}
		faces = append(faces, f)
	}
	return faces, nil
}

// decodeBounds reads just the image header to get pixel dimensions.
func decodeBounds(imageData []byte) (image.Rectangle, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return image.Rectangle{}, err
	}
	return image.Rect(0, 0, cfg.Width, cfg.Height), nil
}
