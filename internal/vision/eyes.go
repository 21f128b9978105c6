package vision

import (
	"context"
	"fmt"
	"image"
	"net/http"
)

// EyeDetector finds eye sub-regions inside a face crop. The haar cascade that
// backs it lives in the vision sidecar, so the liveness analyzer takes this
// as an injected capability.
type EyeDetector interface {
	DetectEyes(ctx context.Context, faceData []byte) ([]Eye, error)
}

// HTTPEyeDetector calls the eye-cascade endpoint of the vision sidecar.
type HTTPEyeDetector struct {
	client *client
}

func NewHTTPEyeDetector(baseURL string, httpClient *http.Client) (*HTTPEyeDetector, error) {
	c, err := newClient(baseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating eye detector client: %w", err)
	}
	return &HTTPEyeDetector{client: c}, nil
}

type eyeRow struct {
	X         int      `json:"x"`
	Y         int      `json:"y"`
	W         int      `json:"w"`
	H         int      `json:"h"`
	Landmarks [][2]int `json:"landmarks"`
}

type eyesResponse struct {
	Eyes []eyeRow `json:"eyes"`
}

func (d *HTTPEyeDetector) DetectEyes(ctx context.Context, faceData []byte) ([]Eye, error) {
	resp, err := postImageJSON[eyesResponse](ctx, d.client, "eyes", faceData)
	if err != nil {
		return nil, fmt.Errorf("eye detector call failed: %w", err)
	}

	eyes := make([]Eye, 0, len(resp.Eyes))
	for _, row := range resp.Eyes {
		if row.W <= 0 || row.H <= 0 {
			continue
		}
		eye := Eye{Rect: image.Rect(row.X, row.Y, row.X+row.W, row.Y+row.H)}
		for _, p := range row.Landmarks {
			eye.Landmarks = append(eye.Landmarks, image.Pt(p[0], p[1]))
		}
		eyes = append(eyes, eye)
	}
	return eyes, nil
}
