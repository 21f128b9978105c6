package vision

import (
	"context"
	"fmt"
	"net/http"
)

// Matcher returns ranked nearest-gallery-identity rows for a face crop.
// Implementations are loaded once at startup and shared read-only across
// requests.
type Matcher interface {
	Find(ctx context.Context, cropData []byte, galleryPath string) ([]Match, error)
}

// HTTPMatcher calls the DeepFace-style matcher sidecar.
type HTTPMatcher struct {
	client *client
}

func NewHTTPMatcher(baseURL string, httpClient *http.Client) (*HTTPMatcher, error) {
	c, err := newClient(baseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating matcher client: %w", err)
	}
	return &HTTPMatcher{client: c}, nil
}

type findResponse struct {
	Matches []Match `json:"matches"`
}

// Find sends the crop to the matcher service. Malformed rows (empty identity
// path, non-finite distance) are dropped at this boundary rather than
// propagated.
func (m *HTTPMatcher) Find(ctx context.Context, cropData []byte, galleryPath string) ([]Match, error) {
	resp, err := postImageJSON[findResponse](ctx, m.client, "find", cropData,
		formField{name: "db_path", value: galleryPath},
	)
	if err != nil {
		return nil, fmt.Errorf("matcher call failed: %w", err)
	}

	matches := resp.Matches[:0]
	for _, row := range resp.Matches {
		if validMatch(row) {
			matches = append(matches, row)
		}
	}
	return matches, nil
}
