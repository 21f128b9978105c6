package vision

import (
	"context"
	"fmt"
	"net/http"
)

// Embedder computes a face embedding for a crop. Used by the local matcher
// and by gallery image ingestion.
type Embedder interface {
	Embed(ctx context.Context, cropData []byte) ([]float32, error)
}

// HTTPEmbedder calls the embedding sidecar.
type HTTPEmbedder struct {
	client *client
}

func NewHTTPEmbedder(baseURL string, httpClient *http.Client) (*HTTPEmbedder, error) {
	c, err := newClient(baseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating embedder client: %w", err)
	}
	return &HTTPEmbedder{client: c}, nil
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (e *HTTPEmbedder) Embed(ctx context.Context, cropData []byte) ([]float32, error) {
	resp, err := postImageJSON[embedResponse](ctx, e.client, "embed", cropData)
	if err != nil {
		return nil, fmt.Errorf("embedder call failed: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embedder returned empty embedding")
	}
	return resp.Embedding, nil
}
