package vision

import (
	"context"
	"fmt"
)

// GalleryIndex is the nearest-neighbor search surface the local matcher
// needs from the face store.
type GalleryIndex interface {
	FindNearest(ctx context.Context, embedding []float32, limit int) (paths []string, distances []float64, err error)
}

// LocalMatcher is a Matcher for deployments without the DeepFace sidecar:
// it embeds the crop through the embedding service and searches the stored
// gallery embeddings directly.
type LocalMatcher struct {
	embedder Embedder
	index    GalleryIndex
	limit    int
}

// NewLocalMatcher creates a local matcher. limit caps the nearest-neighbor
// rows returned per crop.
func NewLocalMatcher(embedder Embedder, index GalleryIndex, limit int) *LocalMatcher {
	if limit <= 0 {
		limit = 10
	}
	return &LocalMatcher{embedder: embedder, index: index, limit: limit}
}

// Find embeds the crop and returns the nearest gallery rows. The galleryPath
// argument is ignored; the index already spans the whole gallery.
func (m *LocalMatcher) Find(ctx context.Context, cropData []byte, galleryPath string) ([]Match, error) {
	embedding, err := m.embedder.Embed(ctx, cropData)
	if err != nil {
		return nil, fmt.Errorf("embedding crop: %w", err)
	}

	paths, distances, err := m.index.FindNearest(ctx, embedding, m.limit)
	if err != nil {
		return nil, fmt.Errorf("searching gallery index: %w", err)
	}

	var matches []Match
	for i, path := range paths {
		row := Match{IdentityPath: path, Distance: distances[i]}
		if validMatch(row) {
			matches = append(matches, row)
		}
	}
	return matches, nil
}
