package database

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"
)

const (
	// hnswMaxNeighbors (M) is the maximum number of neighbors per node.
	hnswMaxNeighbors = 16
)

// HNSWIndex wraps an HNSW graph over the gallery face embeddings.
// Search results map back to gallery image paths through idToFace.
type HNSWIndex struct {
	graph      *hnsw.Graph[int64]
	savedGraph *hnsw.SavedGraph[int64]
	idToFace   map[int64]*GalleryFace
	mu         sync.RWMutex
	path       string
}

// NewHNSWIndex creates a new empty HNSW index.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{
		idToFace: make(map[int64]*GalleryFace),
	}
}

// BuildFromFaces builds the index from a slice of gallery faces.
func (h *HNSWIndex) BuildFromFaces(faces []GalleryFace) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(faces) == 0 {
		h.graph = nil
		h.savedGraph = nil
		h.idToFace = make(map[int64]*GalleryFace)
		return nil
	}

	g := hnsw.NewGraph[int64]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance

	h.idToFace = make(map[int64]*GalleryFace, len(faces))

	for i := range faces {
		face := &faces[i]
		if len(face.Embedding) == 0 {
			continue
		}

		g.Add(hnsw.MakeNode(face.ID, face.Embedding))
		h.idToFace[face.ID] = face
	}

	h.graph = g
	// The fresh graph is now authoritative; Search prefers savedGraph.
	h.savedGraph = nil
	return nil
}

// Search finds the k nearest faces to the query embedding.
// Returns gallery image paths and cosine distances, skipping
// nodes whose faces were removed since the last rebuild.
func (h *HNSWIndex) Search(query []float32, k int) ([]string, []float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil && h.savedGraph == nil {
		return nil, nil, errors.New("index not initialized")
	}

	var neighbors []hnsw.Node[int64]
	if h.savedGraph != nil {
		neighbors = h.savedGraph.Search(query, k)
	} else {
		neighbors = h.graph.Search(query, k)
	}

	paths := make([]string, 0, len(neighbors))
	distances := make([]float64, 0, len(neighbors))

	for _, n := range neighbors {
		face, ok := h.idToFace[n.Key]
		if !ok {
			continue
		}
		paths = append(paths, face.ImagePath)
		if len(n.Value) > 0 {
			distances = append(distances, float64(CosineDistance(query, n.Value)))
		} else {
			distances = append(distances, 0)
		}
	}

	return paths, distances, nil
}

// GetFace returns the face for a given ID.
func (h *HNSWIndex) GetFace(id int64) *GalleryFace {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idToFace[id]
}

// Add adds a single face to the index.
func (h *HNSWIndex) Add(face *GalleryFace) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(face.Embedding) == 0 {
		return nil
	}

	if h.graph == nil {
		h.graph = hnsw.NewGraph[int64]()
		h.graph.M = hnswMaxNeighbors
		h.graph.Ml = 1.0 / float64(hnswMaxNeighbors)
		h.graph.Distance = hnsw.CosineDistance
	}

	h.graph.Add(hnsw.MakeNode(face.ID, face.Embedding))
	h.idToFace[face.ID] = face

	return nil
}

// Delete removes a face from search results.
func (h *HNSWIndex) Delete(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// HNSW doesn't support true deletion; dropping the lookup entry
	// is enough since Search filters through idToFace.
	delete(h.idToFace, id)
}

// SetPath sets the path for saving/loading the index.
func (h *HNSWIndex) SetPath(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.path = path
}

// Save persists the index to disk.
func (h *HNSWIndex) Save() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.path == "" {
		return nil // No path set
	}

	if h.graph == nil && h.savedGraph == nil {
		// Remove existing file if index is empty (best-effort cleanup).
		_ = os.Remove(h.path)
		return nil
	}

	f, err := os.Create(h.path) //nolint:gosec // path is from trusted config
	if err != nil {
		return fmt.Errorf("failed to create HNSW index file: %w", err)
	}
	defer f.Close()

	// SavedGraph embeds *Graph, so Export works on either.
	if h.savedGraph != nil {
		if err := h.savedGraph.Export(f); err != nil {
			return fmt.Errorf("exporting HNSW graph: %w", err)
		}
		return nil
	}
	if err := h.graph.Export(f); err != nil {
		return fmt.Errorf("exporting HNSW graph: %w", err)
	}
	return nil
}

// Load loads the index from disk.
func (h *HNSWIndex) Load(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.path = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // No index file, will build from faces
	}

	saved, err := hnsw.LoadSavedGraph[int64](path)
	if err != nil {
		return fmt.Errorf("failed to load HNSW index: %w", err)
	}

	h.savedGraph = saved
	return nil
}

// RebuildFromFaces rebuilds the idToFace map from faces.
// Called after loading index from disk.
func (h *HNSWIndex) RebuildFromFaces(faces []GalleryFace) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.idToFace = make(map[int64]*GalleryFace, len(faces))
	for i := range faces {
		h.idToFace[faces[i].ID] = &faces[i]
	}
}

// Count returns the number of indexed faces.
func (h *HNSWIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idToFace)
}

// IsEmpty returns true if the index has no graph data loaded.
func (h *HNSWIndex) IsEmpty() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.graph == nil && h.savedGraph == nil
}
