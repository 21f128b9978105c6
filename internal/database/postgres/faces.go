package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/pgvector/pgvector-go"

	"github.com/maperezv/staff-attendance/internal/database"
)

// FaceRepository provides PostgreSQL-backed gallery face storage with an
// optional in-memory HNSW index for nearest-neighbor search.
type FaceRepository struct {
	pool      *Pool
	hnswIndex *database.HNSWIndex
	hnswMu    sync.RWMutex
}

// NewFaceRepository creates a new PostgreSQL face repository.
func NewFaceRepository(pool *Pool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

const faceColumns = `id, professor_id, label, image_path, embedding, model, created_at`

func scanFace(row interface{ Scan(...any) error }) (*database.GalleryFace, error) {
	var f database.GalleryFace
	var vec pgvector.Vector
	err := row.Scan(&f.ID, &f.ProfessorID, &f.Label, &f.ImagePath, &vec, &f.Model, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	f.Embedding = vec.Slice()
	return &f, nil
}

func (r *FaceRepository) Create(ctx context.Context, face *database.GalleryFace) error {
	vec := pgvector.NewVector(face.Embedding)
	err := r.pool.QueryRow(ctx, `
		INSERT INTO faces (professor_id, label, image_path, embedding, model)
		VALUES ($1, $2, $3, $4::vector, $5)
		RETURNING id, created_at
	`, face.ProfessorID, face.Label, face.ImagePath, vec, face.Model,
	).Scan(&face.ID, &face.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert face: %w", mapError(err))
	}

	r.hnswMu.RLock()
	index := r.hnswIndex
	r.hnswMu.RUnlock()
	if index != nil {
		if err := index.Add(face); err != nil {
			return fmt.Errorf("index face: %w", err)
		}
	}
	return nil
}

func (r *FaceRepository) Get(ctx context.Context, id int64) (*database.GalleryFace, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+faceColumns+" FROM faces WHERE id = $1", id)
	face, err := scanFace(row)
	if err != nil {
		return nil, fmt.Errorf("get face: %w", mapError(err))
	}
	return face, nil
}

func (r *FaceRepository) ListByProfessor(ctx context.Context, professorID int64) ([]database.GalleryFace, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+faceColumns+" FROM faces WHERE professor_id = $1 ORDER BY id", professorID)
	if err != nil {
		return nil, fmt.Errorf("list faces: %w", err)
	}
	defer rows.Close()

	var faces []database.GalleryFace
	for rows.Next() {
		face, err := scanFace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		faces = append(faces, *face)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faces: %w", err)
	}
	return faces, nil
}

// ListAll returns every stored face. Used for HNSW warm-up on startup.
func (r *FaceRepository) ListAll(ctx context.Context) ([]database.GalleryFace, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+faceColumns+" FROM faces ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list all faces: %w", err)
	}
	defer rows.Close()

	var faces []database.GalleryFace
	for rows.Next() {
		face, err := scanFace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		faces = append(faces, *face)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faces: %w", err)
	}
	return faces, nil
}

func (r *FaceRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, "DELETE FROM faces WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete face: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	r.hnswMu.RLock()
	index := r.hnswIndex
	r.hnswMu.RUnlock()
	if index != nil {
		index.Delete(id)
	}
	return nil
}

// EnableHNSW installs the in-memory index. FindNearest prefers it over the
// pgvector scan once set.
func (r *FaceRepository) EnableHNSW(index *database.HNSWIndex) {
	r.hnswMu.Lock()
	defer r.hnswMu.Unlock()
	r.hnswIndex = index
}

// WarmUpHNSW builds the in-memory index from all stored faces. The index
// installed via EnableHNSW is rebuilt in place so callers holding it keep
// a live handle.
func (r *FaceRepository) WarmUpHNSW(ctx context.Context) error {
	faces, err := r.ListAll(ctx)
	if err != nil {
		return err
	}

	r.hnswMu.Lock()
	index := r.hnswIndex
	if index == nil {
		index = database.NewHNSWIndex()
		r.hnswIndex = index
	}
	r.hnswMu.Unlock()

	if err := index.BuildFromFaces(faces); err != nil {
		return fmt.Errorf("build HNSW index: %w", err)
	}
	return nil
}

// FindNearest returns gallery image paths and distances ordered by ascending
// embedding distance. Uses the in-memory HNSW index when available, falling
// back to a pgvector cosine scan.
func (r *FaceRepository) FindNearest(ctx context.Context, embedding []float32, limit int) ([]string, []float64, error) {
	r.hnswMu.RLock()
	index := r.hnswIndex
	r.hnswMu.RUnlock()

	if index != nil && !index.IsEmpty() {
		return index.Search(embedding, limit)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT image_path, embedding <=> $1::vector AS distance
		FROM faces
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query nearest faces: %w", err)
	}
	defer rows.Close()

	var paths []string
	var distances []float64
	for rows.Next() {
		var path string
		var dist float64
		if err := rows.Scan(&path, &dist); err != nil {
			return nil, nil, fmt.Errorf("scan nearest face: %w", err)
		}
		paths = append(paths, path)
		distances = append(distances, dist)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate nearest faces: %w", err)
	}
	return paths, distances, nil
}
