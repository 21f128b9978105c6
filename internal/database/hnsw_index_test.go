package database

import (
	"os"
	"path/filepath"
	"testing"
)

func galleryFixture() []GalleryFace {
	return []GalleryFace{
		{ID: 1, ProfessorID: 12, Label: "Maria_Gomez", ImagePath: "Maria_Gomez/a.jpg", Embedding: []float32{1, 0, 0, 0}},
		{ID: 2, ProfessorID: 15, Label: "Juan_Perez", ImagePath: "Juan_Perez/b.jpg", Embedding: []float32{0, 1, 0, 0}},
	}
}

func TestHNSWIndexSaveLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.hnsw")

	fresh := NewHNSWIndex()
	if err := fresh.BuildFromFaces(galleryFixture()); err != nil {
		t.Fatalf("BuildFromFaces: %v", err)
	}
	fresh.SetPath(path)
	if err := fresh.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewHNSWIndex()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.IsEmpty() {
		t.Fatal("index loaded from disk reports empty")
	}
	loaded.RebuildFromFaces(galleryFixture())
	if got := loaded.Count(); got != 2 {
		t.Fatalf("Count after reload = %d, want 2", got)
	}

	paths, _, err := loaded.Search([]float32{1, 0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(paths) != 1 || paths[0] != "Maria_Gomez/a.jpg" {
		t.Errorf("Search returned %v, want [Maria_Gomez/a.jpg]", paths)
	}

	// Saving from the loaded handle must keep the file usable, not remove it.
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save after Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("index file missing after second save: %v", err)
	}

	again := NewHNSWIndex()
	if err := again.Load(path); err != nil {
		t.Fatalf("Load after second save: %v", err)
	}
	if again.IsEmpty() {
		t.Error("index unreadable after save from a loaded handle")
	}
}

func TestHNSWIndexLoadMissingFile(t *testing.T) {
	index := NewHNSWIndex()
	if err := index.Load(filepath.Join(t.TempDir(), "missing.hnsw")); err != nil {
		t.Fatalf("Load of a missing file should not error: %v", err)
	}
	if !index.IsEmpty() {
		t.Error("index should stay empty when no file exists")
	}
}

func TestHNSWIndexSaveEmptyRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.hnsw")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	index := NewHNSWIndex()
	index.SetPath(path)
	if err := index.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stale index file should be removed when nothing is indexed")
	}
}

func TestHNSWIndexRebuildReplacesLoadedGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.hnsw")

	fresh := NewHNSWIndex()
	if err := fresh.BuildFromFaces(galleryFixture()); err != nil {
		t.Fatalf("BuildFromFaces: %v", err)
	}
	fresh.SetPath(path)
	if err := fresh.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	index := NewHNSWIndex()
	if err := index.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// A full rebuild supersedes the graph read from disk.
	replacement := []GalleryFace{
		{ID: 3, ProfessorID: 20, Label: "Ana_Lopez", ImagePath: "Ana_Lopez/c.jpg", Embedding: []float32{0, 0, 1, 0}},
	}
	if err := index.BuildFromFaces(replacement); err != nil {
		t.Fatalf("BuildFromFaces: %v", err)
	}

	paths, _, err := index.Search([]float32{1, 0, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(paths) != 1 || paths[0] != "Ana_Lopez/c.jpg" {
		t.Errorf("Search after rebuild returned %v, want [Ana_Lopez/c.jpg]", paths)
	}
}
