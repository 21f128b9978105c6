package gallery

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Sweeper runs periodic filename cleanup over the gallery root, skipping
// sweeps when nothing under the root changed since the last pass.
type Sweeper struct {
	root     string
	interval time.Duration
	modTimes map[string]time.Time
}

// NewSweeper creates a sweeper for the gallery root.
func NewSweeper(root string, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{
		root:     root,
		interval: interval,
		modTimes: make(map[string]time.Time),
	}
}

// snapshot walks the gallery and records modification times per path.
func (s *Sweeper) snapshot() (map[string]time.Time, error) {
	times := make(map[string]time.Time)
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		times[path] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk gallery: %w", err)
	}
	return times, nil
}

// Changed reports whether the gallery tree differs from the last snapshot
// and updates the snapshot.
func (s *Sweeper) Changed() (bool, error) {
	current, err := s.snapshot()
	if err != nil {
		return false, err
	}

	changed := len(current) != len(s.modTimes)
	if !changed {
		for path, mod := range current {
			prev, ok := s.modTimes[path]
			if !ok || !prev.Equal(mod) {
				changed = true
				break
			}
		}
	}

	s.modTimes = current
	return changed, nil
}

// SweepOnce cleans the gallery if it changed since the last sweep.
// Returns the number of renames performed.
func (s *Sweeper) SweepOnce() (int, error) {
	changed, err := s.Changed()
	if err != nil {
		return 0, err
	}
	if !changed {
		return 0, nil
	}

	renamed, err := CleanDirectory(s.root)
	if err != nil {
		return renamed, err
	}
	if renamed > 0 {
		// Renames touch mod times, refresh so the next tick is quiet.
		if _, err := s.Changed(); err != nil {
			return renamed, err
		}
	}
	return renamed, nil
}

// Run sweeps on a fixed interval until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			renamed, err := s.SweepOnce()
			if err != nil {
				log.Printf("gallery sweep failed: %v", err)
				continue
			}
			if renamed > 0 {
				log.Printf("gallery sweep renamed %d entries", renamed)
			}
		}
	}
}
