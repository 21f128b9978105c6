package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maperezv/staff-attendance/internal/attendance"
	"github.com/maperezv/staff-attendance/internal/config"
	"github.com/maperezv/staff-attendance/internal/database"
	"github.com/maperezv/staff-attendance/internal/database/postgres"
	"github.com/maperezv/staff-attendance/internal/gallery"
	"github.com/maperezv/staff-attendance/internal/liveness"
	"github.com/maperezv/staff-attendance/internal/recognizer"
	"github.com/maperezv/staff-attendance/internal/vision"
	"github.com/maperezv/staff-attendance/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	Long: `Start the Staff Attendance API server.
The server exposes face detection, liveness-gated recognition, attendance
registration and the schedule/professor management endpoints.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// initGalleryHNSW loads or builds the in-memory nearest-neighbor index over
// the gallery embeddings. Failures are not fatal: matching falls back to
// pgvector queries.
func initGalleryHNSW(ctx context.Context, faces *postgres.FaceRepository, indexPath string) *database.HNSWIndex {
	index := database.NewHNSWIndex()
	faces.EnableHNSW(index)

	if indexPath != "" {
		index.SetPath(indexPath)
		if err := index.Load(indexPath); err != nil {
			fmt.Printf("Warning: could not load the index at %s: %v\n", indexPath, err)
		} else if !index.IsEmpty() {
			// The persisted graph only carries embeddings; the id to
			// image-path mapping comes from the database.
			all, err := faces.ListAll(ctx)
			if err == nil {
				index.RebuildFromFaces(all)
				fmt.Printf("Gallery HNSW index loaded from %s (%d faces)\n", indexPath, index.Count())
				return index
			}
			fmt.Printf("Warning: listing gallery faces failed: %v\n", err)
		}
	}

	if err := faces.WarmUpHNSW(ctx); err != nil {
		fmt.Printf("Warning: failed to build the gallery HNSW index: %v\n", err)
		fmt.Printf("Face matching will use PostgreSQL queries (slower)\n")
		return index
	}
	fmt.Printf("Gallery HNSW index built with %d faces\n", index.Count())
	return index
}

// buildVision wires the sidecar clients. The matcher sidecar is optional;
// without it, recognition embeds crops locally and searches the stored
// gallery embeddings.
func buildVision(cfg *config.Config, faces *postgres.FaceRepository) (vision.Detector, vision.Embedder, vision.Matcher, vision.EyeDetector, error) {
	if cfg.Vision.DetectorURL == "" {
		return nil, nil, nil, nil, errors.New("DETECTOR_URL environment variable is required")
	}
	if cfg.Vision.EmbedderURL == "" {
		return nil, nil, nil, nil, errors.New("EMBEDDER_URL environment variable is required")
	}

	httpClient := &http.Client{Timeout: cfg.Vision.Timeout}

	detector, err := vision.NewHTTPDetector(cfg.Vision.DetectorURL, httpClient)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	eyes, err := vision.NewHTTPEyeDetector(cfg.Vision.DetectorURL, httpClient)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	embedder, err := vision.NewHTTPEmbedder(cfg.Vision.EmbedderURL, httpClient)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var matcher vision.Matcher
	if cfg.Vision.MatcherURL != "" {
		matcher, err = vision.NewHTTPMatcher(cfg.Vision.MatcherURL, httpClient)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		fmt.Printf("Using the matcher sidecar at %s\n", cfg.Vision.MatcherURL)
	} else {
		matcher = vision.NewLocalMatcher(embedder, faces, 0)
		fmt.Printf("No MATCHER_URL set, matching against the stored gallery embeddings\n")
	}

	return detector, embedder, matcher, eyes, nil
}

// resolveServeHostPort resolves port and host from flags and environment
// variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.Gallery.Path == "" {
		return errors.New("GALLERY_PATH environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	faces := postgres.NewFaceRepository(pool)
	ctx := context.Background()
	index := initGalleryHNSW(ctx, faces, cfg.Database.HNSWIndexPath)

	detector, embedder, matcher, eyes, err := buildVision(cfg, faces)
	if err != nil {
		return err
	}

	gate := liveness.New(eyes, cfg.Liveness.BlinkThreshold, cfg.Liveness.ReflectionCutoff)
	voter := recognizer.New(gate, matcher, cfg.Gallery.Path, cfg.Recognizer.CropSize, cfg.Recognizer.MinVotes)

	attendanceRepo := postgres.NewAttendanceRepository(pool)
	attendanceService := attendance.NewService(attendanceRepo, cfg.Attendance.Tolerance())

	deps := web.Deps{
		Detector:       detector,
		Embedder:       embedder,
		Voter:          voter,
		Attendance:     attendanceService,
		AttendanceLog:  attendanceRepo,
		Roles:          postgres.NewRoleRepository(pool),
		Users:          postgres.NewUserRepository(pool),
		Professors:     postgres.NewProfessorRepository(pool),
		Faces:          faces,
		ClassSchedules: postgres.NewClassScheduleRepository(pool),
		WorkSchedules:  postgres.NewWorkScheduleRepository(pool),
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, deps)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sweeper := gallery.NewSweeper(cfg.Gallery.Path, cfg.Gallery.CleanInterval)
	go sweeper.Run(runCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()

		if cfg.Database.HNSWIndexPath != "" {
			if err := index.Save(); err != nil {
				fmt.Printf("Warning: failed to save the gallery HNSW index: %v\n", err)
			} else {
				fmt.Println("Gallery HNSW index saved to disk")
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Staff Attendance API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
