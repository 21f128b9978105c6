package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maperezv/staff-attendance/internal/config"
	"github.com/maperezv/staff-attendance/internal/gallery"
)

var galleryCleanCmd = &cobra.Command{
	Use:   "gallery-clean [path]",
	Short: "Normalize gallery file and folder names",
	Long: `Normalize gallery file and folder names: diacritics are stripped,
spaces become underscores and anything outside [A-Za-z0-9._-] is dropped.
Defaults to GALLERY_PATH when no path is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGalleryClean,
}

func init() {
	rootCmd.AddCommand(galleryCleanCmd)

	galleryCleanCmd.Flags().Bool("watch", false, "Keep running and sweep on a timer")
}

func runGalleryClean(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	path := cfg.Gallery.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no gallery path given and GALLERY_PATH is not set")
	}

	if !mustGetBool(cmd, "watch") {
		renamed, err := gallery.CleanDirectory(path)
		if err != nil {
			return err
		}
		fmt.Printf("Renamed %d entries under %s\n", renamed, path)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s, sweeping every %s\n", path, cfg.Gallery.CleanInterval)
	gallery.NewSweeper(path, cfg.Gallery.CleanInterval).Run(ctx)
	return nil
}
