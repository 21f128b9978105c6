package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/maperezv/staff-attendance/internal/config"
	"github.com/maperezv/staff-attendance/internal/database/postgres"
	"github.com/maperezv/staff-attendance/internal/schedule"
)

var importCmd = &cobra.Command{
	Use:   "import-schedules <workbook.xlsx>",
	Short: "Import class schedules from a faculty planning workbook",
	Long: `Import class schedules from the faculty planning workbook (.xlsx).
Professors are resolved by their university id; rows without a matching
professor are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportSchedules,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("dry-run", false, "Parse the workbook without writing to the database")
}

func runImportSchedules(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	dryRun := mustGetBool(cmd, "dry-run")

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer file.Close()

	rows, problems, err := schedule.ParseWorkbook(file)
	if err != nil {
		return err
	}
	for _, problem := range problems {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", problem)
	}
	fmt.Printf("Parsed %d schedule rows\n", len(rows))

	if dryRun {
		fmt.Println("Dry run, nothing written")
		return nil
	}

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	importer := schedule.NewImporter(
		postgres.NewProfessorRepository(pool),
		postgres.NewClassScheduleRepository(pool),
	)

	bar := progressbar.Default(int64(len(rows)), "importing")
	result, err := importer.Import(context.Background(), rows, func() {
		_ = bar.Add(1)
	})
	if err != nil {
		return err
	}
	_ = bar.Finish()

	fmt.Printf("\nImported %d schedules, skipped %d rows without a matching professor\n",
		result.Imported, result.Skipped)
	for _, msg := range result.Errors {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d rows failed to import", len(result.Errors))
	}
	return nil
}
