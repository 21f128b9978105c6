package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "staff-attendance",
	Short: "Facial-recognition attendance tracking for academic staff",
	Long: `Staff Attendance is the backend for a facial-recognition attendance
system: it detects and recognizes faces through the vision sidecars, gates
them on liveness, and records schedule-bound entry and exit events for
professors.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
