package cli

import (
	"os"

	"github.com/Dhairyashah5122/project-hotelrover/internal/cliutil"
)

var rootCmd = cliutil.Root("notifier", "Hotelrover notifier: audits assignment events and sends notifications")

// Execute is the entry point called from cmd/notifier/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
