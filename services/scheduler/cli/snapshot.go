package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dhairyashah5122/project-hotelrover/internal/cliutil"
	"github.com/Dhairyashah5122/project-hotelrover/services/scheduler"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Compute and store the report for one UTC day",
	Long: `Compute the housekeeper report for a single UTC day, store it as the
latest snapshot and publish it, without waiting for the schedule or taking
the leader lease. Defaults to yesterday.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().String("date", "", "day to snapshot as YYYY-MM-DD (default: yesterday UTC)")
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	day := time.Now().UTC().AddDate(0, 0, -1)
	if s, _ := cmd.Flags().GetString("date"); s != "" {
		parsed, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		day = parsed
	}

	cfg := loadConfig()
	d, err := buildScheduler(cfg, scheduler.WithLogger(cliutil.BuildLogger(cfg.LogLevel, "scheduler")))
	if err != nil {
		return err
	}
	defer d.closeAll()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	report, err := d.sched.Snapshot(ctx, day)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
