package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/kickstart/internal/history"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the last persisted bootstrap run summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.HistoryPath == "" {
				return errors.New("config has no history_path; nothing is persisted")
			}

			store, err := history.NewSQLiteStore(cfg.HistoryPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := history.LoadSummary(cmd.Context(), store)
			if err != nil {
				return err
			}
			if summary == nil {
				fmt.Println("no run recorded yet")
				return nil
			}

			fmt.Printf("run %s at %s\n", summary.RunID, summary.Timestamp.Format(time.RFC3339))
			fmt.Printf("total %s, critical %s, %d completed, %d failed\n",
				summary.TotalDuration.Round(time.Millisecond),
				summary.CriticalDuration.Round(time.Millisecond),
				summary.CompletedCount, summary.FailedCount)
			for _, r := range summary.Results {
				fmt.Printf("  %-20s %-12s %-10s %s\n", r.TaskID, r.Tier, r.Outcome, r.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}
}
