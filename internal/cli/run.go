package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/kickstart/internal/config"
	"github.com/me/kickstart/internal/diag"
	"github.com/me/kickstart/internal/history"
	"github.com/me/kickstart/internal/idle"
	"github.com/me/kickstart/internal/scheduler"
	"github.com/me/kickstart/pkg/model"
)

func newRunCmd() *cobra.Command {
	var diagAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a bootstrap sequence defined in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Tasks) == 0 {
				return errors.New("config defines no tasks (add a tasks: section)")
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			notifier := idle.TimerNotifier{Delay: time.Duration(cfg.IdleDelay)}
			sched := scheduler.New(cfg.SchedulerConfig(), store, notifier, logger)

			for _, spec := range cfg.Tasks {
				task, err := buildTask(spec)
				if err != nil {
					return err
				}
				if err := sched.Register(task); err != nil {
					return fmt.Errorf("register %s: %w", spec.ID, err)
				}
			}

			if diagAddr != "" {
				go func() {
					logger.Info("diagnostics listening", "addr", diagAddr)
					if err := http.ListenAndServe(diagAddr, diag.Handler(sched)); err != nil {
						logger.Error("diagnostics server", "error", err)
					}
				}()
			}

			summary := sched.Start(cmd.Context())
			printCritical(summary)

			if !sched.WaitForCompletion(0) {
				return errors.New("bootstrap did not complete")
			}
			printSummary(sched.CurrentSummary())
			return nil
		},
	}

	cmd.Flags().StringVar(&diagAddr, "diag", "", "Serve diagnostics HTTP on this address (e.g. :6060)")
	return cmd
}

func loadConfig() (config.Config, error) {
	if flagConfig == "" {
		return config.Default(), nil
	}
	return config.Load(flagConfig)
}

func openStore(cfg config.Config) (history.Store, error) {
	if cfg.HistoryPath == "" {
		return history.NewMemoryStore(), nil
	}
	return history.NewSQLiteStore(cfg.HistoryPath, logger)
}

// buildTask converts a declarative TaskSpec into a runnable descriptor with
// a synthetic sleep/fail action.
func buildTask(spec config.TaskSpec) (model.TaskDescriptor, error) {
	tier, err := config.ParseTier(spec.Tier)
	if err != nil {
		return model.TaskDescriptor{}, fmt.Errorf("task %s: %w", spec.ID, err)
	}

	sleep := time.Duration(spec.Sleep)
	fail := spec.Fail
	return model.TaskDescriptor{
		ID:        spec.ID,
		Tier:      tier,
		Timeout:   time.Duration(spec.Timeout),
		DependsOn: spec.DependsOn,
		Action: func(ctx context.Context) error {
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return ctx.Err()
			}
			if fail {
				return errors.New("simulated failure")
			}
			return nil
		},
	}, nil
}

func printCritical(summary *model.RunSummary) {
	failures := summary.CriticalFailures()
	if len(failures) == 0 {
		fmt.Printf("interactive after %s\n", summary.CriticalDuration.Round(time.Millisecond))
		return
	}
	fmt.Printf("interactive after %s with %d critical failure(s):\n",
		summary.CriticalDuration.Round(time.Millisecond), len(failures))
	for _, f := range failures {
		fmt.Printf("  %-20s %-10s %s\n", f.TaskID, f.Outcome, f.ErrorMessage)
	}
}

func printSummary(summary *model.RunSummary) {
	fmt.Printf("\nrun %s: %d completed, %d failed in %s\n",
		summary.RunID, summary.CompletedCount, summary.FailedCount,
		summary.TotalDuration.Round(time.Millisecond))
	fmt.Printf("%-20s %-12s %-10s %s\n", "TASK", "TIER", "OUTCOME", "DURATION")
	for _, r := range summary.Results {
		fmt.Printf("%-20s %-12s %-10s %s\n", r.TaskID, r.Tier, r.Outcome, r.Duration.Round(time.Millisecond))
	}
}
