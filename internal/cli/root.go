package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/kickstart/internal/logging"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the kickstart CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kickstart",
		Short: "kickstart — tiered bootstrap scheduler",
		Long:  "kickstart runs demonstration bootstrap sequences and inspects persisted run history.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to YAML config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newHistoryCmd(),
	)

	return root
}
