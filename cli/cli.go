// Package cli wires the worker's command-line surface.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/debba/tabularis-csv-plugin/config"
	"github.com/debba/tabularis-csv-plugin/rpc"
)

var (
	configPath string
	logLevel   string
)

// rootCmd serves the control channel. The host spawns the worker with no
// arguments, so serving is the root command's own behavior.
var rootCmd = &cobra.Command{
	Use:   "tabularis-csv-plugin",
	Short: "Tabularis worker that serves a folder of .csv/.tsv files as a SQL database",
	Long: `tabularis-csv-plugin is a Tabularis database plugin worker.

It reads newline-delimited JSON-RPC 2.0 requests on stdin, loads every
.csv/.tsv file of the requested folder into an in-memory SQLite database
(one table per file, delimiter and column types auto-detected), and writes
one response line per request on stdout. Diagnostics go to stderr only.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// serveCmd is an explicit alias for the root behavior.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON-RPC control channel on stdin/stdout",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file (default: $"+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI. It returns an error only for startup conditions that
// make the worker unusable.
func Execute() error {
	return rootCmd.Execute()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Protocol bytes own stdout; every diagnostic goes to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	dispatcher := rpc.NewDispatcher(cmd.InOrStdin(), cmd.OutOrStdout(), cfg, logger)
	logger.Info("worker started", "version", version)
	return dispatcher.Run(cmd.Context())
}
