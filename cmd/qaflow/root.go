package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/qaflow/internal/api"
	"github.com/jackzampolin/qaflow/internal/config"
	"github.com/jackzampolin/qaflow/internal/home"
	"github.com/jackzampolin/qaflow/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logFormat    string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "qaflow",
	Short: "Analyze question files with an LLM and store structured results",
	Long: `qaflow reads a CSV or workbook of questions, asks an LLM for a
structured analysis of them and stores the result as a JSON artifact
next to the input.

Each run:
  - Normalizes the input and picks the question column
  - Requests schema-checked structured output, falling back to plain text
  - Writes the artifact and reports a job envelope`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := api.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		api.SetOutputFormat(format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.qaflow/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "qaflow home directory (default: ~/.qaflow)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFormat, "log-format", "text", "log format: text or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger. Logs go to stderr so command output
// on stdout stays machine readable.
func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch logFormat {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text or json)", logFormat)
	}
}

// loadEnv resolves the home directory, logger and configuration shared by
// the commands that run jobs locally.
func loadEnv() (*home.Dir, *slog.Logger, *config.Manager, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, nil, nil, err
	}
	mgr, err := config.NewManager(cfgFile, h.Path(), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if f := mgr.ConfigFile(); f != "" {
		logger.Debug("config loaded", "file", f)
	}
	return h, logger, mgr, nil
}
