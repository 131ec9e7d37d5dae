package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"yt_digest/internal/config"
)

const defaultConfigPath = "config.yaml"

type globalOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "digester",
		Short: "Summarize YouTube videos through a chat page",
		Long: `digester reads a video's transcript in a browser, sends it to a chat
page together with a prompt, waits for the streamed answer to finish and
delivers it to the configured destinations.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "path to config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newExtractCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newCanonicalizeCommand())

	return cmd
}

// load reads the config file. A missing default file falls back to the
// built-in defaults.
func (o *globalOptions) load() (*config.Config, *slog.Logger, error) {
	logger := setupLogger("info")

	cfg, err := config.Load(o.configPath)
	if errors.Is(err, fs.ErrNotExist) && o.configPath == defaultConfigPath {
		logger.Debug("no config file, using defaults", "path", o.configPath)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, nil, err
	}

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	return cfg, setupLogger(cfg.LogLevel), nil
}
