package main

import (
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var (
		prefix  string
		current bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Deliver the next answer of an already open chat page",
		Long: `watch attaches to a chat tab of a running browser (see browser.remote_url),
waits for the answer being generated to finish and delivers it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if prefix == "" {
				prefix = cfg.Chat.Origin
			}

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.service(cfg, nil).Watch(cmd.Context(), prefix, current)
			if err != nil {
				return err
			}

			printStats(cmd, stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "url-prefix", "", "attach to the first tab whose URL starts with this (default: chat.origin)")
	cmd.Flags().BoolVar(&current, "current", false, "deliver the last answer already on the page once it is stable")

	return cmd
}
