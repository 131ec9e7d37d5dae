package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newExtractCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <video-url>",
		Short: "Print a video's title, canonical URL and transcript as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			a, err := newExtractApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			video, err := a.source.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(video)
		},
	}
}
