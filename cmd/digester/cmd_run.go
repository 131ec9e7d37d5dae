package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"yt_digest/internal/domain"
	"yt_digest/internal/prompts"
	"yt_digest/internal/service"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	var (
		promptName     string
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "run <video-url>",
		Short: "Summarize a video and deliver the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			selector := promptSelector(promptName, nonInteractive)
			stats, err := a.service(cfg, selector).Run(cmd.Context(), args[0])
			if errors.Is(err, service.ErrSelectionCancelled) {
				fmt.Fprintln(cmd.ErrOrStderr(), "cancelled")
				return nil
			}
			if err != nil {
				return err
			}

			printStats(cmd, stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&promptName, "prompt", "", "name of the prompt to use instead of asking")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "use the default prompt without asking")

	return cmd
}

func promptSelector(name string, nonInteractive bool) service.PromptSelector {
	switch {
	case name != "":
		return prompts.NamedSelector{Name: name}
	case nonInteractive:
		return prompts.DefaultSelector{}
	default:
		return prompts.InteractiveSelector{In: os.Stdin, Out: os.Stderr}
	}
}

func printStats(cmd *cobra.Command, stats *domain.RunStats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "video:     %s\n", stats.VideoURL)
	if stats.SummaryID != 0 {
		fmt.Fprintf(out, "summary:   %d (duplicate: %t)\n", stats.SummaryID, stats.Duplicate)
	}
	fmt.Fprintf(out, "delivered: %d, failed: %d, skipped: %d\n", stats.Delivered, stats.Failed, stats.Skipped)
	fmt.Fprintf(out, "took:      %s\n", stats.Duration.Round(time.Millisecond))
}
