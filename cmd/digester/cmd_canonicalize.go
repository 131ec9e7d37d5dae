package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yt_digest/internal/source/youtube"
)

func newCanonicalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "canonicalize <url>...",
		Short: "Print the canonical watch URL of each video link",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range args {
				fmt.Fprintln(cmd.OutOrStdout(), youtube.CanonicalURL(raw))
			}
			return nil
		},
	}
}
