package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/duration"
)

func newParseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse DURATION",
		Short: "Show how a duration is understood",
		Example: `  kaiten-timelog parse 1ч30м
  kaiten-timelog parse 1.5h`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			d, err := duration.ParseValid(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(o.stdout, "%s (%s, %d minutes)\n", duration.Format(d), d, d.TotalMinutes())
			return nil
		},
	}
}
