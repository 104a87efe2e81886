package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/config"
	"github.com/thiagokokada/kaiten-timelog/internal/ui"
)

func newHistoryCmd(o *options) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List time logged on a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			c, err := o.build(cfg, wants{})
			if err != nil {
				return err
			}
			defer c.Close()
			if c.journal == nil {
				return fmt.Errorf("journal is disabled: set journal.path")
			}

			if day != "" {
				d, err := time.ParseInLocation(config.DateLayout, day, time.Local)
				if err != nil {
					return fmt.Errorf("--day: want YYYY-MM-DD: %w", err)
				}
				c.app.Now = func() time.Time { return d }
			}
			st, err := c.app.Today(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(o.stdout, ui.RenderHistory(st))
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "day to show as YYYY-MM-DD (default today)")

	return cmd
}
