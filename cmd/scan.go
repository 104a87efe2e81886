package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/ui"
)

func newScanCmd(o *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Show today's commits grouped by branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			c, err := o.build(cfg, wants{scanner: true})
			if err != nil {
				return err
			}
			defer c.Close()

			items, err := c.scanner.Scan(cmd.Context(), c.app.User, o.now())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(o.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			fmt.Fprint(o.stdout, ui.RenderItems(items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print work items as JSON")

	return cmd
}
