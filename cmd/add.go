package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/app"
	"github.com/thiagokokada/kaiten-timelog/internal/ui"
)

func newAddCmd(o *options) *cobra.Command {
	var card, timeSpent, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log time to a card that has no branch",
		Example: `  kaiten-timelog add --card 12345678 --time 30m --description "standup"
  kaiten-timelog add --card https://acme.kaiten.ru/space/1/card/12345678 --time 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var entry app.Entry
			switch {
			case card != "":
				id, ok := ui.ParseCard(card)
				if !ok {
					return fmt.Errorf("invalid card reference %q", card)
				}
				if strings.TrimSpace(timeSpent) == "" {
					return fmt.Errorf("--time is required with --card")
				}
				entry = app.Entry{CardID: id, Time: timeSpent, Description: description}
			case o.interactive():
				var err error
				if entry, err = ui.NewManualForm().Run(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("not a terminal: pass --card and --time")
			}

			cfg, err := o.config()
			if err != nil {
				return err
			}
			c, err := o.build(cfg, wants{tracker: true})
			if err != nil {
				return err
			}
			defer c.Close()

			rep := c.app.Submit(cmd.Context(), []app.Entry{entry})
			fmt.Fprint(o.stdout, ui.RenderReport(rep))
			if rep.Skipped > 0 {
				return fmt.Errorf("nothing logged: duration is zero")
			}
			return rep.Err()
		},
	}

	cmd.Flags().StringVarP(&card, "card", "c", "", "card id or URL")
	cmd.Flags().StringVarP(&timeSpent, "time", "t", "", "time spent, e.g. 1h30m")
	cmd.Flags().StringVarP(&description, "description", "d", "", "time log comment")

	return cmd
}
