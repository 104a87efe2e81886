package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/config"
	"github.com/thiagokokada/kaiten-timelog/internal/tracker"
	"github.com/thiagokokada/kaiten-timelog/internal/ui"
)

func newRolesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List your Kaiten roles, for kaiten.role_id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			if cfg.Kaiten.URL == "" || cfg.Kaiten.Token == "" {
				return fmt.Errorf("%w: set kaiten.url and kaiten.token", config.ErrTrackerNotConfigured)
			}
			tc := tracker.New(tracker.Config{URL: cfg.Kaiten.URL, Token: cfg.Kaiten.Token})

			user, err := tc.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			roles, err := tc.UserRoles(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(o.stdout, "%s %s\n", ui.StyleBold.Render(user.FullName), ui.StyleDim.Render(user.Email))
			for _, r := range roles {
				mark := " "
				if r.ID == cfg.Kaiten.RoleID {
					mark = ui.StyleGreen.Render("*")
				}
				fmt.Fprintf(o.stdout, "%s %6d  %s\n", mark, r.ID, r.Name)
			}
			return nil
		},
	}
}
