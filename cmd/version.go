package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/buildinfo"
)

func newVersionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(o.stdout, buildinfo.VersionWithTags())
		},
	}
}
