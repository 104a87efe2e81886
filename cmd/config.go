package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/config"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write a config file with default settings",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				path := o.configFile()
				if err := config.WriteDefault(path); err != nil {
					if errors.Is(err, os.ErrExist) {
						return fmt.Errorf("config already exists: %s", path)
					}
					return err
				}
				fmt.Fprintf(o.stdout, "wrote %s\n", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration with secrets hidden",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, err := o.config()
				if err != nil {
					return err
				}
				data, err := config.Marshal(cfg.Redacted())
				if err != nil {
					return err
				}
				_, err = o.stdout.Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "set-token [TOKEN]",
			Short: "Store the Kaiten token in the OS keyring",
			Long: `Stores the token for kaiten.url in the OS keyring. Without an argument the
token is read from the first line of standard input. A kaiten.token in the
config file or environment still takes precedence.`,
			Args: cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				cfg, err := o.config()
				if err != nil {
					return err
				}
				token, err := o.readToken(args)
				if err != nil {
					return err
				}
				if err := config.StoreToken(cfg.Kaiten.URL, token); err != nil {
					return err
				}
				fmt.Fprintf(o.stdout, "token for %s stored in keyring\n", cfg.Kaiten.URL)
				if cfg.Kaiten.Token != "" && !cfg.Kaiten.TokenFromKeyring() {
					fmt.Fprintln(o.stderr, "note: kaiten.token is also set in the config or environment and overrides the keyring")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete-token",
			Short: "Remove the Kaiten token from the OS keyring",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, err := o.config()
				if err != nil {
					return err
				}
				return config.DeleteToken(cfg.Kaiten.URL)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			Run: func(*cobra.Command, []string) {
				fmt.Fprintln(o.stdout, o.configFile())
			},
		},
	)

	return cmd
}

func (o *options) readToken(args []string) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}
	line, err := bufio.NewReader(o.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
