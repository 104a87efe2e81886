// Package cmd implements the kaiten-timelog command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/buildinfo"
	"github.com/thiagokokada/kaiten-timelog/internal/config"
	"github.com/thiagokokada/kaiten-timelog/internal/logging"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:])
}

func run(ctx context.Context, args []string) error {
	root := newRootCmd(newOptions(os.Stdin, os.Stdout, os.Stderr))
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// options carries the persistent flags and everything commands share.
type options struct {
	configPath string
	verbose    bool
	repo       string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	now         func() time.Time
	interactive func() bool

	store    *config.Store
	closeLog func() error
}

func newOptions(stdin io.Reader, stdout, stderr io.Writer) *options {
	return &options{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
		interactive: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           buildinfo.Name,
		Short:         "Log today's git work to Kaiten cards",
		Long:          "Collects today's commits per branch, derives the card id from the branch name and posts time logs to Kaiten.",
		Version:       buildinfo.VersionWithTags(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			closeLog, err := logging.Setup(o.stderr, o.verbose, "")
			if err != nil {
				return err
			}
			o.closeLog = closeLog
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if o.closeLog != nil {
				return o.closeLog()
			}
			return nil
		},
	}
	root.SetIn(o.stdin)
	root.SetOut(o.stdout)
	root.SetErr(o.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", fmt.Sprintf("config file (default %s)", config.DefaultPath()))
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&o.repo, "repo", "", "repository path (overrides git.repo_path)")

	root.AddCommand(
		newScanCmd(o),
		newLogCmd(o),
		newAddCmd(o),
		newWatchCmd(o),
		newHistoryCmd(o),
		newRolesCmd(o),
		newConfigCmd(o),
		newParseCmd(o),
		newVersionCmd(o),
	)
	return root
}

// config loads the configuration on first use and switches logging to the
// configured log file, if any.
func (o *options) config() (*config.Config, error) {
	if o.store != nil {
		return o.store.Current(), nil
	}
	store, err := config.NewStore(o.configPath)
	if err != nil {
		return nil, err
	}
	o.store = store
	cfg := store.Current()
	if cfg.Log.File != "" {
		if o.closeLog != nil {
			_ = o.closeLog()
		}
		closeLog, err := logging.Setup(o.stderr, o.verbose, cfg.Log.File)
		if err != nil {
			return nil, err
		}
		o.closeLog = closeLog
	}
	slog.Debug("config loaded", slog.String("path", store.Path()))
	return cfg, nil
}

func (o *options) configFile() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.DefaultPath()
}
