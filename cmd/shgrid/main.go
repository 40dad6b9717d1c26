// Command shgrid browses rows served over http, and serves rows from an ndjson file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/clarktrimble/sabot"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shgrid"
	"shgrid/fetch"
	"shgrid/message"
	"shgrid/serve"
	"shgrid/store/duck"
	"shgrid/util"
)

const (
	defaultConfig = "shgrid.yaml"
	defaultLog    = "shgrid.log"
	settle        = 250 * time.Millisecond
)

var (
	version = "dev"
	cfgFile string
)

func main() {

	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {

	root := &cobra.Command{
		Use:          "shgrid",
		Short:        "Page, sort, and filter rows from a json api",
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "yaml config file")

	root.AddCommand(newViewCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newSampleCmd())

	return root
}

func newViewCmd() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse rows in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {

			cfg, err := shgrid.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logPath := cfg.LogFile
			if logPath == "" {
				logPath = defaultLog
			}
			logFile := util.OpenLog(logPath, 0644)
			defer util.CloseLog(logFile)

			lgr := &sabot.Sabot{Writer: logFile, MaxLen: cfg.LogMaxLen}
			ctx := lgr.WithFields(cmd.Context(), "run_id", uuid.NewString())

			return view(ctx, cfg, lgr)
		},
	}

	flags := cmd.Flags()
	flags.String("url", "", "rows endpoint")
	flags.Int("limit", 0, "rows per page")
	flags.Duration("debounce", 0, "wait for changes to settle before fetching")
	flags.Bool("discard-stale", false, "drop responses overtaken by a newer request")

	return cmd
}

func newServeCmd() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rows from an ndjson file",
		RunE: func(cmd *cobra.Command, args []string) error {

			cfg, err := shgrid.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Data == "" {
				return errors.Errorf("no data file configured")
			}

			lgr := &sabot.Sabot{Writer: os.Stderr, MaxLen: cfg.LogMaxLen}
			ctx := lgr.WithFields(cmd.Context(), "run_id", uuid.NewString())

			ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return serveRows(ctx, cfg, lgr)
		},
	}

	flags := cmd.Flags()
	flags.String("data", "", "ndjson file to serve")
	flags.String("addr", "", "listen address")
	flags.Bool("watch", false, "reload when the data file changes")
	flags.StringSlice("index", nil, "columns to index")

	return cmd
}

func newSampleCmd() *cobra.Command {

	return &cobra.Command{
		Use:   "sample-config [path]",
		Short: "Write a starter config unless one exists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			path := defaultConfig
			if len(args) > 0 {
				path = args[0]
			}

			written, err := util.SampleConfig(shgrid.Sample(), path, 0644)
			if err != nil {
				return err
			}

			if !written {
				fmt.Fprintf(cmd.OutOrStdout(), "%s exists, leaving it be\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func view(ctx context.Context, cfg *shgrid.Config, lgr *sabot.Sabot) (err error) {

	sg, err := cfg.NewGrid(ctx, lgr)
	if err != nil {
		return
	}
	defer sg.Close()

	gateway := fetch.New(nil, cfg.Fetch, lgr)

	prog := tea.NewProgram(shgrid.NewModel(ctx, sg, gateway, cfg.URL, lgr))
	sg.OnChange(message.ChangedListener(prog.Send))

	_, err = prog.Run()
	err = errors.Wrapf(err, "failed to run grid")
	return
}

func serveRows(ctx context.Context, cfg *shgrid.Config, lgr *sabot.Sabot) (err error) {

	dk, err := duck.New(lgr)
	if err != nil {
		return
	}
	defer dk.Close()

	err = dk.Load(ctx, cfg.Data)
	if err != nil {
		return
	}

	for _, column := range cfg.Index {
		err = dk.Index(ctx, column)
		if err != nil {
			return
		}
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return cfg.Server.New(dk, lgr).Serve(ctx)
	})

	if cfg.Watch {
		group.Go(func() error {
			return serve.Watch(ctx, cfg.Data, settle, func(ctx context.Context) error {
				return dk.Load(ctx, cfg.Data)
			}, lgr)
		})
	}

	err = group.Wait()
	return
}
