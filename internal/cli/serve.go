package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/copper/internal/server"
	"github.com/matzehuels/copper/pkg/cache"
	designio "github.com/matzehuels/copper/pkg/io"
	"github.com/matzehuels/copper/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	root     string // directory for POST /drc?path=
	lruSize  int    // in-memory cache entries
	shutdown time.Duration
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:     server.DefaultAddr,
		lruSize:  cache.DefaultLRUSize,
		shutdown: 10 * time.Second,
	}

	cmd := &cobra.Command{
		Use:   "serve <design.toml>",
		Short: "Serve read-only queries and DRC over HTTP",
		Long: `Serve a design over HTTP until interrupted.

Reports are cached in memory (or in Redis when COPPER_REDIS_ADDR is set).
With --root, POST /drc?path=<relative path> checks other designs below that
directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.root, "root", "", "directory designs may be checked from by path")
	cmd.Flags().IntVar(&opts.lruSize, "cache-size", opts.lruSize, "in-memory report cache entries")
	cmd.Flags().DurationVar(&opts.shutdown, "shutdown-timeout", opts.shutdown, "grace period for in-flight requests")
	cmd.ValidArgsFunction = completeDesignFiles
	_ = cmd.MarkFlagDirname("root")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, path string, opts serveOpts) error {
	d, err := designio.Load(path)
	if err != nil {
		return err
	}

	var ch cache.Cache
	if addr := os.Getenv(envRedisAddr); addr != "" {
		ch, err = cache.NewRedisCache(ctx, cache.RedisOptions{Addr: addr, Prefix: appName + ":"})
	} else {
		ch, err = cache.NewLRUCache(opts.lruSize)
	}
	if err != nil {
		return err
	}
	st, err := newStore(ctx)
	if err != nil {
		ch.Close()
		return err
	}
	runner := pipeline.NewRunner(ch, nil, c.Logger)
	runner.Store = st
	defer runner.Close()

	srv, err := server.New(server.Config{
		Addr:   opts.addr,
		Design: d,
		Key:    pipeline.DesignKey(d, path),
		Root:   opts.root,
		Runner: runner,
		Logger: c.Logger,
	})
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	printSuccess("Serving %s on http://%s", d.Name, srv.Addr())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), opts.shutdown)
	defer cancel()
	return srv.Stop(stopCtx)
}
