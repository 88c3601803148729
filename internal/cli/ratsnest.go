package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	designio "github.com/matzehuels/copper/pkg/io"
	"github.com/matzehuels/copper/pkg/netlist"
	"github.com/matzehuels/copper/pkg/pipeline"
)

// ratsnestOpts holds the command-line flags for the ratsnest command.
type ratsnestOpts struct {
	output  string // output path, stdout when empty
	format  string // dot, svg or json
	net     string // restrict to one net
	all     bool   // include routed nets
	noCache bool   // disable the cache
}

// ratsnestCommand creates the ratsnest command.
func (c *CLI) ratsnestCommand() *cobra.Command {
	opts := ratsnestOpts{format: pipeline.FormatDOT}

	cmd := &cobra.Command{
		Use:   "ratsnest <design.toml>",
		Short: "Export unrouted connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRatsnest(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, json")
	cmd.Flags().StringVar(&opts.net, "net", "", "only this net")
	cmd.Flags().BoolVar(&opts.all, "all", false, "include fully routed nets")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.ValidArgsFunction = completeDesignFiles
	_ = cmd.RegisterFlagCompletionFunc("net", completeNets)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runRatsnest(ctx context.Context, path string, opts ratsnestOpts) error {
	d, err := designio.Load(path)
	if err != nil {
		return err
	}
	ch, err := newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(ch, nil, c.Logger)
	defer runner.Close()

	data, hit, err := runner.RatsnestWithCacheInfo(ctx, d, pipeline.RatsnestOptions{
		Format: opts.format,
		Net:    netlist.NetID(opts.net),
		All:    opts.all,
	})
	if err != nil {
		return err
	}
	c.Logger.Debug("ratsnest rendered", "format", opts.format, "bytes", len(data), "cached", hit)

	if opts.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printFile(opts.output)
	return nil
}
