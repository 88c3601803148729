package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/copper/pkg/history"
	designio "github.com/matzehuels/copper/pkg/io"
	"github.com/matzehuels/copper/pkg/route"
)

// routeOpts holds the command-line flags for the route command.
type routeOpts struct {
	script string // route script path
	output string // output design path
	write  bool   // overwrite the input design
	keep   bool   // keep going after a failed route
}

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	var opts routeOpts

	cmd := &cobra.Command{
		Use:   "route <design.toml>",
		Short: "Replay a route script against a design",
		Long: `Replay a route script against a design and save the routed result.

Each [[routes]] entry starts on a pad, trace or via, applies its steps and
commits. A route that fails leaves the board untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.script == "" {
				return fmt.Errorf("--script is required")
			}
			if opts.output == "" && !opts.write {
				return fmt.Errorf("either --output or --write is required")
			}
			return c.runRoute(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "route script (TOML)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the routed design to this file")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "overwrite the input design")
	cmd.Flags().BoolVar(&opts.keep, "keep-going", false, "continue after a failed route")
	cmd.ValidArgsFunction = completeDesignFiles
	_ = cmd.MarkFlagFilename("script", "toml")

	return cmd
}

func (c *CLI) runRoute(ctx context.Context, path string, opts routeOpts) error {
	logger := loggerFromContext(ctx)

	d, err := designio.Load(path)
	if err != nil {
		return err
	}
	f, err := os.Open(opts.script)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	script, err := route.ReadScript(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", opts.script, err)
	}

	session := history.NewSession(d.Board, d.Netlist)
	engine, err := route.New(session, d.Route, logger)
	if err != nil {
		return err
	}

	prog := newProgress(logger, "Routed", len(script.Routes))
	for i, r := range script.Routes {
		res, err := engine.Play(r)
		if err != nil {
			prog.fail(err)
			printError("Route %d from %s: %v", i+1, r.From, err)
			if !opts.keep {
				return fmt.Errorf("route %d failed", i+1)
			}
			continue
		}
		prog.succeed()
		printSuccess("Route %d on %s", i+1, StyleHighlight.Render(string(res.Net)))
		printDetail("%d traces · %d vias · %s", len(res.TraceIDs), len(res.ViaIDs), res.Length)
	}

	out := opts.output
	if opts.write {
		out = path
	}
	if err := designio.Save(d, out); err != nil {
		return err
	}
	prog.done()
	printFile(out)
	printNextStep("Check the result", "copper drc "+out)
	return nil
}
