package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/copper/pkg/drc"
	"github.com/matzehuels/copper/pkg/pipeline"
)

// drcOpts holds the command-line flags for the drc command.
type drcOpts struct {
	report      string // JSON report output path
	noCache     bool   // disable the report cache
	refresh     bool   // recompute even when cached
	interactive bool   // browse violations and edit exclusions
	strict      bool   // fail on warnings too
}

// drcCommand creates the drc command.
func (c *CLI) drcCommand() *cobra.Command {
	var opts drcOpts

	cmd := &cobra.Command{
		Use:   "drc <design.toml>",
		Short: "Check a design against its rules",
		Long: `Check a design against its rules and print the violations.

Reports are cached by board, netlist and ruleset content. Exclusions from the
design file and the exclusion store are applied to every run. The command
fails when an active error remains, or any active violation with --strict.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDRC(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.report, "report", "r", "", "write the JSON report to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute the report even when cached")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse violations and toggle exclusions")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings as failures")
	cmd.ValidArgsFunction = completeDesignFiles

	return cmd
}

func (c *CLI) runDRC(ctx context.Context, path string, opts drcOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Checking design...")
	untrack := trackDRC(spinner)
	spinner.Start()
	res, err := runner.Execute(ctx, pipeline.Options{Path: path, Refresh: opts.refresh, Logger: c.Logger})
	untrack()
	if err != nil {
		spinner.StopWithError("Check failed")
		return err
	}
	spinner.Stop()
	rep := res.Report

	if opts.interactive {
		if err := c.editExclusions(ctx, runner, res); err != nil {
			return err
		}
	}

	active := rep.Active()
	fmt.Println(StyleTitle.Render(res.Key))
	if len(active) > 0 {
		fmt.Println(renderViolations(active))
	}
	printReportStats(rep, res.CacheInfo.ReportHit)
	for _, x := range res.Stale {
		printWarning("Exclusion %s matches nothing", x.Fingerprint)
	}

	if opts.report != "" {
		if err := writeReport(rep, opts.report); err != nil {
			return err
		}
		printFile(opts.report)
	}

	switch {
	case !rep.Passed():
		return fmt.Errorf("drc failed: %d errors", rep.Errors())
	case opts.strict && len(active) > 0:
		return fmt.Errorf("drc failed: %d warnings", len(active))
	}
	printSuccess("Design passed")
	return nil
}

func writeReport(rep *drc.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := rep.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// editExclusions runs the violation browser and stores the edits.
func (c *CLI) editExclusions(ctx context.Context, runner *pipeline.Runner, res *pipeline.Result) error {
	final, err := tea.NewProgram(NewViolationListModel(res.Report), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("violation browser: %w", err)
	}
	m, ok := final.(ViolationListModel)
	if !ok || !m.Saved {
		return nil
	}

	added, removed := m.Changes()
	author := os.Getenv("USER")
	for _, v := range added {
		x := drc.Exclusion{
			Fingerprint: v.Fingerprint(),
			Rule:        v.Rule,
			Author:      author,
			Created:     time.Now().UTC(),
		}
		if err := runner.Store.Save(ctx, res.Key, x); err != nil {
			return err
		}
	}
	for _, fp := range removed {
		if err := runner.Store.Delete(ctx, res.Key, fp); err != nil {
			printWarning("Exclusion %s is kept in the design file", fp)
		}
	}
	if len(added)+len(removed) > 0 {
		printInfo("Updated exclusions: %d added, %d removed", len(added), len(removed))
	}

	excl, err := runner.Exclusions(ctx, res.Design, res.Key)
	if err != nil {
		return err
	}
	excl.Apply(res.Report)
	return nil
}
