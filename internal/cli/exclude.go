package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/copper/pkg/drc"
	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/pipeline"
)

// excludeCommand creates the exclusion management command.
func (c *CLI) excludeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclude",
		Short: "Manage accepted violations",
		Long: `Manage accepted violations in the exclusion store.

Exclusions are keyed by violation fingerprint, the rule plus the stable keys
of the offending items, so they survive unrelated edits to the design.`,
	}

	cmd.AddCommand(c.excludeListCommand())
	cmd.AddCommand(c.excludeAddCommand())
	cmd.AddCommand(c.excludeRemoveCommand())

	return cmd
}

// excludeListCommand creates the "exclude list" subcommand.
func (c *CLI) excludeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <design.toml>",
		Short: "List stored exclusions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, key, err := c.exclusionRunner(ctx, args[0])
			if err != nil {
				return err
			}
			defer runner.Close()

			list, err := runner.Store.Load(ctx, key)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No stored exclusions for %s", key)
				return nil
			}
			for _, x := range list {
				fmt.Println(StyleValue.Render(x.Fingerprint))
				if x.Note != "" {
					printDetail("%s", x.Note)
				}
				if x.Author != "" {
					printDetail("by %s on %s", x.Author, x.Created.Format("2006-01-02"))
				}
			}
			return nil
		},
	}
}

// excludeAddCommand creates the "exclude add" subcommand.
func (c *CLI) excludeAddCommand() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "add <design.toml> <fingerprint>",
		Short: "Accept a violation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Execute(ctx, pipeline.Options{Path: args[0], Logger: c.Logger})
			if err != nil {
				return err
			}
			v, ok := res.Report.Find(args[1])
			if !ok {
				return cerrors.New(cerrors.ErrCodeNotFound, "no violation with fingerprint %s", args[1])
			}

			x := drc.NewExclusions().Exclude(v, note, os.Getenv("USER"))
			if err := runner.Store.Save(ctx, res.Key, x); err != nil {
				return err
			}
			printSuccess("Excluded %s", v)
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "m", "", "reason for accepting the violation")

	return cmd
}

// excludeRemoveCommand creates the "exclude remove" subcommand.
func (c *CLI) excludeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <design.toml> <fingerprint>",
		Short: "Withdraw an exclusion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, key, err := c.exclusionRunner(ctx, args[0])
			if err != nil {
				return err
			}
			defer runner.Close()

			if err := runner.Store.Delete(ctx, key, args[1]); err != nil {
				return err
			}
			printSuccess("Removed %s", args[1])
			return nil
		},
	}
}

// exclusionRunner returns a cache-less runner and the store key of the
// design at path.
func (c *CLI) exclusionRunner(ctx context.Context, path string) (*pipeline.Runner, string, error) {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return nil, "", err
	}
	d, err := runner.Load(pipeline.Options{Path: path})
	if err != nil {
		runner.Close()
		return nil, "", err
	}
	return runner, pipeline.DesignKey(d, path), nil
}
