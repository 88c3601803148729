package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// Execute runs the copper CLI with output logged to w and returns an error
// if any command fails. This is the main entry point for the binary.
//
// Logging:
//   - Default: info level
//   - With --verbose (-v): debug level
//
// The logger is attached to the command context and reachable from every
// command via loggerFromContext.
func Execute(ctx context.Context, w io.Writer, args []string) error {
	var verbose bool

	c := New(w, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
