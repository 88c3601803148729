package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/copper/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the DRC report cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached reports and renderings",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			count, err := clearCache(dir)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired and unreadable cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openFileCache()
			if fc == nil || err != nil {
				return err
			}
			n, err := fc.Prune()
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			if n == 0 {
				printInfo("Nothing to prune")
				return nil
			}
			printSuccess("Pruned %d cached entries", n)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache usage by artifact kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openFileCache()
			if fc == nil || err != nil {
				return err
			}
			usage, err := fc.Usage()
			if err != nil {
				return fmt.Errorf("read cache: %w", err)
			}
			if len(usage) == 0 {
				printInfo("Cache is empty")
				return nil
			}
			fmt.Println(renderUsage(usage))
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// openFileCache opens the CLI file cache. It returns nil and no error when
// the directory does not exist yet, after telling the user so.
func openFileCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil, nil
	}
	return cache.NewFileCache(dir)
}

// clearCache removes every entry of the file cache in dir and returns how
// many there were.
func clearCache(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, err
	}
	n, err := fc.Clear()
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

// renderUsage lays out per-kind cache usage with a totals row.
func renderUsage(usage []cache.Usage) string {
	var total cache.Usage
	rows := make([][]string, 0, len(usage)+1)
	for _, u := range usage {
		rows = append(rows, []string{u.Kind, fmt.Sprint(u.Entries), formatBytes(u.Bytes), fmt.Sprint(u.Expired)})
		total.Entries += u.Entries
		total.Bytes += u.Bytes
		total.Expired += u.Expired
	}
	rows = append(rows, []string{"total", fmt.Sprint(total.Entries), formatBytes(total.Bytes), fmt.Sprint(total.Expired)})

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Entries", "Size", "Expired").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case row == len(rows)-1:
				return StyleValue
			case col == 3 && rows[row][3] != "0":
				return StyleWarning
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
