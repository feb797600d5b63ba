package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/redcanaryco/vscode-attack/pkg/cache"
	"github.com/redcanaryco/vscode-attack/pkg/dataset"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached ATT&CK datasets and release listings",
	}

	cmd.AddCommand(c.cacheListCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheListCommand creates the "cache list" subcommand.
func (c *CLI) cacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached dataset files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.datasetDir()
			if err != nil {
				return err
			}
			entries, err := dataset.ListCached(dir, c.cfg.Dataset)
			if apperrors.Is(err, apperrors.ErrCodeNotFound) || (err == nil && len(entries) == 0) {
				printInfo("No cached datasets in %s", dir)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, cacheTable(entries))
			return nil
		},
	}
}

// cacheTable renders entries newest first.
func cacheTable(entries []dataset.Entry) string {
	rows := make([][]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		rows = append(rows, []string{
			e.Version,
			e.ModTime.Format("2006-01-02 15:04"),
			humanSize(e.Size),
			filepath.Base(e.Path),
		})
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("VERSION", "FETCHED", "SIZE", "FILE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var keepLatest bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached datasets and release listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.datasetDir()
			if err != nil {
				return err
			}
			n, err := clearCache(dir, c.cfg.Dataset, keepLatest)
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Removed %d cached files", n)
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepLatest, "keep-latest", false, "keep the newest cached dataset")
	return cmd
}

// clearCache removes the dataset files of name and the release listing
// cache under dir. It returns the number of files removed.
func clearCache(dir, name string, keepLatest bool) (int, error) {
	entries, err := dataset.ListCached(dir, name)
	if apperrors.Is(err, apperrors.ErrCodeNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if keepLatest && len(entries) > 0 {
		entries = entries[:len(entries)-1]
	}

	count := 0
	for _, e := range entries {
		if err := os.Remove(e.Path); err != nil {
			return count, apperrors.Wrap(apperrors.ErrCodeInternal, err, "remove cached dataset")
		}
		count++
	}

	if _, err := os.Stat(filepath.Join(dir, httpCacheDir)); err == nil {
		fc, err := cache.NewFileCache(filepath.Join(dir, httpCacheDir))
		if err != nil {
			return count, err
		}
		n, err := fc.Clear()
		count += n
		if err != nil {
			return count, apperrors.Wrap(apperrors.ErrCodeInternal, err, "clear response cache")
		}
	}
	return count, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.datasetDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
