package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	"github.com/redcanaryco/vscode-attack/pkg/dataset"
)

// updateCommand runs the freshness check and reports the dataset in use.
func (c *CLI) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Download the latest ATT&CK dataset if the cache is out of date",
		Long: `Update compares the newest published ATT&CK release with the newest cached
dataset and downloads the release when it is missing. Older cached files are
kept so that a failed download can fall back to them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sw := startStopwatch(loggerFromContext(ctx))

			ds, err := c.loadDataset(ctx)
			if err != nil {
				return err
			}
			sw.done("checked dataset", "version", ds.Version)

			printSuccess("Using ATT&CK %s", StyleHighlight.Render(ds.Version))
			printFile(ds.Path)
			snap := attack.NewSnapshot(ds)
			for _, k := range attack.Kinds {
				printDetail("%-12s %d", k.Plural(), snap.Len(k))
			}
			fmt.Fprintln(stdout)
			printNextStep("Look something up", "attack search powershell")
			return nil
		},
	}
}

// versionsCommand lists published releases alongside the cached ones.
func (c *CLI) versionsCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List published ATT&CK releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, err := c.newServices(ctx, nil)
			if err != nil {
				return err
			}
			defer svc.Close()

			spinner := newSpinnerWithContext(ctx, "Listing releases...")
			spinner.Start()
			published, err := svc.registry.ListVersions(ctx, c.cfg.Prefix, !all)
			spinner.Stop()
			if err != nil {
				return err
			}

			cached := map[string]bool{}
			if dir, err := c.datasetDir(); err == nil {
				entries, _ := dataset.ListCached(dir, c.cfg.Dataset)
				for _, e := range entries {
					cached[e.Version] = true
				}
			}

			// Newest first.
			for i := len(published) - 1; i >= 0; i-- {
				v := published[i]
				line := StyleValue.Render(v)
				if cached[v] {
					line += " " + StyleDim.Render("(cached)")
				}
				fmt.Fprintln(stdout, line)
			}
			c.Logger.Debug("listed releases", "count", len(published), "prerelease", all,
				"cached", strings.Join(slices.Sorted(maps.Keys(cached)), ","))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include pre-releases")
	return cmd
}
