package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/graph"
)

// treeCommand draws the technique hierarchy under a tactic or technique.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		output   string
		detailed bool
		ltr      bool
	)

	cmd := &cobra.Command{
		Use:   "tree <tactic-or-technique-id>",
		Short: "Draw the technique hierarchy of a tactic or technique",
		Long: `Tree prints the techniques of a tactic and their sub-techniques, or a
technique and its sub-techniques. With --output ending in .dot or .svg the
hierarchy is written as a Graphviz graph instead.`,
		Example: `  attack tree TA0002
  attack tree T1059 -o t1059.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := c.loadSnapshot(ctx)
			if err != nil {
				return err
			}
			root, err := graph.Tree(snap, args[0])
			if err != nil {
				return err
			}
			c.Logger.Debug("built tree", "root", root.ID, "nodes", root.Count())

			if output == "" {
				return graph.WriteText(stdout, root)
			}

			dot := graph.ToDOT(root, graph.Options{Detailed: detailed, LeftToRight: ltr})
			var data []byte
			switch strings.ToLower(filepath.Ext(output)) {
			case ".dot", ".gv":
				data = []byte(dot)
			case ".svg":
				sw := startStopwatch(loggerFromContext(ctx))
				if data, err = graph.RenderSVG(ctx, dot); err != nil {
					return err
				}
				sw.done("rendered svg", "bytes", len(data))
			default:
				return apperrors.New(apperrors.ErrCodeInvalidInput, "unsupported output %q (want .dot or .svg)", output)
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInternal, err, "write %s", output)
			}
			printSuccess("Wrote %d nodes", root.Count())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write a .dot or .svg file instead of printing")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label graph nodes with names as well as ids")
	cmd.Flags().BoolVar(&ltr, "ltr", false, "lay the graph out left to right")
	return cmd
}
