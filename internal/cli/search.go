package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/format"
	"github.com/redcanaryco/vscode-attack/pkg/search"
)

// lookupFlags are shared by the commands that run a search.
type lookupFlags struct {
	kinds   []string
	confirm bool
	long    bool
}

func (f *lookupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.kinds, "kind", "k", nil, "restrict to kinds (tactic, technique, group, software, mitigation)")
	cmd.Flags().BoolVar(&f.confirm, "confirm", false, "return description matches even when there are many")
	cmd.Flags().BoolVarP(&f.long, "long", "l", false, "show full descriptions")
}

// resolve returns the kinds, search options and description length for a
// lookup, combining the flags with the configuration.
func (f *lookupFlags) resolve(c *CLI) ([]attack.Kind, search.Options, format.DescriptionLength, error) {
	kinds := c.cfg.Kinds()
	if len(f.kinds) > 0 {
		kinds = nil
		for _, name := range f.kinds {
			k, ok := attack.ParseKind(name)
			if !ok {
				return nil, search.Options{}, "", apperrors.New(apperrors.ErrCodeInvalidInput, "unknown kind %q", name)
			}
			kinds = append(kinds, k)
		}
	}
	opts := c.cfg.SearchOptions()
	opts.Confirmed = f.confirm
	length := c.cfg.DescriptionLength()
	if f.long {
		length = format.Long
	}
	return kinds, opts, length, nil
}

// searchCommand prints every entity matching a query.
func (c *CLI) searchCommand() *cobra.Command {
	var flags lookupFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search techniques, tactics, groups, software and mitigations",
		Long: `Search matches the query against identifiers and names. When nothing matches
and the query is long enough, technique descriptions are searched as well.
Broad description matches are suppressed unless --confirm is given.`,
		Example: `  attack search T1059
  attack search powershell
  attack search -k group apt
  attack search --confirm certutil`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, opts, length, err := flags.resolve(c)
			if err != nil {
				return err
			}
			snap, err := c.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results := search.Any(query, snap, kinds, opts)
			if len(results) == 0 {
				printWarning("No matches for %q", query)
				if hint := suppressedHint(query, snap, kinds, opts); hint != "" {
					printDetail("%s", hint)
				}
				return nil
			}
			for _, it := range results {
				fmt.Fprintln(stdout, itemLine(it, length))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// suppressedHint explains an empty result caused by the description cap.
func suppressedHint(query string, snap *attack.Snapshot, kinds []attack.Kind, opts search.Options) string {
	if opts.Confirmed {
		return ""
	}
	opts.Confirmed = true
	n := len(search.Any(query, snap, kinds, opts))
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d technique descriptions mention %q; rerun with --confirm to list them", n, query)
}

// showCommand prints the detail card of one entity.
func (c *CLI) showCommand() *cobra.Command {
	var (
		long     bool
		markdown bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one technique, tactic, group, software or mitigation",
		Example: `  attack show T1059.001
  attack show --markdown G0007`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			it, err := findItem(snap, args[0])
			if err != nil {
				return err
			}

			length := c.cfg.DescriptionLength()
			if long {
				length = format.Long
			}
			if markdown {
				fmt.Fprintln(stdout, format.Hover(it, length))
				return nil
			}
			fmt.Fprintln(stdout, card(it, length))
			if t, ok := it.(*attack.Technique); ok {
				if subs := snap.Subtechniques(t); len(subs) > 0 {
					fmt.Fprintln(stdout, StyleTitle.Render("Sub-techniques"))
					for _, s := range subs {
						fmt.Fprintln(stdout, itemLine(s, format.Long))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "show the full description")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the hover markdown instead of a card")
	return cmd
}

// findItem looks up id in snap.
func findItem(snap *attack.Snapshot, id string) (attack.Item, error) {
	it := snap.Lookup(id)
	if it == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "no ATT&CK entity with id %s", id)
	}
	return it, nil
}

// insertCommand prints the insertion text of the first match, for editors
// and scripts.
func (c *CLI) insertCommand() *cobra.Command {
	var (
		flags      lookupFlags
		formatName string
	)

	cmd := &cobra.Command{
		Use:   "insert <query>",
		Short: "Print the text an editor would insert for the first match",
		Example: `  attack insert T1059.001
  attack insert --format link mimikatz`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, opts, _, err := flags.resolve(c)
			if err != nil {
				return err
			}
			f := c.cfg.Insert()
			if formatName != "" {
				if f, err = format.ParseInsertFormat(formatName); err != nil {
					return err
				}
			}
			snap, err := c.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results := search.Any(query, snap, kinds, opts)
			if len(results) == 0 {
				return apperrors.New(apperrors.ErrCodeNotFound, "no matches for %q", query)
			}
			fmt.Fprintln(stdout, format.Insertion(results[0], f))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "insertion format: id, name, id-name or link")
	return cmd
}
