package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	"github.com/redcanaryco/vscode-attack/pkg/format"
	"github.com/redcanaryco/vscode-attack/pkg/search"
)

// pageSize is the number of results shown per page.
const pageSize = 10

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// resultsKeyMap binds the browser keys.
type resultsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Next   key.Binding
	Prev   key.Binding
	Detail key.Binding
	Back   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var resultsKeys = resultsKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Next:   key.NewBinding(key.WithKeys("n", "right", "pgdown"), key.WithHelp("n", "next page")),
	Prev:   key.NewBinding(key.WithKeys("p", "left", "pgup"), key.WithHelp("p", "previous page")),
	Detail: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "details")),
	Back:   key.NewBinding(key.WithKeys("esc", "backspace", "enter"), key.WithHelp("esc", "back")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "select")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// =============================================================================
// ResultsModel - Paginated result browser
// =============================================================================

// ResultsModel is the bubbletea model for paging through search results.
type ResultsModel struct {
	Query    string
	Items    []attack.Item
	Cursor   int
	Detail   bool // showing the card of the item under the cursor
	Selected attack.Item
	Length   format.DescriptionLength

	pager paginator.Model
}

// NewResultsModel creates a results browser.
func NewResultsModel(query string, items []attack.Item, length format.DescriptionLength) ResultsModel {
	pager := paginator.New(paginator.WithPerPage(pageSize))
	pager.Type = paginator.Arabic
	pager.SetTotalPages(len(items))
	return ResultsModel{Query: query, Items: items, Length: length, pager: pager}
}

// Page returns the zero-based page of the cursor.
func (m ResultsModel) Page() int { return m.pager.Page }

// Pages returns the number of pages, at least one.
func (m ResultsModel) Pages() int { return m.pager.TotalPages }

func (m ResultsModel) Init() tea.Cmd {
	return nil
}

func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.Detail {
		switch {
		case km.String() == "q" || km.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(km, resultsKeys.Back):
			m.Detail = false
		}
		return m, nil
	}

	switch {
	case key.Matches(km, resultsKeys.Quit):
		return m, tea.Quit
	case key.Matches(km, resultsKeys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(km, resultsKeys.Down):
		if m.Cursor < len(m.Items)-1 {
			m.Cursor++
		}
	case key.Matches(km, resultsKeys.Next):
		if !m.pager.OnLastPage() {
			m.pager.NextPage()
			m.Cursor = m.pager.Page * pageSize
		}
	case key.Matches(km, resultsKeys.Prev):
		if !m.pager.OnFirstPage() {
			m.pager.PrevPage()
			m.Cursor = m.pager.Page * pageSize
		}
	case key.Matches(km, resultsKeys.Detail):
		if len(m.Items) > 0 {
			m.Detail = true
		}
	case key.Matches(km, resultsKeys.Select):
		if len(m.Items) > 0 {
			m.Selected = m.Items[m.Cursor]
			return m, tea.Quit
		}
	}
	m.pager.Page = m.Cursor / pageSize
	return m, nil
}

func (m ResultsModel) View() string {
	var b strings.Builder

	if m.Detail && len(m.Items) > 0 {
		b.WriteString(card(m.Items[m.Cursor], format.Long))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("esc back  q quit"))
		return b.String()
	}

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Results for %q", m.Query)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  n/p page  space details  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Items) == 0 {
		b.WriteString(listDimStyle.Render("  no matches"))
		return b.String()
	}

	start, end := m.pager.GetSliceBounds(len(m.Items))

	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, it.Base().ID, truncate(format.DisplayName(it), 48), it.Kind().String()})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Kind").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := start + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case idx < len(m.Items) && m.Items[idx].Retired():
				return listDimStyle
			default:
				return listNormalStyle
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if m.Length == format.Short {
		b.WriteString(listDimStyle.Render(truncate(m.Items[m.Cursor].Base().Description.Short, 100)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  page %s  [%d/%d]", m.pager.View(), m.Cursor+1, len(m.Items))))
	return b.String()
}

// browseCommand opens the interactive result browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		flags      lookupFlags
		formatName string
	)

	cmd := &cobra.Command{
		Use:   "browse <query>",
		Short: "Page through search results interactively",
		Long:  `Browse runs a search and opens a pager over the results. Selecting a result prints its insertion text.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, opts, length, err := flags.resolve(c)
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
			model := NewResultsModel(query, search.Any(query, snap, kinds, opts), length)
			p := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(ResultsModel); ok && m.Selected != nil {
				fmt.Fprintln(stdout, format.Insertion(m.Selected, f))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "insertion format: id, name, id-name or link")
	return cmd
}
