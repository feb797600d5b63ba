package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	"github.com/redcanaryco/vscode-attack/pkg/format"
)

// stdout receives all command output. Tests replace it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleRetired = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleCard    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Entities
// =============================================================================

// itemLine renders one search result: id, display name and, when long is
// false, the short description.
func itemLine(it attack.Item, l format.DescriptionLength) string {
	b := it.Base()
	id := StyleHighlight.Render(fmt.Sprintf("%-10s", b.ID))
	name := StyleValue.Render(format.DisplayName(it))
	if it.Retired() {
		name = styleRetired.Render(format.DisplayName(it))
	}
	line := id + " " + name + " " + StyleDim.Render("("+it.Kind().String()+")")
	if l == format.Short {
		line += "\n           " + StyleDim.Render(truncate(b.Description.Short, 100))
	}
	return line
}

// card renders a bordered detail view of one entity.
func card(it attack.Item, l format.DescriptionLength) string {
	b := it.Base()
	var sb strings.Builder

	sb.WriteString(StyleTitle.Render(format.DisplayName(it)))
	sb.WriteString("\n")
	sb.WriteString(StyleHighlight.Render(b.ID) + "  " + StyleLink.Render(b.URL))
	sb.WriteString("\n")

	switch v := it.(type) {
	case *attack.Technique:
		if len(v.Tactics) > 0 {
			sb.WriteString(StyleDim.Render("tactics: " + strings.Join(v.Tactics, ", ")))
			sb.WriteString("\n")
		}
		if v.Parent != nil {
			sb.WriteString(StyleDim.Render("parent:  " + v.Parent.ID + " " + v.Parent.Name))
			sb.WriteString("\n")
		}
		if v.Retired() {
			sb.WriteString(StyleWarning.Render("retired"))
			sb.WriteString("\n")
		}
	case *attack.Group:
		if len(v.Aliases) > 0 {
			sb.WriteString(StyleDim.Render("aliases: " + strings.Join(v.Aliases, ", ")))
			sb.WriteString("\n")
		}
	case *attack.Software:
		if len(v.Aliases) > 0 {
			sb.WriteString(StyleDim.Render("aliases: " + strings.Join(v.Aliases, ", ")))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Width(80).Render(format.Description(it, l)))
	return styleCard.Render(sb.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
