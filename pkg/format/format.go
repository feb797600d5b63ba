// Package format renders normalized entities as editor text: insertion text,
// completion labels and markdown hover cards.
package format

import (
	"fmt"
	"strings"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
)

// DescriptionLength selects which description rendering to show.
type DescriptionLength string

const (
	Short DescriptionLength = "short"
	Long  DescriptionLength = "long"
)

// InsertFormat selects the text inserted for an entity.
type InsertFormat string

const (
	InsertID     InsertFormat = "id"      // T1059.001
	InsertName   InsertFormat = "name"    // Command and Scripting Interpreter: PowerShell
	InsertIDName InsertFormat = "id-name" // T1059.001 Command and Scripting Interpreter: PowerShell
	InsertLink   InsertFormat = "link"    // [T1059.001 ...](https://attack.mitre.org/...)
)

// InsertFormats lists the accepted insertion formats.
var InsertFormats = []InsertFormat{InsertID, InsertName, InsertIDName, InsertLink}

// ParseDescriptionLength validates s. An empty s means Short.
func ParseDescriptionLength(s string) (DescriptionLength, error) {
	switch DescriptionLength(strings.ToLower(s)) {
	case "", Short:
		return Short, nil
	case Long:
		return Long, nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidInput, "description length must be short or long, got %q", s)
}

// ParseInsertFormat validates s. An empty s means InsertIDName.
func ParseInsertFormat(s string) (InsertFormat, error) {
	if s == "" {
		return InsertIDName, nil
	}
	for _, f := range InsertFormats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidInput, "unknown insert format %q (want id, name, id-name or link)", s)
}

// DisplayName returns the entity name, prefixed by the parent's name for
// sub-techniques whose parent is known.
func DisplayName(it attack.Item) string {
	if t, ok := it.(*attack.Technique); ok && t.Parent != nil {
		return t.Parent.Name + ": " + t.Name
	}
	return it.Base().Name
}

// Label is the completion label: id and display name.
func Label(it attack.Item) string {
	return it.Base().ID + " " + DisplayName(it)
}

// Insertion returns the text to insert for it.
func Insertion(it attack.Item, f InsertFormat) string {
	b := it.Base()
	switch f {
	case InsertID:
		return b.ID
	case InsertName:
		return DisplayName(it)
	case InsertLink:
		if b.URL == attack.Unknown {
			return Label(it)
		}
		return fmt.Sprintf("[%s](%s)", Label(it), b.URL)
	default:
		return Label(it)
	}
}

// Description returns the description in the requested length.
func Description(it attack.Item, l DescriptionLength) string {
	d := it.Base().Description
	if l == Long {
		return d.Long
	}
	return d.Short
}

// Hover renders a markdown card for it.
func Hover(it attack.Item, l DescriptionLength) string {
	b := it.Base()
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", DisplayName(it))
	if b.URL != attack.Unknown {
		fmt.Fprintf(&sb, "**%s**: [%s](%s)\n\n", titleOf(it.Kind()), b.ID, b.URL)
	} else {
		fmt.Fprintf(&sb, "**%s**: %s\n\n", titleOf(it.Kind()), b.ID)
	}

	switch v := it.(type) {
	case *attack.Technique:
		if len(v.Tactics) > 0 {
			fmt.Fprintf(&sb, "**Tactics**: %s\n\n", strings.Join(v.Tactics, ", "))
		}
		if v.Parent != nil {
			fmt.Fprintf(&sb, "**Parent**: %s %s\n\n", v.Parent.ID, v.Parent.Name)
		}
		switch {
		case v.Revoked:
			sb.WriteString("_Revoked_\n\n")
		case v.Deprecated:
			sb.WriteString("_Deprecated_\n\n")
		}
	case *attack.Group:
		writeAliases(&sb, v.Name, v.Aliases)
	case *attack.Software:
		writeAliases(&sb, v.Name, v.Aliases)
	}

	sb.WriteString(Description(it, l))
	return sb.String()
}

func writeAliases(sb *strings.Builder, name string, aliases []string) {
	var other []string
	for _, a := range aliases {
		if a != name {
			other = append(other, a)
		}
	}
	if len(other) > 0 {
		fmt.Fprintf(sb, "**Aliases**: %s\n\n", strings.Join(other, ", "))
	}
}

func titleOf(k attack.Kind) string {
	s := k.String()
	return strings.ToUpper(s[:1]) + s[1:]
}
