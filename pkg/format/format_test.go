package format_test

import (
	"strings"
	"testing"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	"github.com/redcanaryco/vscode-attack/pkg/attack/attacktest"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/format"
)

func TestInsertion(t *testing.T) {
	snap := attacktest.Snapshot(t)
	sub, _ := snap.Technique("T1059.001")
	orphan, _ := snap.Technique("T9999.001")

	tests := []struct {
		name string
		item attack.Item
		f    format.InsertFormat
		want string
	}{
		{"id", sub, format.InsertID, "T1059.001"},
		{"name", sub, format.InsertName, "Command and Scripting Interpreter: PowerShell"},
		{"id-name", sub, format.InsertIDName, "T1059.001 Command and Scripting Interpreter: PowerShell"},
		{"link", sub, format.InsertLink, "[T1059.001 Command and Scripting Interpreter: PowerShell](https://attack.mitre.org/techniques/T1059/001)"},
		{"link without url", orphan, format.InsertLink, "T9999.001 Orphan Sub-technique"},
		{"group", snap.Lookup("G0007"), format.InsertIDName, "G0007 APT28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := format.Insertion(tt.item, tt.f); got != tt.want {
				t.Errorf("Insertion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHover(t *testing.T) {
	snap := attacktest.Snapshot(t)

	sub, _ := snap.Technique("T1059.001")
	got := format.Hover(sub, format.Short)
	for _, want := range []string{
		"### Command and Scripting Interpreter: PowerShell",
		"**Technique**: [T1059.001](https://attack.mitre.org/techniques/T1059/001)",
		"**Tactics**: execution",
		"**Parent**: T1059 Command and Scripting Interpreter",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Hover() missing %q:\n%s", want, got)
		}
	}

	cmd, _ := snap.Technique("T1059")
	if short := format.Hover(cmd, format.Short); strings.Contains(short, "Most systems") {
		t.Error("short hover should only show the first line")
	}
	if long := format.Hover(cmd, format.Long); !strings.Contains(long, "Most systems ship with one.") {
		t.Error("long hover should show the full description")
	}

	revoked, _ := snap.Technique("T1086")
	if !strings.Contains(format.Hover(revoked, format.Short), "_Revoked_") {
		t.Error("hover should flag revoked techniques")
	}

	group := format.Hover(snap.Lookup("G0007"), format.Short)
	if !strings.Contains(group, "**Aliases**: Sofacy, Fancy Bear") {
		t.Errorf("group hover aliases:\n%s", group)
	}
}

func TestParse(t *testing.T) {
	if l, err := format.ParseDescriptionLength(""); err != nil || l != format.Short {
		t.Errorf("ParseDescriptionLength(\"\") = %v, %v", l, err)
	}
	if l, err := format.ParseDescriptionLength("LONG"); err != nil || l != format.Long {
		t.Errorf("ParseDescriptionLength(LONG) = %v, %v", l, err)
	}
	if _, err := format.ParseDescriptionLength("medium"); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("ParseDescriptionLength(medium) error = %v", err)
	}

	for _, f := range format.InsertFormats {
		if got, err := format.ParseInsertFormat(string(f)); err != nil || got != f {
			t.Errorf("ParseInsertFormat(%s) = %v, %v", f, got, err)
		}
	}
	if f, _ := format.ParseInsertFormat(""); f != format.InsertIDName {
		t.Errorf("default insert format = %s", f)
	}
	if _, err := format.ParseInsertFormat("html"); err == nil {
		t.Error("ParseInsertFormat(html) should fail")
	}
}
