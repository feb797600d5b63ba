package graph_test

import (
	"strings"
	"testing"

	"github.com/redcanaryco/vscode-attack/pkg/attack/attacktest"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/graph"
)

func TestTree(t *testing.T) {
	snap := attacktest.Snapshot(t)

	tests := []struct {
		id    string
		root  string
		count int
	}{
		{"TA0002", "TA0002", 4},
		{"T1059", "T1059", 3},
		{"t1059.003", "T1059", 3},
		{"TA0005", "TA0005", 2},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			root, err := graph.Tree(snap, tt.id)
			if err != nil {
				t.Fatalf("Tree() error: %v", err)
			}
			if root.ID != tt.root || root.Count() != tt.count {
				t.Errorf("Tree() = %s with %d nodes, want %s with %d", root.ID, root.Count(), tt.root, tt.count)
			}
		})
	}
}

func TestTreeErrors(t *testing.T) {
	snap := attacktest.Snapshot(t)

	if _, err := graph.Tree(snap, "T0000"); !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		t.Errorf("missing id error = %v", err)
	}
	if _, err := graph.Tree(snap, "G0007"); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("group id error = %v", err)
	}
}

func TestWriteText(t *testing.T) {
	root, _ := graph.Tree(attacktest.Snapshot(t), "TA0002")
	want := `TA0002 Execution
└── T1059 Command and Scripting Interpreter
    ├── T1059.001 PowerShell
    └── T1059.003 Windows Command Shell
`
	if got := root.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestToDOT(t *testing.T) {
	root, _ := graph.Tree(attacktest.Snapshot(t), "TA0002")
	dot := graph.ToDOT(root, graph.Options{Detailed: true, LeftToRight: true})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"TA0002" [label="TA0002\nExecution", fillcolor="#d6eaf8"];`,
		`"T1059" -> "T1059.001";`,
		`"TA0002" -> "T1059";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Count(dot, "->") != 3 {
		t.Errorf("ToDOT() edge count = %d, want 3", strings.Count(dot, "->"))
	}
}
