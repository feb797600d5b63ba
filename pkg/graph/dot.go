package graph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds the entity name below the id in each node.
	Detailed bool

	// LeftToRight lays the tree out horizontally.
	LeftToRight bool
}

var fillColors = map[attack.Kind]string{
	attack.KindTactic:    "#d6eaf8",
	attack.KindTechnique: "white",
}

// ToDOT converts a tree to Graphviz DOT.
func ToDOT(root *Node, opts Options) string {
	rankdir := "TB"
	if opts.LeftToRight {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	var edges []string
	walk(root, func(parent, n *Node) {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs(n, opts.Detailed), ", "))
		if parent != nil {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", parent.ID, n.ID))
		}
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func walk(n *Node, fn func(parent, n *Node)) {
	var rec func(parent, n *Node)
	rec = func(parent, n *Node) {
		fn(parent, n)
		for _, ch := range n.Children {
			rec(n, ch)
		}
	}
	rec(nil, n)
}

func attrs(n *Node, detailed bool) []string {
	label := n.ID
	if detailed {
		label += "\n" + n.Name
	}
	out := []string{fmt.Sprintf("label=%q", label)}
	if c, ok := fillColors[n.Kind]; ok && c != "white" {
		out = append(out, fmt.Sprintf("fillcolor=%q", c))
	}
	if n.Retired {
		out = append(out, "style=\"rounded,filled,dashed\"", "fontcolor=gray40")
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
