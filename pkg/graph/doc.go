// Package graph builds the tactic → technique → sub-technique hierarchy of a
// snapshot and renders it as text, Graphviz DOT or SVG.
//
//	root, err := graph.Tree(snap, "TA0002")
//	dot := graph.ToDOT(root, graph.Options{})
//	svg, err := graph.RenderSVG(ctx, dot)
package graph
