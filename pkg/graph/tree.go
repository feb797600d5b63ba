package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
)

// Node is one entity in the hierarchy.
type Node struct {
	ID       string
	Name     string
	Kind     attack.Kind
	Retired  bool
	Children []*Node
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	c := 1
	for _, ch := range n.Children {
		c += ch.Count()
	}
	return c
}

// Tree returns the hierarchy below the tactic or technique with id. A
// sub-technique yields its parent's tree.
func Tree(snap *attack.Snapshot, id string) (*Node, error) {
	switch it := snap.Lookup(id).(type) {
	case *attack.Tactic:
		root := nodeOf(it)
		for _, t := range snap.TacticTechniques(it) {
			root.Children = append(root.Children, techniqueNode(snap, t))
		}
		return root, nil
	case *attack.Technique:
		if it.Parent != nil {
			it = it.Parent
		}
		return techniqueNode(snap, it), nil
	case nil:
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "no entity with id %s", id)
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "%s is a %s, not a tactic or technique", id, it.Kind())
	}
}

func techniqueNode(snap *attack.Snapshot, t *attack.Technique) *Node {
	n := nodeOf(t)
	for _, st := range snap.Subtechniques(t) {
		n.Children = append(n.Children, nodeOf(st))
	}
	return n
}

func nodeOf(it attack.Item) *Node {
	b := it.Base()
	return &Node{ID: b.ID, Name: b.Name, Kind: it.Kind(), Retired: it.Retired()}
}

// WriteText prints the tree with box-drawing indentation.
func WriteText(w io.Writer, root *Node) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", root.ID, root.Name); err != nil {
		return err
	}
	return writeChildren(w, root.Children, "")
}

func writeChildren(w io.Writer, nodes []*Node, indent string) error {
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		label := n.ID + " " + n.Name
		if n.Retired {
			label += " (retired)"
		}
		if _, err := fmt.Fprintln(w, indent+branch+label); err != nil {
			return err
		}
		if err := writeChildren(w, n.Children, indent+next); err != nil {
			return err
		}
	}
	return nil
}

// String renders the tree as text.
func (n *Node) String() string {
	var sb strings.Builder
	_ = WriteText(&sb, n)
	return sb.String()
}
