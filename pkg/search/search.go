// Package search implements tiered lookup over normalized ATT&CK entities.
//
// A query runs through the tiers in order and stops at the first that
// answers it:
//
//  1. An empty query matches nothing.
//  2. An exact id match against a retired entity returns that entity alone.
//     Retired entities are never matched any other way.
//  3. Active entities whose id equals the query or whose name contains it,
//     both case-insensitively.
//  4. When tier 3 found nothing and the query is at least MinTermLength
//     long, active entities whose long description contains the query
//     (case-sensitive). Only enabled through Options.Descriptions.
//  5. Unless Confirmed, a description tier result larger than
//     DescriptionCap is discarded as noise.
//
// Results keep collection order; there is no ranking.
package search

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
)

const (
	// DefaultMinTermLength gates the description tier.
	DefaultMinTermLength = 5

	// DefaultDescriptionCap is the largest unconfirmed description result.
	DefaultDescriptionCap = 3
)

// Entry is anything the engine can match.
type Entry interface {
	Base() *attack.Entity
	Retired() bool
}

// Options tunes the tiers. Values are used as given: a zero
// DescriptionCap drops every unconfirmed description match and a zero
// MinTermLength disables the length gate. Start from DefaultOptions.
type Options struct {
	MinTermLength  int  // minimum query length for the description tier
	DescriptionCap int  // unconfirmed description results above this are dropped
	Descriptions   bool // enable the description tier
	Confirmed      bool // the user explicitly asked for a description search
}

// DefaultOptions returns the standard thresholds with descriptions disabled.
func DefaultOptions() Options {
	return Options{
		MinTermLength:  DefaultMinTermLength,
		DescriptionCap: DefaultDescriptionCap,
	}
}

// Search returns the entries matching query.
func Search[T Entry](query string, entries []T, opts Options) []T {
	if query == "" {
		return nil
	}

	for _, e := range entries {
		if e.Retired() && strings.EqualFold(e.Base().ID, query) {
			return []T{e}
		}
	}

	lower := strings.ToLower(query)
	var matches []T
	for _, e := range entries {
		if e.Retired() {
			continue
		}
		b := e.Base()
		if strings.EqualFold(b.ID, query) || strings.Contains(strings.ToLower(b.Name), lower) {
			matches = append(matches, e)
		}
	}
	if len(matches) > 0 || !opts.Descriptions {
		return matches
	}

	if utf8.RuneCountInString(query) < opts.MinTermLength {
		return nil
	}
	for _, e := range entries {
		if !e.Retired() && strings.Contains(e.Base().Description.Long, query) {
			matches = append(matches, e)
		}
	}
	if !opts.Confirmed && len(matches) > opts.DescriptionCap {
		return nil
	}
	return matches
}

// Techniques searches the technique collection with the description tier
// enabled.
func Techniques(query string, snap *attack.Snapshot, opts Options) []*attack.Technique {
	if snap == nil {
		return nil
	}
	opts.Descriptions = true
	return Search(query, snap.Techniques(), opts)
}

// Any searches every kind in kinds (all kinds when empty) and concatenates
// the results in kind order. Only techniques use the description tier.
func Any(query string, snap *attack.Snapshot, kinds []attack.Kind, opts Options) []attack.Item {
	if snap == nil || query == "" {
		return nil
	}
	if len(kinds) == 0 {
		kinds = attack.Kinds
	}

	var out []attack.Item
	for _, k := range attack.Kinds {
		if !slices.Contains(kinds, k) {
			continue
		}
		o := opts
		o.Descriptions = k == attack.KindTechnique
		out = append(out, Search(query, snap.Items(k), o)...)
	}
	return out
}

