package search_test

import (
	"slices"
	"testing"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	"github.com/redcanaryco/vscode-attack/pkg/attack/attacktest"
	"github.com/redcanaryco/vscode-attack/pkg/search"
)

func ids[T search.Entry](entries []T) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Base().ID)
	}
	return out
}

func TestTechniques(t *testing.T) {
	snap := attacktest.Snapshot(t)
	opts := search.DefaultOptions()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", nil},
		{"exact id", "T1059.001", []string{"T1059.001"}},
		{"exact id any case", "t1140", []string{"T1140"}},
		{"retired exact id", "T1086", []string{"T1086"}},
		{"retired by name", "Scripting", []string{"T1059"}},
		{"name containment", "powershell", []string{"T1059.001"}},
		{"name containment many", "command", []string{"T1059", "T1059.003"}},
		{"short common word", "the", nil},
		{"short description term", "cmd", nil},
		{"description", "certutil", []string{"T1140"}},
		{"description is case sensitive", "CERTUTIL", nil},
		{"description over cap", "Adversaries", nil},
		{"no match", "nonexistent", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(search.Techniques(tt.query, snap, opts))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Techniques(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRevokedExactID(t *testing.T) {
	snap := attacktest.Snapshot(t)
	tech, _ := snap.Technique("T1059.001")
	revoked := *tech
	revoked.Revoked = true

	entries := []*attack.Technique{snap.Techniques()[0], &revoked}
	got := search.Search("T1059.001", entries, search.DefaultOptions())
	if len(got) != 1 || got[0].ID != "T1059.001" {
		t.Errorf("Search(T1059.001) = %v, want the revoked technique", ids(got))
	}

	if got := search.Search("PowerShell", entries, search.DefaultOptions()); len(got) != 0 {
		t.Errorf("retired technique matched by name: %v", ids(got))
	}
}

func TestConfirmedDescriptionSearch(t *testing.T) {
	snap := attacktest.Snapshot(t)
	opts := search.DefaultOptions()
	opts.Confirmed = true

	got := ids(search.Techniques("Adversaries", snap, opts))
	want := []string{"T1059", "T1059.001", "T1059.003", "T1140", attack.Unknown}
	if !slices.Equal(got, want) {
		t.Errorf("confirmed search = %v, want %v", got, want)
	}
}

func TestOptionsThresholds(t *testing.T) {
	snap := attacktest.Snapshot(t)

	opts := search.Options{MinTermLength: 3, DescriptionCap: 10}
	if got := ids(search.Techniques("cmd", snap, opts)); !slices.Equal(got, []string{"T1059.003"}) {
		t.Errorf("lowered min length: got %v", got)
	}
	if got := search.Techniques("Adversaries", snap, opts); len(got) != 5 {
		t.Errorf("raised cap: got %d results, want 5", len(got))
	}
}

func TestZeroDescriptionCap(t *testing.T) {
	snap := attacktest.Snapshot(t)
	opts := search.DefaultOptions()
	opts.DescriptionCap = 0

	if got := search.Techniques("certutil", snap, opts); len(got) != 0 {
		t.Errorf("zero cap returned unconfirmed matches: %v", ids(got))
	}
	opts.Confirmed = true
	if got := ids(search.Techniques("certutil", snap, opts)); !slices.Equal(got, []string{"T1140"}) {
		t.Errorf("confirmed with zero cap = %v, want [T1140]", got)
	}
}

func TestMinTermLengthCountsRunes(t *testing.T) {
	snap := attacktest.Snapshot(t)
	tech, _ := snap.Technique("T1140")
	local := *tech
	local.Description.Long = "Adversaries may decode files with 証明書 utilities."
	entries := []*attack.Technique{&local}

	opts := search.DefaultOptions()
	opts.Descriptions = true
	if got := search.Search("証明書", entries, opts); len(got) != 0 {
		t.Errorf("3-character query passed the 5-character gate: %v", ids(got))
	}

	opts.MinTermLength = 3
	if got := ids(search.Search("証明書", entries, opts)); !slices.Equal(got, []string{"T1140"}) {
		t.Errorf("Search(証明書) = %v, want [T1140]", got)
	}
}

func TestDescriptionsDisabled(t *testing.T) {
	snap := attacktest.Snapshot(t)
	if got := search.Search("certutil", snap.Techniques(), search.DefaultOptions()); len(got) != 0 {
		t.Errorf("description tier ran while disabled: %v", ids(got))
	}
}

func TestAny(t *testing.T) {
	snap := attacktest.Snapshot(t)
	opts := search.DefaultOptions()

	tests := []struct {
		name  string
		query string
		kinds []attack.Kind
		want  []string
	}{
		{"all kinds", "execution", nil, []string{"TA0002", "T1059.001", "M1038"}},
		{"group id", "g0007", nil, []string{"G0007"}},
		{"software name", "mimikatz", nil, []string{"S0002"}},
		{"kind filter", "execution", []attack.Kind{attack.KindMitigation}, []string{"M1038"}},
		{"description only for techniques", "certutil", nil, []string{"T1140"}},
		{"empty", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(search.Any(tt.query, snap, tt.kinds, opts))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Any(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestNilSnapshot(t *testing.T) {
	if got := search.Techniques("T1059", nil, search.DefaultOptions()); got != nil {
		t.Errorf("Techniques on nil snapshot = %v", got)
	}
	if got := search.Any("T1059", nil, nil, search.DefaultOptions()); got != nil {
		t.Errorf("Any on nil snapshot = %v", got)
	}
}
