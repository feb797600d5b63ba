package attack

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Snapshot is an immutable, fully normalized view of one dataset.
type Snapshot struct {
	ID       uuid.UUID
	Version  string
	Modified time.Time
	LoadedAt time.Time

	Tactics     []*Tactic
	Groups      []*Group
	Software    []*Software
	Mitigations []*Mitigation

	techniques []*Technique
	active     []*Technique
	retired    []*Technique
	children   map[*Technique][]*Technique
	byID       map[string]Item
}

// NewSnapshot normalizes every kind of ds. A nil ds yields an empty snapshot.
func NewSnapshot(ds *Dataset) *Snapshot {
	s := &Snapshot{
		ID:          uuid.New(),
		LoadedAt:    time.Now(),
		Tactics:     InitTactics(ds),
		Groups:      InitGroups(ds),
		Software:    InitSoftware(ds),
		Mitigations: InitMitigations(ds),
		techniques:  InitTechniques(ds),
		children:    make(map[*Technique][]*Technique),
		byID:        make(map[string]Item),
	}
	if ds != nil {
		s.Version = ds.Version
		s.Modified = ds.Modified()
	}

	for _, t := range s.techniques {
		if t.Retired() {
			s.retired = append(s.retired, t)
		} else {
			s.active = append(s.active, t)
		}
		if t.Parent != nil {
			s.children[t.Parent] = append(s.children[t.Parent], t)
		}
	}

	for _, coll := range [][]Item{
		items(s.Tactics), items(s.techniques), items(s.Groups),
		items(s.Software), items(s.Mitigations),
	} {
		for _, it := range coll {
			s.index(it)
		}
	}
	return s
}

func (s *Snapshot) index(it Item) {
	b := it.Base()
	if !b.Resolved() {
		return
	}
	key := strings.ToUpper(b.ID)
	// Active entities win over retired ones sharing an id.
	if prev, ok := s.byID[key]; ok && (!prev.Retired() || it.Retired()) {
		return
	}
	s.byID[key] = it
}

// Techniques returns every technique in dataset order.
func (s *Snapshot) Techniques() []*Technique { return s.techniques }

// ActiveTechniques returns the techniques that are neither revoked nor deprecated.
func (s *Snapshot) ActiveTechniques() []*Technique { return s.active }

// RetiredTechniques returns the revoked or deprecated techniques.
func (s *Snapshot) RetiredTechniques() []*Technique { return s.retired }

// Technique returns the technique with id, case-insensitively.
func (s *Snapshot) Technique(id string) (*Technique, bool) {
	t, ok := s.Lookup(id).(*Technique)
	return t, ok
}

// Lookup returns the entity of any kind with id, case-insensitively, or nil.
func (s *Snapshot) Lookup(id string) Item {
	if s == nil {
		return nil
	}
	return s.byID[strings.ToUpper(strings.TrimSpace(id))]
}

// Parent returns the parent of a sub-technique, or nil.
func (s *Snapshot) Parent(t *Technique) *Technique { return t.Parent }

// Subtechniques returns the sub-techniques linked to t in dataset order.
func (s *Snapshot) Subtechniques(t *Technique) []*Technique { return s.children[t] }

// TacticTechniques returns the active top-level techniques listed under the
// tactic's phase.
func (s *Snapshot) TacticTechniques(tac *Tactic) []*Technique {
	var out []*Technique
	for _, t := range s.active {
		if t.Subtechnique {
			continue
		}
		for _, phase := range t.Tactics {
			if phase == tac.ShortName {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Items returns the collection of kind k as generic items.
func (s *Snapshot) Items(k Kind) []Item {
	switch k {
	case KindTactic:
		return items(s.Tactics)
	case KindTechnique:
		return items(s.techniques)
	case KindGroup:
		return items(s.Groups)
	case KindSoftware:
		return items(s.Software)
	case KindMitigation:
		return items(s.Mitigations)
	}
	return nil
}

// Len returns the size of the collection of kind k.
func (s *Snapshot) Len(k Kind) int {
	switch k {
	case KindTactic:
		return len(s.Tactics)
	case KindTechnique:
		return len(s.techniques)
	case KindGroup:
		return len(s.Groups)
	case KindSoftware:
		return len(s.Software)
	case KindMitigation:
		return len(s.Mitigations)
	}
	return 0
}

func items[T Item](in []T) []Item {
	out := make([]Item, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// Store publishes the current snapshot. The zero value holds no snapshot.
// Readers never see a partially built snapshot.
type Store struct {
	p atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or nil before the first Swap.
func (st *Store) Load() *Snapshot { return st.p.Load() }

// Swap installs s and returns the snapshot it replaced.
func (st *Store) Swap(s *Snapshot) *Snapshot { return st.p.Swap(s) }
