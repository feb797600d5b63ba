package attack

import "time"

const (
	// Unknown fills the id and url of entities without a canonical reference.
	Unknown = "<unknown>"

	// NoDescription replaces a missing description.
	NoDescription = "No description available."
)

// Description holds both renderings of an entity's description.
type Description struct {
	Short string `json:"short"` // first line of Long
	Long  string `json:"long"`
}

// Entity is the shape shared by every normalized kind.
type Entity struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	URL         string      `json:"url"`
	Description Description `json:"description"`
	Created     time.Time   `json:"created,omitzero"`
	Modified    time.Time   `json:"modified,omitzero"`
}

// Base returns the shared fields.
func (e *Entity) Base() *Entity { return e }

// Retired reports whether the entity is revoked or deprecated.
// Only techniques carry those flags.
func (e *Entity) Retired() bool { return false }

// Resolved reports whether a canonical id was found.
func (e *Entity) Resolved() bool { return e.ID != Unknown }

// Item is any normalized entity.
type Item interface {
	Kind() Kind
	Base() *Entity
	Retired() bool
}

// Tactic is a column of the ATT&CK matrix.
type Tactic struct {
	Entity
	ShortName string `json:"shortname"` // kill chain phase name, e.g. "execution"
}

func (*Tactic) Kind() Kind { return KindTactic }

// Technique is a technique or sub-technique.
type Technique struct {
	Entity
	Revoked      bool     `json:"revoked"`
	Deprecated   bool     `json:"deprecated"`
	Subtechnique bool     `json:"subtechnique"`
	Tactics      []string `json:"tactics"`
	Platforms    []string `json:"platforms,omitempty"`

	// Parent is set for sub-techniques whose parent exists in the same
	// collection. It does not own the parent.
	Parent *Technique `json:"-"`
}

func (*Technique) Kind() Kind { return KindTechnique }

// Retired reports whether the technique is revoked or deprecated.
func (t *Technique) Retired() bool { return t.Revoked || t.Deprecated }

// ParentID returns the parent's id, or "" when unresolved.
func (t *Technique) ParentID() string {
	if t.Parent == nil {
		return ""
	}
	return t.Parent.ID
}

// Group is a threat actor.
type Group struct {
	Entity
	Aliases []string `json:"aliases"`
}

func (*Group) Kind() Kind { return KindGroup }

// Software is a malware family or tool.
type Software struct {
	Entity
	Aliases []string `json:"aliases"`
	Tool    bool     `json:"tool"`
}

func (*Software) Kind() Kind { return KindSoftware }

// Mitigation is a course of action.
type Mitigation struct {
	Entity
}

func (*Mitigation) Kind() Kind { return KindMitigation }

var (
	_ Item = (*Tactic)(nil)
	_ Item = (*Technique)(nil)
	_ Item = (*Group)(nil)
	_ Item = (*Software)(nil)
	_ Item = (*Mitigation)(nil)
)
