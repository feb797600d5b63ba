package attack

import (
	"regexp"
	"strings"
)

var mitigationID = regexp.MustCompile(`^M\d{4}$`)

// InitTactics normalizes the tactic records of ds.
func InitTactics(ds *Dataset) []*Tactic {
	return collect(ds, KindTactic, func(o *Object) *Tactic {
		return &Tactic{Entity: newEntity(o), ShortName: o.ShortName}
	})
}

// InitTechniques normalizes the technique records of ds and links every
// sub-technique to its parent.
func InitTechniques(ds *Dataset) []*Technique {
	techniques := collect(ds, KindTechnique, func(o *Object) *Technique {
		return &Technique{
			Entity:       newEntity(o),
			Revoked:      o.Revoked,
			Deprecated:   o.Deprecated,
			Subtechnique: o.IsSubtechnique,
			Tactics:      phases(o.KillChainPhases),
			Platforms:    o.Platforms,
		}
	})
	linkParents(techniques)
	return techniques
}

// InitGroups normalizes the group records of ds.
func InitGroups(ds *Dataset) []*Group {
	return collect(ds, KindGroup, func(o *Object) *Group {
		return &Group{Entity: newEntity(o), Aliases: o.Aliases}
	})
}

// InitSoftware normalizes the malware and tool records of ds.
func InitSoftware(ds *Dataset) []*Software {
	return collect(ds, KindSoftware, func(o *Object) *Software {
		aliases := o.MitreAliases
		if len(aliases) == 0 {
			aliases = o.Aliases
		}
		return &Software{Entity: newEntity(o), Aliases: aliases, Tool: o.Type == "tool"}
	})
}

// InitMitigations normalizes the course-of-action records of ds, keeping only
// those with a standalone mitigation id (M followed by four digits).
func InitMitigations(ds *Dataset) []*Mitigation {
	all := collect(ds, KindMitigation, func(o *Object) *Mitigation {
		return &Mitigation{Entity: newEntity(o)}
	})
	kept := all[:0]
	for _, m := range all {
		if mitigationID.MatchString(m.ID) {
			kept = append(kept, m)
		}
	}
	return kept
}

func collect[T any](ds *Dataset, k Kind, build func(*Object) T) []T {
	if ds == nil {
		return nil
	}
	var out []T
	for i := range ds.Objects {
		if ds.Objects[i].Kind == k {
			out = append(out, build(&ds.Objects[i]))
		}
	}
	return out
}

func newEntity(o *Object) Entity {
	e := Entity{
		ID:       Unknown,
		Name:     o.Name,
		URL:      Unknown,
		Created:  o.CreatedAt(),
		Modified: o.ModifiedAt(),
	}
	for _, ref := range o.ExternalReferences {
		if ref.SourceName != SourceName {
			continue
		}
		if ref.ExternalID != "" {
			e.ID = ref.ExternalID
		}
		if ref.URL != "" {
			e.URL = ref.URL
		}
		break
	}

	long := o.Description
	if long == "" {
		long = NoDescription
	}
	short, _, _ := strings.Cut(long, "\n")
	e.Description = Description{Short: short, Long: long}
	return e
}

func phases(kc []KillChainPhase) []string {
	var out []string
	for _, p := range kc {
		if p.KillChainName == SourceName {
			out = append(out, p.PhaseName)
		}
	}
	return out
}

// ParentID derives the parent technique id of a sub-technique id by cutting
// at the first "." or "/". It returns "" when id has no separator.
func ParentID(id string) string {
	if i := strings.IndexAny(id, "./"); i > 0 {
		return id[:i]
	}
	return ""
}

func linkParents(techniques []*Technique) {
	index := make(map[string]*Technique, len(techniques))
	for _, t := range techniques {
		if !t.Resolved() {
			continue
		}
		if _, dup := index[t.ID]; !dup {
			index[t.ID] = t
		}
	}
	for _, t := range techniques {
		if !t.Subtechnique {
			continue
		}
		if p, ok := index[ParentID(t.ID)]; ok && p != t {
			t.Parent = p
		}
	}
}
