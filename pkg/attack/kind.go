package attack

import "strings"

// Kind is the closed set of entity kinds.
type Kind int

const (
	KindUnknown Kind = iota
	KindTactic
	KindTechnique
	KindGroup
	KindSoftware
	KindMitigation
)

// Kinds lists every known kind in display order.
var Kinds = []Kind{KindTactic, KindTechnique, KindGroup, KindSoftware, KindMitigation}

// KindOf maps a STIX type tag to its kind.
func KindOf(stixType string) Kind {
	switch stixType {
	case "x-mitre-tactic":
		return KindTactic
	case "attack-pattern":
		return KindTechnique
	case "intrusion-set":
		return KindGroup
	case "malware", "tool":
		return KindSoftware
	case "course-of-action":
		return KindMitigation
	default:
		return KindUnknown
	}
}

// ParseKind accepts the singular or plural kind name, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tactic", "tactics":
		return KindTactic, true
	case "technique", "techniques":
		return KindTechnique, true
	case "group", "groups":
		return KindGroup, true
	case "software":
		return KindSoftware, true
	case "mitigation", "mitigations":
		return KindMitigation, true
	}
	return KindUnknown, false
}

func (k Kind) String() string {
	switch k {
	case KindTactic:
		return "tactic"
	case KindTechnique:
		return "technique"
	case KindGroup:
		return "group"
	case KindSoftware:
		return "software"
	case KindMitigation:
		return "mitigation"
	default:
		return "unknown"
	}
}

// Plural returns the collection name, as used in URLs and database names.
func (k Kind) Plural() string {
	switch k {
	case KindSoftware:
		return "software"
	case KindUnknown:
		return "unknown"
	default:
		return k.String() + "s"
	}
}
