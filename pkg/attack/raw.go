package attack

import (
	"encoding/json"
	"time"

	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
)

// SourceName is the external reference source that carries ATT&CK ids.
const SourceName = "mitre-attack"

// Bundle is the top-level structure of a dataset file.
type Bundle struct {
	Type    string   `json:"type"`
	ID      string   `json:"id"`
	Objects []Object `json:"objects"`
}

// Object is a single raw record of the bundle.
type Object struct {
	Type               string              `json:"type"`
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Revoked            bool                `json:"revoked"`
	Deprecated         bool                `json:"x_mitre_deprecated"`
	IsSubtechnique     bool                `json:"x_mitre_is_subtechnique"`
	ShortName          string              `json:"x_mitre_shortname"`
	Aliases            []string            `json:"aliases"`
	MitreAliases       []string            `json:"x_mitre_aliases"`
	Platforms          []string            `json:"x_mitre_platforms"`
	ExternalReferences []ExternalReference `json:"external_references"`
	KillChainPhases    []KillChainPhase    `json:"kill_chain_phases"`
	Created            string              `json:"created"`
	Modified           string              `json:"modified"`

	// Kind is resolved from Type by Parse.
	Kind Kind `json:"-"`
}

// ExternalReference links an object to an external catalog entry.
type ExternalReference struct {
	SourceName string `json:"source_name"`
	ExternalID string `json:"external_id"`
	URL        string `json:"url"`
}

// KillChainPhase names the tactic a technique belongs to.
type KillChainPhase struct {
	KillChainName string `json:"kill_chain_name"`
	PhaseName     string `json:"phase_name"`
}

// ModifiedAt returns the parsed modification timestamp, or the zero time
// when it is absent or malformed.
func (o *Object) ModifiedAt() time.Time {
	return parseTime(o.Modified)
}

// CreatedAt returns the parsed creation timestamp, or the zero time.
func (o *Object) CreatedAt() time.Time {
	return parseTime(o.Created)
}

// Dataset is a decoded dataset file.
type Dataset struct {
	Version string // version token the file was cached under, if known
	Path    string // cache file the dataset was read from, if any
	Objects []Object
}

// Parse decodes a dataset file and resolves the kind of every object.
// Malformed input fails with PARSE_ERROR.
func Parse(data []byte) (*Dataset, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeParse, err, "decode dataset")
	}
	if b.Objects == nil {
		return nil, apperrors.New(apperrors.ErrCodeParse, "dataset has no objects array")
	}
	for i := range b.Objects {
		b.Objects[i].Kind = KindOf(b.Objects[i].Type)
	}
	return &Dataset{Objects: b.Objects}, nil
}

// Modified returns the latest modification timestamp across all objects.
// Datasets are ordered by this value rather than by file time.
func (d *Dataset) Modified() time.Time {
	var latest time.Time
	if d == nil {
		return latest
	}
	for i := range d.Objects {
		if t := d.Objects[i].ModifiedAt(); t.After(latest) {
			latest = t
		}
	}
	return latest
}

// Count returns the number of objects of kind k.
func (d *Dataset) Count(k Kind) int {
	n := 0
	for i := range d.Objects {
		if d.Objects[i].Kind == k {
			n++
		}
	}
	return n
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
