// Package attacktest provides a small ATT&CK bundle for tests.
package attacktest

import (
	"testing"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
)

// Bundle is a trimmed enterprise bundle covering every kind.
//
// Five techniques mention "Adversaries" in their description. Only T1140
// mentions "certutil". No name contains "the".
const Bundle = `{
  "type": "bundle",
  "id": "bundle--0001",
  "objects": [
    {
      "type": "x-mitre-tactic",
      "id": "x-mitre-tactic--1",
      "name": "Execution",
      "description": "Adversaries are trying to run malicious code.",
      "x_mitre_shortname": "execution",
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "TA0002", "url": "https://attack.mitre.org/tactics/TA0002"}
      ],
      "modified": "2019-07-19T17:42:06.909Z"
    },
    {
      "type": "x-mitre-tactic",
      "id": "x-mitre-tactic--2",
      "name": "Defense Evasion",
      "description": "Adversaries are trying to avoid being detected.",
      "x_mitre_shortname": "defense-evasion",
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "TA0005", "url": "https://attack.mitre.org/tactics/TA0005"}
      ]
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--1",
      "name": "Command and Scripting Interpreter",
      "description": "Adversaries may abuse command and script interpreters to execute commands.\n\nMost systems ship with one.",
      "external_references": [
        {"source_name": "capec", "external_id": "CAPEC-1"},
        {"source_name": "mitre-attack", "external_id": "T1059", "url": "https://attack.mitre.org/techniques/T1059"},
        {"source_name": "mitre-attack", "external_id": "T0000", "url": "https://example.invalid"}
      ],
      "kill_chain_phases": [
        {"kill_chain_name": "mitre-attack", "phase_name": "execution"},
        {"kill_chain_name": "lockheed", "phase_name": "exploitation"}
      ],
      "x_mitre_platforms": ["Linux", "Windows"],
      "modified": "2021-04-27T14:26:10.123Z"
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--2",
      "name": "PowerShell",
      "description": "Adversaries may abuse PowerShell commands and scripts for execution.",
      "x_mitre_is_subtechnique": true,
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T1059.001", "url": "https://attack.mitre.org/techniques/T1059/001"}
      ],
      "kill_chain_phases": [
        {"kill_chain_name": "mitre-attack", "phase_name": "execution"}
      ],
      "modified": "2022-10-18T08:12:31.402Z"
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--3",
      "name": "Windows Command Shell",
      "description": "Adversaries may abuse cmd to execute commands.",
      "x_mitre_is_subtechnique": true,
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T1059.003", "url": "https://attack.mitre.org/techniques/T1059/003"}
      ],
      "kill_chain_phases": [
        {"kill_chain_name": "mitre-attack", "phase_name": "execution"}
      ]
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--4",
      "name": "Deobfuscate/Decode Files or Information",
      "description": "Adversaries may use certutil to decode payloads hidden in files.",
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T1140", "url": "https://attack.mitre.org/techniques/T1140"}
      ],
      "kill_chain_phases": [
        {"kill_chain_name": "mitre-attack", "phase_name": "defense-evasion"}
      ]
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--5",
      "name": "PowerShell",
      "description": "Replaced by T1059.001.",
      "revoked": true,
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T1086", "url": "https://attack.mitre.org/techniques/T1086"}
      ]
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--6",
      "name": "Scripting",
      "description": "Adversaries may use scripts.",
      "x_mitre_deprecated": true,
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T1064", "url": "https://attack.mitre.org/techniques/T1064"}
      ],
      "kill_chain_phases": [
        {"kill_chain_name": "mitre-attack", "phase_name": "execution"}
      ]
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--7",
      "name": "Orphan Sub-technique",
      "x_mitre_is_subtechnique": true,
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T9999.001"}
      ]
    },
    {
      "type": "attack-pattern",
      "id": "attack-pattern--8",
      "name": "Unreferenced Pattern",
      "description": "Adversaries may appear in other catalogs.",
      "external_references": [
        {"source_name": "capec", "external_id": "CAPEC-2"}
      ]
    },
    {
      "type": "intrusion-set",
      "id": "intrusion-set--1",
      "name": "APT28",
      "description": "APT28 is a threat group.",
      "aliases": ["APT28", "Sofacy", "Fancy Bear"],
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "G0007", "url": "https://attack.mitre.org/groups/G0007"}
      ]
    },
    {
      "type": "malware",
      "id": "malware--1",
      "name": "Cobalt Strike",
      "description": "Cobalt Strike is a commercial adversary simulation tool.",
      "aliases": ["ignored"],
      "x_mitre_aliases": ["Cobalt Strike"],
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "S0154", "url": "https://attack.mitre.org/software/S0154"}
      ]
    },
    {
      "type": "tool",
      "id": "tool--1",
      "name": "Mimikatz",
      "description": "Mimikatz is a credential dumper.",
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "S0002", "url": "https://attack.mitre.org/software/S0002"}
      ]
    },
    {
      "type": "course-of-action",
      "id": "course-of-action--1",
      "name": "Execution Prevention",
      "description": "Block execution of code on a system.",
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "M1038", "url": "https://attack.mitre.org/mitigations/M1038"}
      ]
    },
    {
      "type": "course-of-action",
      "id": "course-of-action--2",
      "name": "Command and Scripting Interpreter Mitigation",
      "description": "Stub mitigation.",
      "external_references": [
        {"source_name": "mitre-attack", "external_id": "T1059", "url": "https://attack.mitre.org/mitigations/T1059"}
      ]
    },
    {
      "type": "relationship",
      "id": "relationship--1",
      "relationship_type": "uses",
      "modified": "2023-03-01T00:00:00.000Z"
    }
  ]
}`

// Modified is the latest "modified" timestamp in Bundle.
const Modified = "2023-03-01T00:00:00.000Z"

// Dataset parses Bundle.
func Dataset(t testing.TB) *attack.Dataset {
	t.Helper()
	ds, err := attack.Parse([]byte(Bundle))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return ds
}

// Snapshot normalizes Bundle.
func Snapshot(t testing.TB) *attack.Snapshot {
	t.Helper()
	return attack.NewSnapshot(Dataset(t))
}

// BundleModified returns a minimal bundle whose only object carries the
// given modified timestamp.
func BundleModified(modified string) string {
	return `{"type":"bundle","objects":[{"type":"x-mitre-tactic","name":"Stub","modified":"` + modified + `"}]}`
}
