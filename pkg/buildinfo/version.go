// Package buildinfo holds version information stamped in at build time:
//
//	go build -ldflags "-X github.com/redcanaryco/vscode-attack/pkg/buildinfo.Version=v0.4.0 \
//	    -X github.com/redcanaryco/vscode-attack/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/redcanaryco/vscode-attack/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/attack
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
