// Package buildinfo reports the version stamped into the binary at link time:
//
//	go build -ldflags "-X github.com/matzehuels/foamlayout/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/foamlayout/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/foamlayout/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/foamlayout
package buildinfo

import "fmt"

// Set with -ldflags -X.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp as reported by the server's health check.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build stamp.
func Get() Info { return Info{Version: Version, Commit: Commit, Date: Date} }

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
