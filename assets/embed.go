// assets/embed.go
//
// Embedded default data files. The region catalog ships inside the binary so the
// server runs even when REGIONS_FILE is not configured.
package assets

import (
	"embed"
)

//go:embed regions.yaml
var FS embed.FS

// RegionsYAML returns the embedded region catalog.
func RegionsYAML() ([]byte, error) {
	return FS.ReadFile("regions.yaml")
}
