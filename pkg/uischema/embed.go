package uischema

import (
	"embed"
	"io/fs"
)

// EmbeddedOperation is the operation the bundled overlay describes.
const EmbeddedOperation = "generate_report"

//go:embed ui/schema/*.yaml
var bundledOverlays embed.FS

// EmbeddedFS returns the overlay for the report form, with generate_report.yaml
// at its root so it can go straight to LoadFS.
func EmbeddedFS() fs.FS {
	root, err := fs.Sub(bundledOverlays, "ui/schema")
	if err != nil {
		panic("uischema: bundled overlays missing: " + err.Error())
	}
	return root
}
