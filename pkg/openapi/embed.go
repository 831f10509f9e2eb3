package openapi

import (
	"embed"
	"io/fs"
)

// EmbeddedDocumentName is the bundled report backend document inside EmbeddedFS.
const EmbeddedDocumentName = "report_api.yaml"

//go:embed spec/*.yaml
var embeddedSpec embed.FS

// EmbeddedFS returns the bundled OpenAPI documents.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedSpec, "spec")
	if err != nil {
		panic(err)
	}
	return sub
}

// EmbeddedDocument returns the raw bytes of the bundled backend document.
func EmbeddedDocument() []byte {
	raw, err := fs.ReadFile(EmbeddedFS(), EmbeddedDocumentName)
	if err != nil {
		panic(err)
	}
	return raw
}
