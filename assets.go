package reportform

import (
	"io/fs"

	"github.com/goliatone/go-reportform/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// StaticAssetsFS exposes the stylesheet the HTML pages link to when served
// with an assets path.
//
// Typical mount:
//
//	router.Handle("/static/*",
//	  http.StripPrefix("/static/",
//	    http.FileServerFS(reportform.StaticAssetsFS()),
//	  ),
//	)
func StaticAssetsFS() fs.FS {
	return html.AssetsFS()
}
