package render

import (
	"context"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/report"
)

// Renderer converts a FormModel into a byte representation (an HTML page, a
// terminal session transcript, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
}

// ReportRenderer displays a generated report on its own.
type ReportRenderer interface {
	RenderReport(ctx context.Context, rep report.Report) ([]byte, error)
}
