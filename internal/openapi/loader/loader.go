package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
)

// Loader reads the backend schema from disk, from an fs.FS (the embedded
// report_api.yaml by default) or, when a client is configured, over HTTP.
type Loader struct {
	files   fs.FS
	client  *http.Client
	timeout time.Duration
}

var _ pkgopenapi.Loader = (*Loader)(nil)

func New(options pkgopenapi.LoaderOptions) pkgopenapi.Loader {
	return &Loader{
		files:   options.FileSystem,
		client:  remoteClient(options),
		timeout: options.RequestTimeout,
	}
}

// remoteClient returns nil when schema URLs should be refused.
func remoteClient(options pkgopenapi.LoaderOptions) *http.Client {
	if options.HTTPClient != nil {
		client := *options.HTTPClient
		if client.Timeout == 0 {
			client.Timeout = options.RequestTimeout
		}
		return &client
	}
	if options.AllowHTTPFallback {
		return &http.Client{Timeout: options.RequestTimeout}
	}
	return nil
}

// Load reads src and wraps the bytes in a Document. Failures name the
// location that could not be read.
func (l *Loader) Load(ctx context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	if src == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: source is nil")
	}
	if src.Kind() == pkgopenapi.SourceKindURL && l.client == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: http support disabled")
	}

	data, err := l.read(ctx, src)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: load %s: %w", src.Location(), err)
	}
	return pkgopenapi.NewDocument(src, data)
}

func (l *Loader) read(ctx context.Context, src pkgopenapi.Source) ([]byte, error) {
	switch src.Kind() {
	case pkgopenapi.SourceKindFile:
		return loadFile(ctx, src.Location())
	case pkgopenapi.SourceKindFS:
		return loadFromFS(ctx, l.files, src.Location())
	case pkgopenapi.SourceKindURL:
		return loadHTTP(ctx, l.client, src.Location(), l.timeout)
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind())
	}
}
