package generation

import (
	"context"

	"github.com/fxgurv/ALONE/artifact"
	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/logger"
	"github.com/fxgurv/ALONE/observability"
)

// Option configures a Sync or AsyncJob adapter.
type Option func(*adapter)

// WithDownloader sets the client used to fetch artifacts returned by URL.
func WithDownloader(d Downloader) Option {
	return func(a *adapter) { a.downloader = d }
}

// WithLogger sets the adapter logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *adapter) { a.log = l }
}

// WithMetrics records artifact sizes and poll checks.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *adapter) { a.metrics = m }
}

// adapter holds what both adapters share: where artifacts go and how
// URL artifacts are fetched.
type adapter struct {
	writer     artifact.Writer
	downloader Downloader
	log        *logger.Logger
	metrics    *observability.Metrics
}

func newAdapter(writer artifact.Writer, opts []Option) adapter {
	a := adapter{writer: writer, log: logger.Nop()}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// store materializes art at dest. URL artifacts cost one extra GET.
func (a *adapter) store(ctx context.Context, name, dest string, art Artifact) (Result, error) {
	data := art.Data
	if len(data) == 0 && art.URL != "" {
		if a.downloader == nil {
			return fail(name, errors.InvalidResponse(name+": artifact URL returned but no downloader configured"))
		}
		var err error
		data, _, err = a.downloader.Download(ctx, art.URL)
		if err != nil {
			return fail(name, err)
		}
	}
	if len(data) == 0 {
		return fail(name, errors.InvalidResponse(name+": response carried no artifact"))
	}

	path, err := a.writer.Write(ctx, dest, data)
	if err != nil {
		return fail(name, err)
	}
	n := int64(len(data))
	a.metrics.RecordArtifact(ctx, name, n)
	a.log.WithContext(ctx).Info("artifact written", logger.Fields(
		logger.FieldProvider, name,
		logger.FieldPath, path,
		logger.FieldBytes, n,
	))
	return Succeeded(name, path, n), nil
}

// fail returns a failure result together with its classified error, so
// middleware sees the failure while callers still get a Result.
func fail(name string, err error) (Result, error) {
	res := Failed(name, err)
	return res, res.Failure
}

// checkDestination lets the writer refuse a destination before any
// provider call is made.
func (a *adapter) checkDestination(dest string) error {
	if c, ok := a.writer.(artifact.PathChecker); ok {
		return c.CheckPath(dest)
	}
	return nil
}

func checkCredentials(p any) error {
	if c, ok := p.(CredentialChecker); ok {
		return c.CheckCredentials()
	}
	return nil
}

func catalog(p any) []string {
	if c, ok := p.(Cataloger); ok {
		return c.Models()
	}
	return nil
}
