package generation

import (
	"context"

	"github.com/fxgurv/ALONE/artifact"
)

// Sync adapts a backend whose submission call yields the artifact, either as
// bytes or as a direct download URL. It never retries.
type Sync struct {
	backend SyncBackend
	adapter
}

// NewSync wraps backend. writer must not be nil.
func NewSync(backend SyncBackend, writer artifact.Writer, opts ...Option) *Sync {
	return &Sync{backend: backend, adapter: newAdapter(writer, opts)}
}

func (s *Sync) Name() string                         { return s.backend.Name() }
func (s *Sync) IsAvailable(ctx context.Context) bool { return s.backend.IsAvailable(ctx) }
func (s *Sync) Kind() Kind                           { return KindSync }
func (s *Sync) Models() []string                     { return catalog(s.backend) }

// Execute performs the submission call and writes the artifact.
func (s *Sync) Execute(ctx context.Context, req Request) (Result, error) {
	name := s.Name()
	if err := s.checkDestination(req.DestinationPath); err != nil {
		return fail(name, err)
	}
	if err := checkCredentials(s.backend); err != nil {
		return fail(name, err)
	}
	art, err := s.backend.Generate(ctx, req)
	if err != nil {
		return fail(name, err)
	}
	return s.store(ctx, name, req.DestinationPath, art)
}

var _ Generator = (*Sync)(nil)
