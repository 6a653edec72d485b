package generation

import (
	"context"
	"time"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/provider"
)

// Kind tags how a generator reaches completion.
type Kind string

const (
	// KindSync generators return the artifact from the submission call.
	KindSync Kind = "sync"
	// KindAsyncJob generators return a job handle that is polled to completion.
	KindAsyncJob Kind = "async_job"
)

// Request is one generation request. ModelOrVoice is a provider-specific
// model, voice or language name; empty selects the provider default.
type Request struct {
	ProviderID      string `json:"provider" validate:"required,notblank"`
	ModelOrVoice    string `json:"model,omitempty"`
	Payload         string `json:"prompt" validate:"required,notblank"`
	DestinationPath string `json:"destination_path" validate:"required,notblank"`
}

// Result is the outcome of one request. Exactly one of FilePath and Failure
// is set.
type Result struct {
	FilePath string           `json:"file_path,omitempty"`
	Provider string           `json:"provider"`
	JobID    string           `json:"job_id,omitempty"`
	Bytes    int64            `json:"bytes,omitempty"`
	Duration time.Duration    `json:"-"`
	Failure  *errors.AppError `json:"-"`
}

// Succeeded builds a success result.
func Succeeded(provider, path string, n int64) Result {
	return Result{FilePath: path, Provider: provider, Bytes: n}
}

// Failed builds a failure result. Any error is classified so the caller
// always gets a reason and a detail.
func Failed(provider string, err error) Result {
	if err == nil {
		err = errors.InvalidResponse("failure without cause")
	}
	return Result{Provider: provider, Failure: errors.Classify(err)}
}

// OK reports whether the artifact was written.
func (r Result) OK() bool {
	return r.Failure == nil && r.FilePath != ""
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Reason returns the failure reason, or "" on success.
func (r Result) Reason() string {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Reason()
}

// JobHandle identifies one in-flight asynchronous generation. It is created
// by Submit and consumed only by the poller.
type JobHandle struct {
	ID        string
	CreatedAt time.Time
}

// NewJobHandle stamps a handle with the current time.
func NewJobHandle(id string) JobHandle {
	return JobHandle{ID: id, CreatedAt: time.Now()}
}

// JobState is the lifecycle state reported by a status check.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateSucceeded JobState = "succeeded"
	StateFailed    JobState = "failed"
)

// JobStatus is the result of one status check.
type JobStatus struct {
	State JobState
	// ArtifactRef locates the finished artifact: a download URL, or inline
	// data the backend knows how to decode. Set when State is succeeded.
	ArtifactRef string
	// Detail carries the provider's failure message when State is failed.
	Detail string
}

// IsTerminal reports whether no further transition can occur.
func (s JobStatus) IsTerminal() bool {
	return s.State == StateSucceeded || s.State == StateFailed
}

// Artifact is what a backend hands back to its adapter. Adapters download URL
// when Data is empty.
type Artifact struct {
	Data        []byte
	URL         string
	ContentType string
}

// SyncBackend produces an artifact with a single submission call.
type SyncBackend interface {
	provider.Provider
	Generate(ctx context.Context, req Request) (Artifact, error)
}

// JobBackend submits a job and reports its status until it is terminal.
type JobBackend interface {
	provider.Provider
	Submit(ctx context.Context, req Request) (JobHandle, error)
	Check(ctx context.Context, job JobHandle) (JobStatus, error)
	Fetch(ctx context.Context, status JobStatus) (Artifact, error)
}

// CredentialChecker is implemented by backends that need an API key. It is
// called before any network call.
type CredentialChecker interface {
	CheckCredentials() error
}

// Cataloger is implemented by backends that list their models or voices.
type Cataloger interface {
	Models() []string
}

// Generator is a dispatchable provider. Sync and AsyncJob implement it.
type Generator interface {
	provider.RequestResponse[Request, Result]
	Kind() Kind
	Models() []string
}

// Downloader fetches an artifact by URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
}
