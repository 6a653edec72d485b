package generation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/fxgurv/ALONE/artifact"
	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/httpclient"
)

// upstream is an httptest server that counts every request it receives.
type upstream struct {
	*httptest.Server
	hits int32
}

func newUpstream(t *testing.T, h http.HandlerFunc) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.hits, 1)
		h(w, r)
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) Hits() int32 { return atomic.LoadInt32(&u.hits) }

func newClient(t *testing.T, name, baseURL string) *httpclient.Client {
	t.Helper()
	c, err := httpclient.New(httpclient.Config{Service: name, BaseURL: baseURL})
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	return c
}

func newWriter(t *testing.T) *artifact.Local {
	t.Helper()
	w, err := artifact.NewLocal(artifact.Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("artifact.NewLocal: %v", err)
	}
	return w
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

// httpSync is a sync backend that issues one GET and returns the body, or
// the body as a URL when asURL is set.
type httpSync struct {
	name   string
	client *httpclient.Client
	key    string
	asURL  bool
	panics bool
}

func (s *httpSync) Name() string                       { return s.name }
func (s *httpSync) IsAvailable(_ context.Context) bool { return s.CheckCredentials() == nil }
func (s *httpSync) Models() []string                   { return []string{"v1", "v2"} }

func (s *httpSync) CheckCredentials() error {
	if s.key == "" {
		return errors.MissingCredential(s.name, "TEST_API_KEY")
	}
	return nil
}

func (s *httpSync) Generate(ctx context.Context, req Request) (Artifact, error) {
	if s.panics {
		var m map[string]int
		m[req.Payload]++
	}
	resp, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/generate",
		Query:  map[string]string{"prompt": req.Payload},
	})
	if err != nil {
		return Artifact{}, err
	}
	if s.asURL {
		return Artifact{URL: string(resp.Body)}, nil
	}
	return Artifact{Data: resp.Body, ContentType: resp.ContentType()}, nil
}

// scriptedJobs is a job backend whose status sequence is fixed in advance.
type scriptedJobs struct {
	name     string
	jobID    string
	states   []JobStatus
	checks   int32
	fetchURL string
	data     []byte
}

func (s *scriptedJobs) Name() string                       { return s.name }
func (s *scriptedJobs) IsAvailable(_ context.Context) bool { return true }

func (s *scriptedJobs) Submit(_ context.Context, _ Request) (JobHandle, error) {
	return NewJobHandle(s.jobID), nil
}

func (s *scriptedJobs) Check(_ context.Context, job JobHandle) (JobStatus, error) {
	n := int(atomic.AddInt32(&s.checks, 1)) - 1
	if n >= len(s.states) {
		n = len(s.states) - 1
	}
	return s.states[n], nil
}

func (s *scriptedJobs) Fetch(_ context.Context, st JobStatus) (Artifact, error) {
	if s.fetchURL != "" {
		return Artifact{URL: s.fetchURL}, nil
	}
	return Artifact{Data: s.data}, nil
}

func readFileErr(path string) ([]byte, error) {
	return os.ReadFile(path)
}
