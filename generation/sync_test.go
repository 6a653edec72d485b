package generation

import (
	"context"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fxgurv/ALONE/artifact"
	"github.com/fxgurv/ALONE/errors"
)

func TestSyncWritesReturnedBytes(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes-" + r.URL.Query().Get("prompt")))
	})
	writer := newWriter(t)
	s := NewSync(&httpSync{name: "stub", client: newClient(t, "stub", srv.URL), key: "k"}, writer)

	res, err := s.Execute(context.Background(), Request{ProviderID: "stub", Payload: "fox", DestinationPath: "a/fox.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected success, got %+v", res)
	}
	if got := readFile(t, res.FilePath); got != "png-bytes-fox" {
		t.Errorf("file contents = %q", got)
	}
	if res.Bytes != int64(len("png-bytes-fox")) {
		t.Errorf("expected byte count, got %d", res.Bytes)
	}
	if srv.Hits() != 1 {
		t.Errorf("expected exactly one submission call, got %d", srv.Hits())
	}
}

func TestSyncDownloadsURLArtifact(t *testing.T) {
	cdn := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("downloaded"))
	})
	api := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cdn.URL + "/img.png"))
	})
	s := NewSync(
		&httpSync{name: "stub", client: newClient(t, "stub", api.URL), key: "k", asURL: true},
		newWriter(t),
		WithDownloader(newClient(t, "download", "")),
	)

	res, err := s.Execute(context.Background(), Request{ProviderID: "stub", Payload: "p", DestinationPath: "img.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readFile(t, res.FilePath); got != "downloaded" {
		t.Errorf("file contents = %q", got)
	}
	if api.Hits() != 1 || cdn.Hits() != 1 {
		t.Errorf("expected one submission and one download, got %d and %d", api.Hits(), cdn.Hits())
	}
}

func TestSyncFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		key     string
		want    errors.ErrorCode
		wantHit int32
	}{
		{"missing credential", 200, "x", "", errors.ErrCodeAuth, 0},
		{"rejected credential", 401, `{"error":"bad key"}`, "k", errors.ErrCodeAuth, 1},
		{"server error", 500, "boom", "k", errors.ErrCodeUpstream, 1},
		{"empty body", 200, "", "k", errors.ErrCodeInvalidResponse, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			writer := newWriter(t)
			s := NewSync(&httpSync{name: "stub", client: newClient(t, "stub", srv.URL), key: tt.key}, writer)

			dest := filepath.Join(t.TempDir(), "out.png")
			res, err := s.Execute(context.Background(), Request{ProviderID: "stub", Payload: "p", DestinationPath: dest})
			if err == nil || res.OK() {
				t.Fatalf("expected failure, got %+v", res)
			}
			if res.Failure.Code != tt.want {
				t.Errorf("code = %s, want %s", res.Failure.Code, tt.want)
			}
			if res.FilePath != "" {
				t.Errorf("failure must not carry a file path, got %q", res.FilePath)
			}
			if srv.Hits() != tt.wantHit {
				t.Errorf("expected %d HTTP calls, got %d", tt.wantHit, srv.Hits())
			}
			if _, statErr := readFileErr(dest); statErr == nil {
				t.Error("no file may be written on failure")
			}
		})
	}
}

func TestSyncURLWithoutDownloader(t *testing.T) {
	api := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("https://cdn.example/img.png"))
	})
	s := NewSync(&httpSync{name: "stub", client: newClient(t, "stub", api.URL), key: "k", asURL: true}, newWriter(t))
	res, _ := s.Execute(context.Background(), Request{ProviderID: "stub", Payload: "p", DestinationPath: "x.png"})
	if res.Reason() != "InvalidResponse" {
		t.Errorf("expected InvalidResponse, got %q", res.Reason())
	}
}

func TestSyncMetadata(t *testing.T) {
	s := NewSync(&httpSync{name: "stub"}, newWriter(t))
	if s.Kind() != KindSync {
		t.Errorf("expected sync kind, got %s", s.Kind())
	}
	if len(s.Models()) != 2 {
		t.Errorf("expected backend catalog, got %v", s.Models())
	}
	if s.IsAvailable(context.Background()) {
		t.Error("backend without key must report unavailable")
	}
}

func TestAdaptersRejectEscapingDestinationBeforeCalling(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})
	writer, err := artifact.NewLocal(artifact.Config{BaseDir: t.TempDir(), Confine: true})
	if err != nil {
		t.Fatal(err)
	}
	jobs := &scriptedJobs{name: "jobs", jobID: "j", states: []JobStatus{{State: StateSucceeded}}, data: []byte("x")}

	gens := []Generator{
		NewSync(&httpSync{name: "stub", client: newClient(t, "stub", srv.URL), key: "k"}, writer),
		NewAsyncJob(jobs, writer, PollPolicy{Interval: 10 * time.Millisecond}),
	}
	for _, g := range gens {
		for _, dest := range []string{"../x.png", "/etc/x.png"} {
			res, _ := g.Execute(context.Background(), Request{ProviderID: g.Name(), Payload: "p", DestinationPath: dest})
			if res.OK() || res.Failure.HTTPStatus != http.StatusBadRequest {
				t.Errorf("%s %s: expected validation failure, got %+v", g.Name(), dest, res)
			}
		}
	}
	if srv.Hits() != 0 {
		t.Errorf("expected no provider calls, got %d", srv.Hits())
	}
	if atomic.LoadInt32(&jobs.checks) != 0 {
		t.Errorf("expected no status checks, got %d", jobs.checks)
	}
}
