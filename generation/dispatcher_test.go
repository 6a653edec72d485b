package generation

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/logger"
)

func newTestDispatcher(t *testing.T, srvURL string) (*Dispatcher, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)
	d := NewDispatcher(WithDispatchLogger(log))
	d.Register(NewSync(&httpSync{name: "stub", client: newClient(t, "stub", srvURL), key: "k"}, newWriter(t)))
	d.Register(NewSync(&httpSync{name: "nokey", client: newClient(t, "nokey", srvURL)}, newWriter(t)))
	d.Register(NewSync(&httpSync{name: "broken", client: newClient(t, "broken", srvURL), key: "k", panics: true}, newWriter(t)))
	return d, &buf
}

func TestDispatchRoutesToProvider(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	})
	d, logs := newTestDispatcher(t, srv.URL)

	res := d.Dispatch(context.Background(), Request{ProviderID: "stub", Payload: "p", DestinationPath: "out.png"})
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Failure)
	}
	if res.Provider != "stub" || res.Duration <= 0 {
		t.Errorf("expected provider and duration stamped, got %+v", res)
	}
	if !strings.Contains(logs.String(), `"request_id"`) {
		t.Error("dispatch must attach a request id to log lines")
	}
}

func TestDispatchUnknownProviderMakesNoCalls(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	})
	d, _ := newTestDispatcher(t, srv.URL)

	res := d.Dispatch(context.Background(), Request{ProviderID: "midjourney", Payload: "p", DestinationPath: "out.png"})
	if res.OK() || res.Failure.Code != errors.ErrCodeInvalidResponse {
		t.Fatalf("expected INVALID_RESPONSE, got %+v", res)
	}
	if res.Failure.Message != "unknown provider" {
		t.Errorf("expected 'unknown provider', got %q", res.Failure.Message)
	}
	if srv.Hits() != 0 {
		t.Errorf("expected zero network calls, got %d", srv.Hits())
	}
}

func TestDispatchMissingCredentialMakesNoCalls(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	})
	d, _ := newTestDispatcher(t, srv.URL)

	res := d.Dispatch(context.Background(), Request{ProviderID: "nokey", Payload: "p", DestinationPath: "out.png"})
	if res.Reason() != "AuthError" {
		t.Fatalf("expected AuthError, got %v", res.Failure)
	}
	if srv.Hits() != 0 {
		t.Errorf("expected no HTTP call before the credential check, got %d", srv.Hits())
	}
}

func TestDispatchValidation(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {})
	d, _ := newTestDispatcher(t, srv.URL)

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"empty destination", Request{ProviderID: "stub", Payload: "p"}, "destination_path"},
		{"blank prompt", Request{ProviderID: "stub", Payload: "   ", DestinationPath: "x"}, "prompt"},
		{"missing provider", Request{Payload: "p", DestinationPath: "x"}, "provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Dispatch(context.Background(), tt.req)
			if res.Reason() != "InvalidResponse" {
				t.Fatalf("expected InvalidResponse, got %v", res.Failure)
			}
			if !strings.Contains(res.Failure.Error(), tt.field) {
				t.Errorf("expected %q in failure, got %v", tt.field, res.Failure)
			}
		})
	}
	if srv.Hits() != 0 {
		t.Errorf("invalid requests must not reach the network, got %d", srv.Hits())
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {})
	d, _ := newTestDispatcher(t, srv.URL)

	res := d.Dispatch(context.Background(), Request{ProviderID: "broken", Payload: "p", DestinationPath: "x.png"})
	if res.Reason() != "InvalidResponse" {
		t.Fatalf("expected InvalidResponse from recovered panic, got %v", res.Failure)
	}
}

func TestDispatchKeepsCallerRequestID(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("b")) })
	d, logs := newTestDispatcher(t, srv.URL)

	ctx := logger.ContextWithRequestID(context.Background(), "req-42")
	d.Dispatch(ctx, Request{ProviderID: "stub", Payload: "p", DestinationPath: "x.png"})
	if !strings.Contains(logs.String(), `"request_id":"req-42"`) {
		t.Errorf("expected caller request id in logs, got %s", logs.String())
	}
}

func TestDispatcherProviders(t *testing.T) {
	d, _ := newTestDispatcher(t, "http://unused.invalid")
	d.Register(NewAsyncJob(&scriptedJobs{name: "jobs"}, newWriter(t), PollPolicy{}))

	infos := d.Providers(context.Background())
	if len(infos) != 4 {
		t.Fatalf("expected 4 providers, got %d", len(infos))
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	if strings.Join(ids, ",") != "broken,jobs,nokey,stub" {
		t.Errorf("expected sorted ids, got %v", ids)
	}
	if infos[1].Kind != KindAsyncJob || infos[3].Kind != KindSync {
		t.Errorf("unexpected kinds %+v", infos)
	}
	if infos[2].Available {
		t.Error("provider without credentials must be unavailable")
	}
	if _, ok := d.Lookup("jobs"); !ok {
		t.Error("Lookup should find registered generator")
	}
}
