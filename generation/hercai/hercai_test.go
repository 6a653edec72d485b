package hercai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
)

func TestGenerateReturnsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lexica/text2image" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("prompt"); got != "a cat & a dog" {
			t.Errorf("prompt not query-escaped correctly, got %q", got)
		}
		w.Write([]byte(`{"model":"lexica","prompt":"a cat & a dog","url":"https://cdn.hercai/1.png"}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	art, err := p.Generate(context.Background(), generation.Request{ModelOrVoice: "lexica", Payload: "a cat & a dog"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.URL != "https://cdn.hercai/1.png" || len(art.Data) != 0 {
		t.Errorf("unexpected artifact %+v", art)
	}
}

func TestGenerateDefaultModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/text2image" {
			t.Errorf("expected default model v3, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"url":"u"}`))
	}))
	defer srv.Close()

	p, _ := NewProvider(Config{BaseURL: srv.URL})
	if _, err := p.Generate(context.Background(), generation.Request{Payload: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.ErrorCode
	}{
		{"missing url", 200, `{"status":"error"}`, errors.ErrCodeInvalidResponse},
		{"empty url", 200, `{"url":""}`, errors.ErrCodeInvalidResponse},
		{"html", 200, `<!doctype html>`, errors.ErrCodeInvalidResponse},
		{"unavailable", 503, `Service Unavailable`, errors.ErrCodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, _ := NewProvider(Config{BaseURL: srv.URL})
			_, err := p.Generate(context.Background(), generation.Request{Payload: "x"})
			if got := errors.Classify(err); got.Code != tt.want {
				t.Errorf("code = %s, want %s", got.Code, tt.want)
			}
		})
	}
}

func TestGenerateEscapesModelSegment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.EscapedPath(); got != "/a%2F..%2F..%2Fx%3Fy/text2image" {
			t.Errorf("model must stay one path segment, got %s", got)
		}
		if got := r.URL.Query().Get("prompt"); got != "cat" {
			t.Errorf("prompt = %q", got)
		}
		w.Write([]byte(`{"url":"u"}`))
	}))
	defer srv.Close()

	p, _ := NewProvider(Config{BaseURL: srv.URL})
	if _, err := p.Generate(context.Background(), generation.Request{ModelOrVoice: "a/../../x?y", Payload: "cat"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
