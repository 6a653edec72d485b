package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fxgurv/ALONE/artifact"
	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/httpclient"
)

func newWriter(t *testing.T) *artifact.Local {
	t.Helper()
	w, err := artifact.NewLocal(artifact.Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func newDownloader(t *testing.T) *httpclient.Client {
	t.Helper()
	c, err := httpclient.New(httpclient.Config{Service: "download"})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestImageGenerateDownloadsURL(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/images/generations":
			if r.Header.Get("Authorization") != "Bearer sk-test" {
				t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
			}
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["model"] != "dall-e-2" || body["size"] != "1024x1024" || body["prompt"] != "a red fox" {
				t.Errorf("unexpected request body %v", body)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"created": 1,
				"data":    []map[string]string{{"url": srv.URL + "/files/fox.png"}},
			})
		case "/files/fox.png":
			w.Write([]byte("fox-png"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	backend, err := NewImage(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	gen := generation.NewSync(backend, newWriter(t), generation.WithDownloader(newDownloader(t)))

	res, err := gen.Execute(context.Background(), generation.Request{
		ProviderID: ImageProviderName, ModelOrVoice: "dall-e-2", Payload: "a red fox", DestinationPath: "fox.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(res.FilePath)
	if string(data) != "fox-png" {
		t.Errorf("unexpected artifact %q", data)
	}
}

func TestImageMissingKeyMakesNoCall(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	backend, err := NewImage(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	res, _ := generation.NewSync(backend, newWriter(t)).Execute(context.Background(), generation.Request{
		ProviderID: ImageProviderName, Payload: "p", DestinationPath: "x.png",
	})
	if res.Reason() != "AuthError" {
		t.Fatalf("expected AuthError, got %v", res.Failure)
	}
	if hits != 0 {
		t.Errorf("expected no HTTP call, got %d", hits)
	}
}

func TestImageErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.ErrorCode
	}{
		{"rejected key", 401, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, errors.ErrCodeAuth},
		{"policy violation", 400, `{"error":{"message":"Your request was rejected","type":"invalid_request_error"}}`, errors.ErrCodeUpstream},
		{"gateway", 502, `<html>bad gateway</html>`, errors.ErrCodeUpstream},
		{"empty data", 200, `{"created":1,"data":[]}`, errors.ErrCodeInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			backend, err := NewImage(Config{APIKey: "k", BaseURL: srv.URL})
			if err != nil {
				t.Fatal(err)
			}
			_, err = backend.Generate(context.Background(), generation.Request{Payload: "p"})
			if got := errors.Classify(err); got.Code != tt.want {
				t.Errorf("code = %s, want %s (%v)", got.Code, tt.want, err)
			}
		})
	}
}

func TestSpeechGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "tts-1" || body["voice"] != "nova" || body["response_format"] != "mp3" {
			t.Errorf("unexpected body %v", body)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-mp3"))
	}))
	defer srv.Close()

	backend, err := NewSpeech(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	art, err := backend.Generate(context.Background(), generation.Request{ModelOrVoice: "nova", Payload: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(art.Data) != "ID3-mp3" {
		t.Errorf("unexpected audio %q", art.Data)
	}
	if len(backend.Models()) != 6 {
		t.Errorf("expected six voices, got %v", backend.Models())
	}
}

func TestLocalSpeechNeedsNoKey(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	backend, err := NewLocalSpeech(Config{BaseURL: srv.URL + "/v1/audio/speech"})
	if err != nil {
		t.Fatal(err)
	}
	if backend.CheckCredentials() != nil || !backend.IsAvailable(context.Background()) {
		t.Fatal("local speech must not require a key")
	}
	if backend.Name() != LocalSpeechProviderName {
		t.Errorf("unexpected name %q", backend.Name())
	}
	if _, err := backend.Generate(context.Background(), generation.Request{Payload: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer " && auth != "" {
		t.Errorf("no key should be sent, got %q", auth)
	}

	hosted, _ := NewSpeech(Config{})
	if !errors.HasCode(hosted.CheckCredentials(), errors.ErrCodeAuth) {
		t.Error("hosted speech must require OPENAI_API_KEY")
	}
}

func TestSpeechRejectsUnknownVoice(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	backend, err := NewSpeech(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	for _, req := range []generation.Request{
		{ModelOrVoice: "Rachel", Payload: "hello"},
		{ModelOrVoice: "nova", Payload: strings.Repeat("a", MaxSpeechInput+1)},
	} {
		_, err := backend.Generate(context.Background(), req)
		if got := errors.Classify(err); got == nil || got.HTTPStatus != http.StatusBadRequest {
			t.Errorf("voice %q: expected validation error, got %v", req.ModelOrVoice, err)
		}
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("expected no requests, got %d", hits)
	}
}
