package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		voice    string
		wantPath string
	}{
		{"default voice", "", "/v1/text-to-speech/21m00Tcm4TlvDq8ikWAM"},
		{"named voice", "Josh", "/v1/text-to-speech/TxGEqnHWrfWFTfGW9XjX"},
		{"raw voice id", "custom123", "/v1/text-to-speech/custom123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.wantPath {
					t.Errorf("path = %s, want %s", r.URL.Path, tt.wantPath)
				}
				if r.Header.Get("xi-api-key") != "xi" || r.Header.Get("Accept") != "audio/mpeg" {
					t.Errorf("unexpected headers %v", r.Header)
				}
				var body speechRequest
				json.NewDecoder(r.Body).Decode(&body)
				if body.Text != "hello" || body.ModelID != DefaultModel || body.VoiceSettings.Stability != 0.5 || body.VoiceSettings.SimilarityBoost != 0.5 {
					t.Errorf("unexpected body %+v", body)
				}
				w.Header().Set("Content-Type", "audio/mpeg")
				w.Write([]byte("ID3"))
			}))
			defer srv.Close()

			p, _ := NewProvider(Config{APIKey: "xi", BaseURL: srv.URL})
			art, err := p.Generate(context.Background(), generation.Request{ModelOrVoice: tt.voice, Payload: "hello"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(art.Data) != "ID3" || art.ContentType != "audio/mpeg" {
				t.Errorf("unexpected artifact %+v", art)
			}
		})
	}
}

func TestGenerateRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	p, _ := NewProvider(Config{APIKey: "bad", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), generation.Request{Payload: "hello"})
	if errors.Classify(err).Code != errors.ErrCodeAuth {
		t.Fatalf("expected AUTH_ERROR, got %v", err)
	}
}

func TestCheckCredentials(t *testing.T) {
	p, _ := NewProvider(Config{})
	if errors.Classify(p.CheckCredentials()).Code != errors.ErrCodeAuth {
		t.Error("expected AUTH_ERROR without a key")
	}
	if p.IsAvailable(context.Background()) {
		t.Error("provider without a key must not be available")
	}
	if len(p.Models()) != len(voiceIDs) {
		t.Errorf("catalog has %d voices, want %d", len(p.Models()), len(voiceIDs))
	}
}

func TestGenerateEscapesVoiceSegment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.EscapedPath(); got != "/v1/text-to-speech/..%2Fvoices%3Fx" {
			t.Errorf("voice must stay one path segment, got %s", got)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3"))
	}))
	defer srv.Close()

	p, _ := NewProvider(Config{APIKey: "xi", BaseURL: srv.URL})
	if _, err := p.Generate(context.Background(), generation.Request{ModelOrVoice: "../voices?x", Payload: "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
