package artifact

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxgurv/ALONE/errors"
)

func newTestWriter(t *testing.T, base string) *Local {
	t.Helper()
	w, err := NewLocal(Config{BaseDir: base})
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	return w
}

func TestLocalWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, dir)

	payload := bytes.Repeat([]byte{0x89, 'P', 'N', 'G', 0x00}, 4096)
	path, err := w.Write(context.Background(), "images/out.png", payload)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if path != filepath.Join(dir, "images", "out.png") {
		t.Errorf("unexpected resolved path %q", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: wrote %d bytes, read %d", len(payload), len(got))
	}
}

func TestLocalWriteOverwriteReplaces(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, "")
	dest := filepath.Join(dir, "speech.mp3")

	if _, err := w.Write(context.Background(), dest, []byte("a much longer first payload")); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if _, err := w.Write(context.Background(), dest, []byte("short")); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "short" {
		t.Errorf("expected full replacement, got %q", got)
	}
}

func TestLocalWriteFileMode(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, dir)
	path, err := w.Write(context.Background(), "a.bin", []byte("x"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != DefaultFileMode {
		t.Errorf("expected mode %o, got %o", DefaultFileMode, info.Mode().Perm())
	}
}

func TestLocalWriteFailures(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("file"), 0o644); err != nil {
		t.Fatal(err)
	}
	existingDir := filepath.Join(dir, "taken")
	if err := os.MkdirAll(filepath.Join(existingDir, "child"), 0o755); err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		dest string
		data []byte
		want errors.ErrorCode
	}{
		{"empty payload", context.Background(), filepath.Join(dir, "empty.png"), nil, errors.ErrCodeInvalidResponse},
		{"empty destination", context.Background(), "", []byte("x"), errors.ErrCodeInvalidResponse},
		{"parent is a file", context.Background(), filepath.Join(blocker, "out.png"), []byte("x"), errors.ErrCodeIO},
		{"destination is a directory", context.Background(), existingDir, []byte("x"), errors.ErrCodeIO},
		{"cancelled", cancelled, filepath.Join(dir, "c.png"), []byte("x"), errors.ErrCodeTimeout},
	}

	w := newTestWriter(t, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Write(tt.ctx, tt.dest, tt.data)
			if !errors.HasCode(err, tt.want) {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "empty.png")); !os.IsNotExist(err) {
		t.Error("empty payload must not create a file")
	}
	if _, err := os.Stat(filepath.Join(dir, "c.png")); !os.IsNotExist(err) {
		t.Error("cancelled write must not create a file")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %q left behind", e.Name())
		}
	}
}

func TestLocalResolve(t *testing.T) {
	w := newTestWriter(t, "/srv/out")
	if got, err := w.Resolve("a/b.png"); err != nil || got != "/srv/out/a/b.png" {
		t.Errorf("expected base-relative path, got %q, %v", got, err)
	}
	if got, err := w.Resolve("/tmp/x.png"); err != nil || got != "/tmp/x.png" {
		t.Errorf("expected absolute path kept, got %q, %v", got, err)
	}
	if got, err := w.Resolve("../x.png"); err != nil || got != "/srv/x.png" {
		t.Errorf("unconfined writer should follow the path, got %q, %v", got, err)
	}
}

func TestLocalConfinedResolve(t *testing.T) {
	w, err := NewLocal(Config{BaseDir: "/srv/out", Confine: true})
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	tests := []struct {
		dest    string
		want    string
		wantErr bool
	}{
		{"a/b.png", "/srv/out/a/b.png", false},
		{"a/../b.png", "/srv/out/b.png", false},
		{"..foo/b.png", "/srv/out/..foo/b.png", false},
		{"../x.png", "", true},
		{"a/../../x.png", "", true},
		{"..", "", true},
		{".", "", true},
		{"/tmp/x.png", "", true},
		{"/srv/out/a.png", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			got, err := w.Resolve(tt.dest)
			if tt.wantErr {
				if !errors.HasCode(err, errors.ErrCodeInvalidResponse) {
					t.Fatalf("expected validation error, got %q, %v", got, err)
				}
				if w.CheckPath(tt.dest) == nil {
					t.Error("CheckPath should agree with Resolve")
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestLocalConfinedWriteStaysInBase(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "generated")
	w, err := NewLocal(Config{BaseDir: base, Confine: true})
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	for _, dest := range []string{"../escaped.txt", filepath.Join(root, "elsewhere", "abs.txt")} {
		_, err := w.Write(context.Background(), dest, []byte("x"))
		if !errors.HasCode(err, errors.ErrCodeInvalidResponse) {
			t.Errorf("%s: expected validation error, got %v", dest, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "escaped.txt")); !os.IsNotExist(err) {
		t.Error("relative escape wrote outside the output directory")
	}
	if _, err := os.Stat(filepath.Join(root, "elsewhere")); !os.IsNotExist(err) {
		t.Error("absolute destination created directories outside the output directory")
	}

	path, err := w.Write(context.Background(), "sub/ok.txt", []byte("ok"))
	if err != nil {
		t.Fatalf("confined write failed: %v", err)
	}
	if path != filepath.Join(base, "sub", "ok.txt") {
		t.Errorf("unexpected path %q", path)
	}
}

func TestConfigValidate(t *testing.T) {
	if _, err := NewLocal(Config{FileMode: 0o444}); err == nil {
		t.Error("expected error for read-only file mode")
	}
}
