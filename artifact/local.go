package artifact

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxgurv/ALONE/errors"
)

// Writer persists a complete payload at a destination path and returns the
// path it wrote.
type Writer interface {
	Write(ctx context.Context, dest string, data []byte) (string, error)
}

// PathChecker is implemented by writers that can reject a destination
// before any payload exists.
type PathChecker interface {
	CheckPath(dest string) error
}

// Local writes artifacts to the local filesystem.
type Local struct {
	baseDir string
	mode    os.FileMode
	confine bool
}

// NewLocal creates a filesystem writer. The base directory is created lazily
// on first write. A confined writer without a base directory is confined to
// the working directory.
func NewLocal(cfg Config) (*Local, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := cfg.BaseDir
	if base == "" && cfg.Confine {
		base = "."
	}
	if base != "" {
		abs, err := filepath.Abs(base)
		if err != nil {
			return nil, errors.IO("resolve", base, err)
		}
		base = abs
	}
	return &Local{baseDir: base, mode: cfg.FileMode, confine: cfg.Confine}, nil
}

// Resolve returns the destination for dest. Relative paths are joined onto
// the base directory. Absolute paths are kept unless the writer is confined,
// in which case they are refused along with paths that leave the base
// directory.
func (l *Local) Resolve(dest string) (string, error) {
	if strings.TrimSpace(dest) == "" {
		return "", errors.Validation("destination_path: is required")
	}
	dest = filepath.Clean(dest)
	if !l.confine {
		if filepath.IsAbs(dest) || l.baseDir == "" {
			return dest, nil
		}
		return filepath.Join(l.baseDir, dest), nil
	}

	if filepath.IsAbs(dest) || filepath.VolumeName(dest) != "" {
		return "", errors.Validation("destination_path: must be relative to the output directory")
	}
	path := filepath.Join(l.baseDir, dest)
	rel, err := filepath.Rel(l.baseDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Validation("destination_path: must stay inside the output directory")
	}
	return path, nil
}

// CheckPath reports whether dest would be accepted by Write.
func (l *Local) CheckPath(dest string) error {
	_, err := l.Resolve(dest)
	return err
}

// Write stores data at dest, replacing any existing file. Empty payloads are
// refused with INVALID_RESPONSE; filesystem failures are IO_ERROR.
func (l *Local) Write(ctx context.Context, dest string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Classify(err)
	}
	path, err := l.Resolve(dest)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.InvalidResponse("empty artifact payload")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.IO("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", errors.IO("create", path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", errors.IO("write", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return "", errors.IO("sync", path, err)
	}
	if err := tmp.Chmod(l.mode); err != nil {
		return "", errors.IO("chmod", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.IO("close", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", errors.IO("rename", path, err)
	}
	committed = true
	return path, nil
}

var (
	_ Writer      = (*Local)(nil)
	_ PathChecker = (*Local)(nil)
)
