// Package artifacts keeps the screenshots and DOM snapshots captured when a
// browser test fails, either in a local directory or in an S3 bucket.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kuitang/e2e-suites/internal/config"
	"github.com/kuitang/e2e-suites/internal/errs"
)

// Store persists one artifact and returns where it ended up.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Key builds a path-safe artifact key such as
// "TestContact_Submit/20240301T120000Z-screenshot.png". Subtest slashes become
// nested directories.
func Key(testName, kind, ext string, at time.Time) string {
	segments := strings.Split(testName, "/")
	for i, seg := range segments {
		seg = unsafeKeyChars.ReplaceAllString(seg, "_")
		seg = strings.Trim(seg, "._")
		if seg == "" {
			seg = "_"
		}
		segments[i] = seg
	}
	kind = unsafeKeyChars.ReplaceAllString(kind, "_")
	ext = strings.TrimPrefix(ext, ".")
	name := fmt.Sprintf("%s-%s.%s", at.UTC().Format("20060102T150405Z"), kind, ext)
	return strings.Join(append(segments, name), "/")
}

// LocalStore writes artifacts below a directory.
type LocalStore struct {
	dir string
}

// NewLocalStore returns a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Put implements Store.
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errs.Wrap(errs.Internal, fmt.Sprintf("artifacts: create directory for %q", key), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errs.Wrap(errs.Internal, fmt.Sprintf("artifacts: write %q", key), err)
	}
	return path, nil
}

// NewFromConfig returns the S3 store when a bucket is configured, otherwise
// a local store under cfg.Dir.
func NewFromConfig(ctx context.Context, cfg config.ArtifactsConfig) (Store, error) {
	if cfg.S3.Enabled() {
		return NewS3Store(ctx, cfg.S3)
	}
	return NewLocalStore(cfg.Dir), nil
}
