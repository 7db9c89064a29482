package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrNotConfigured = errors.New("backup target not configured")

// Target stores exported snapshots under a name and returns where they went.
type Target interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, name string) ([]byte, error)
}

// Name is the object name used for a snapshot taken at t.
func Name(t time.Time) string {
	return "schoolhub-backup-" + t.UTC().Format("20060102T150405Z") + ".json"
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}

type DirTarget struct {
	dir string
}

func NewDirTarget(dir string) (*DirTarget, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrNotConfigured
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "create backup dir %s", dir)
	}
	return &DirTarget{dir: dir}, nil
}

func (d *DirTarget) Put(_ context.Context, name string, data []byte) (string, error) {
	if !validName(name) {
		return "", errors.Errorf("invalid backup name %q", name)
	}
	path := filepath.Join(d.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", errors.Wrap(err, "write backup")
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", errors.Wrap(err, "finalize backup")
	}
	return path, nil
}

func (d *DirTarget) Get(_ context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, errors.Errorf("invalid backup name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		return nil, errors.Wrap(err, "read backup")
	}
	return data, nil
}

// Disabled is used when no backup target is configured.
type Disabled struct{}

func (Disabled) Put(context.Context, string, []byte) (string, error) { return "", ErrNotConfigured }
func (Disabled) Get(context.Context, string) ([]byte, error)         { return nil, ErrNotConfigured }

type Options struct {
	S3Bucket string
	S3Region string
	Dir      string
}

// Open prefers S3 when a bucket is configured, then a local directory.
func Open(ctx context.Context, opts Options) (Target, error) {
	switch {
	case opts.S3Bucket != "":
		return NewS3Target(ctx, S3Config{Bucket: opts.S3Bucket, Region: opts.S3Region, Prefix: "backups/"})
	case opts.Dir != "":
		return NewDirTarget(opts.Dir)
	default:
		return Disabled{}, nil
	}
}
