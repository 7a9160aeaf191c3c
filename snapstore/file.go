package snapstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// File persists the snapshot at a fixed path. Save writes to a temp file in
// the same directory and renames it over the target, so a concurrent reader
// (or a crash mid-write) never observes a partial snapshot.
type File struct {
	path string
}

var _ Store = (*File)(nil)

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("snapstore: file path is required")
	}
	return &File{path: path}, nil
}

// Path returns the snapshot location (for logs and /health).
func (f *File) Path() string { return f.path }

func (f *File) Load(_ context.Context) ([]byte, bool, error) {
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (f *File) Save(_ context.Context, blob []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(blob)
	if serr := tmp.Sync(); werr == nil {
		werr = serr
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpName)
		return werr
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (f *File) Close(_ context.Context) error { return nil }
