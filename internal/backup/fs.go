package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSSink keeps snapshots as files in one directory.
type FSSink struct {
	root string
}

// NewFS returns a sink rooted at dir, creating it if needed.
func NewFS(dir string) (*FSSink, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("backup directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return &FSSink{root: dir}, nil
}

func (s *FSSink) Driver() string { return DriverFS }

func (s *FSSink) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid backup key %q", key)
	}
	return filepath.Join(s.root, key), nil
}

func (s *FSSink) Put(ctx context.Context, key string, r io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return Object{}, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return Object{}, ErrExists
	}
	if err != nil {
		return Object{}, fmt.Errorf("create %s: %w", key, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return Object{}, fmt.Errorf("write %s: %w", key, err)
	}
	return s.object(key, path, n)
}

func (s *FSSink) object(key, path string, size int64) (Object, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Object{}, fmt.Errorf("stat %s: %w", key, err)
	}
	if size < 0 {
		size = st.Size()
	}
	return Object{Key: key, Size: size, Location: path, CreatedAt: st.ModTime().UTC()}, nil
}

func (s *FSSink) List(ctx context.Context) ([]Object, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := []Object{}
	for _, e := range entries {
		if e.IsDir() || !isSnapshotKey(e.Name()) {
			continue
		}
		obj, err := s.object(e.Name(), filepath.Join(s.root, e.Name()), -1)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
