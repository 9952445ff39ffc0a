// Package mirror keeps one directory tree in step with another
package mirror

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// Stats counts what Sync did
type Stats struct {
	Copied    int
	Unchanged int
	Removed   int
}

// Sync makes target a one-way mirror of source. Files missing from target or
// differing in size are copied with their modification time; files and
// directories in target that source lacks are deleted.
func Sync(fs afero.Fs, source, target string) (Stats, error) {
	var st Stats
	if err := fs.MkdirAll(target, 0o755); err != nil {
		return st, fmt.Errorf("create %s: %w", target, err)
	}

	err := afero.Walk(fs, source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(target, rel)
		if info.IsDir() {
			return fs.MkdirAll(dst, 0o755)
		}

		if di, err := fs.Stat(dst); err == nil && !di.IsDir() && di.Size() == info.Size() {
			st.Unchanged++
			return nil
		}
		if err := fs.RemoveAll(dst); err != nil {
			return err
		}
		if err := CopyFile(fs, path, dst); err != nil {
			return err
		}
		st.Copied++
		return nil
	})
	if err != nil {
		return st, fmt.Errorf("sync %s: %w", source, err)
	}

	var stale []string
	err = afero.Walk(fs, target, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == target {
			return nil
		}
		rel, err := filepath.Rel(target, path)
		if err != nil {
			return err
		}
		if ok, _ := afero.Exists(fs, filepath.Join(source, rel)); ok {
			return nil
		}
		stale = append(stale, path)
		if info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return st, fmt.Errorf("scan %s: %w", target, err)
	}
	for _, path := range stale {
		if err := fs.RemoveAll(path); err != nil {
			return st, fmt.Errorf("remove %s: %w", path, err)
		}
		st.Removed++
	}
	return st, nil
}

// Overlay copies every file below from whose base name matches pattern onto
// the same relative path below to, overwriting. An empty pattern matches all.
func Overlay(fs afero.Fs, from, to, pattern string) (int, error) {
	var g glob.Glob
	if pattern != "" {
		var err error
		if g, err = glob.Compile(pattern); err != nil {
			return 0, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
	}
	return copyMatching(fs, from, to, g)
}

// CopyTree copies all of from into to, merging with what is there
func CopyTree(fs afero.Fs, from, to string) (int, error) {
	return copyMatching(fs, from, to, nil)
}

func copyMatching(fs afero.Fs, from, to string, g glob.Glob) (int, error) {
	n := 0
	err := afero.Walk(fs, from, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || (g != nil && !g.Match(info.Name())) {
			return nil
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		if err := CopyFile(fs, path, filepath.Join(to, rel)); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", from, err)
	}
	return n, nil
}

// CopyFile copies src to dst, creating parent directories and keeping the
// permission bits and modification time.
func CopyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return fs.Chtimes(dst, info.ModTime(), info.ModTime())
}
