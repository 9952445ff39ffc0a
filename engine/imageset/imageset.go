// Package imageset enumerates the reviewable images below an image root.
package imageset

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// ErrRootNotFound is returned by Build when the image root does not exist
var ErrRootNotFound = errors.New("image root not found")

// imagePattern matches lower-cased base names of reviewable files
var imagePattern = glob.MustCompile("*.{png,jpg,jpeg}")

// excluded are raw substrings; a path containing any of them is never shown.
// The separator literals are Windows paths as written by the extractor.
var excluded = []string{
	"nohq.png",
	"co.png",
	"smdi.png",
	"ao.png",
	"as.png",
	`\UI\`,
	`\ui\`,
	`\icons\`,
	"_body_",
	"reticle",
}

// Set is the ordered list of image paths, relative to Root
type Set struct {
	Root  string
	Paths []string
}

// Build walks root recursively and collects every png/jpg/jpeg file.
// The order is the lexical walk order and stays fixed for the session.
// An empty result is not an error.
func Build(fs afero.Fs, root string) (*Set, error) {
	info, err := fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("stat image root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	set := &Set{Root: root}
	err = afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || !IsImage(fi.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		set.Paths = append(set.Paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return set, nil
}

// IsImage reports whether a file name has a reviewable extension (any case)
func IsImage(name string) bool {
	return imagePattern.Match(strings.ToLower(name))
}

// IsEligible applies the static exclusion filter
func IsEligible(path string) bool {
	for _, s := range excluded {
		if strings.Contains(path, s) {
			return false
		}
	}
	return true
}

// Len returns the number of images
func (s *Set) Len() int {
	return len(s.Paths)
}

// At returns the relative path at index i
func (s *Set) At(i int) string {
	return s.Paths[i]
}

// Abs resolves a relative image path against the root
func (s *Set) Abs(rel string) string {
	return filepath.Join(s.Root, rel)
}

// Loader decodes images of a Set
type Loader struct {
	Fs   afero.Fs
	Root string
}

// NewLoader creates a loader reading below root
func NewLoader(fs afero.Fs, root string) *Loader {
	return &Loader{Fs: fs, Root: root}
}

// Load decodes the image at a relative path
func (l *Loader) Load(rel string) (image.Image, error) {
	f, err := l.Fs.Open(filepath.Join(l.Root, rel))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rel, err)
	}
	return img, nil
}
