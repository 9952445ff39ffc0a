// Package tags holds per-image tag annotations, their JSON persistence and
// the undo log of tag toggles.
package tags

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Action says whether a toggle added or removed a tag
type Action int

const (
	Added Action = iota
	Removed
)

func (a Action) String() string {
	switch a {
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Event records one toggle. Index is where the tag sat in the annotation:
// the append position for Added, the removal position for Removed.
type Event struct {
	Image  string
	Tag    string
	Action Action
	Index  int
}

// Store maps relative image paths to ordered, duplicate-free tag lists.
// Images without tags have no entry.
type Store struct {
	fs      afero.Fs
	path    string
	log     logrus.FieldLogger
	entries map[string][]string
}

// NewStore creates an empty store persisted at path
func NewStore(fs afero.Fs, path string, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Store{
		fs:      fs,
		path:    path,
		log:     log,
		entries: make(map[string][]string),
	}
}

// Load reads the tag file at path. A missing file is the first-run state and
// yields an empty store; an unparseable file also yields an empty store and
// is reported as a warning. Entries that are not arrays of strings are dropped.
func Load(fs afero.Fs, path string, log logrus.FieldLogger) *Store {
	s := NewStore(fs, path, log)

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).WithField("file", path).Warn("cannot read tag file, starting empty")
		}
		return s
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.WithError(err).WithField("file", path).Warn("malformed tag file, starting empty")
		return s
	}

	for image, msg := range raw {
		var list []string
		if err := json.Unmarshal(msg, &list); err != nil {
			s.log.WithField("image", image).Warn("dropping tag entry that is not a list of strings")
			continue
		}
		for _, tag := range list {
			if !slices.Contains(s.entries[image], tag) {
				s.entries[image] = append(s.entries[image], tag)
			}
		}
	}
	return s
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Toggle removes tag from image if present, otherwise appends it
func (s *Store) Toggle(image, tag string) Event {
	list := s.entries[image]
	if i := slices.Index(list, tag); i >= 0 {
		s.remove(image, i)
		return Event{Image: image, Tag: tag, Action: Removed, Index: i}
	}
	s.entries[image] = append(list, tag)
	return Event{Image: image, Tag: tag, Action: Added, Index: len(list)}
}

// Revert applies the inverse of e, restoring the annotation it changed
func (s *Store) Revert(e Event) {
	list := s.entries[e.Image]
	switch e.Action {
	case Added:
		if i := slices.Index(list, e.Tag); i >= 0 {
			s.remove(e.Image, i)
		}
	case Removed:
		if slices.Contains(list, e.Tag) {
			return
		}
		at := min(max(e.Index, 0), len(list))
		s.entries[e.Image] = slices.Insert(list, at, e.Tag)
	}
}

func (s *Store) remove(image string, i int) {
	list := slices.Delete(s.entries[image], i, i+1)
	if len(list) == 0 {
		delete(s.entries, image)
		return
	}
	s.entries[image] = list
}

// Tags returns a copy of the tags of image in first-tagged order
func (s *Store) Tags(image string) []string {
	return slices.Clone(s.entries[image])
}

// HasAnyTag reports whether image carries at least one tag
func (s *Store) HasAnyTag(image string) bool {
	return len(s.entries[image]) > 0
}

// HasTag reports whether image carries tag
func (s *Store) HasTag(image, tag string) bool {
	return slices.Contains(s.entries[image], tag)
}

// Len returns the number of tagged images
func (s *Store) Len() int {
	return len(s.entries)
}

// Snapshot returns a deep copy of the annotations
func (s *Store) Snapshot() map[string][]string {
	out := make(map[string][]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = slices.Clone(v)
	}
	return out
}

// Tagged returns every image carrying tag, sorted
func (s *Store) Tagged(tag string) []string {
	var out []string
	for image, list := range s.entries {
		if slices.Contains(list, tag) {
			out = append(out, image)
		}
	}
	slices.Sort(out)
	return out
}

// Save rewrites the whole tag file. The document goes to a temp file in the
// same directory which then replaces the old one, so an interrupted save
// leaves the previous file intact.
func (s *Store) Save() error {
	doc := make(map[string][]string, len(s.entries))
	for k, v := range s.entries {
		if len(v) > 0 {
			doc[k] = v
		}
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create tag dir: %w", err)
	}
	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp tag file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("write temp tag file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("sync temp tag file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("close temp tag file: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("replace tag file: %w", err)
	}
	return nil
}
