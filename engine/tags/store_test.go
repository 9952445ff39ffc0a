package tags

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tagFile = "/work/tags.json"

func TestLoadMissingAndMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()

	s := Load(fs, tagFile, nil)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, afero.WriteFile(fs, tagFile, []byte("{not json"), 0o644))
	s = Load(fs, tagFile, nil)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, afero.WriteFile(fs, tagFile, []byte(`["a", "b"]`), 0o644))
	s = Load(fs, tagFile, nil)
	assert.Equal(t, 0, s.Len())
}

func TestLoadDropsForeignEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `{
    "C:\\mods\\extracted\\a.png": true,
    "b.png": ["copy", "skip", "copy"],
    "c.png": []
}`
	require.NoError(t, afero.WriteFile(fs, tagFile, []byte(doc), 0o644))

	s := Load(fs, tagFile, nil)
	assert.Equal(t, map[string][]string{"b.png": {"copy", "skip"}}, s.Snapshot())
	assert.False(t, s.HasAnyTag("c.png"))
}

func TestRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, tagFile, nil)
	s.Toggle(`weapons\rifle.png`, "copy")
	s.Toggle(`weapons\rifle.png`, "skip")
	s.Toggle("b.png", "skip")
	s.Toggle("c.png", "custom token")
	s.Toggle("c.png", "custom token")
	require.NoError(t, s.Save())

	loaded := Load(fs, tagFile, nil)
	assert.Equal(t, s.Snapshot(), loaded.Snapshot())
	assert.Equal(t, []string{"copy", "skip"}, loaded.Tags(`weapons\rifle.png`))

	data, err := afero.ReadFile(fs, tagFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"b.png\": [\n        \"skip\"\n    ]")
	assert.NotContains(t, string(data), "c.png")
}

func TestSaveReplacesWithoutLeftovers(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, tagFile, nil)
	s.Toggle("a.png", "copy")
	require.NoError(t, s.Save())
	s.Toggle("b.png", "skip")
	require.NoError(t, s.Save())

	entries, err := afero.ReadDir(fs, "/work")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tags.json", entries[0].Name())

	loaded := Load(fs, tagFile, nil)
	assert.True(t, loaded.HasTag("a.png", "copy"))
	assert.True(t, loaded.HasTag("b.png", "skip"))
}

func TestSaveFailureKeepsOldFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, tagFile, nil)
	s.Toggle("a.png", "copy")
	require.NoError(t, s.Save())

	ro := NewStore(afero.NewReadOnlyFs(fs), tagFile, nil)
	ro.Toggle("b.png", "skip")
	assert.Error(t, ro.Save())

	loaded := Load(fs, tagFile, nil)
	assert.Equal(t, map[string][]string{"a.png": {"copy"}}, loaded.Snapshot())
}

func TestToggleIsSelfInverse(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), tagFile, nil)
	s.Toggle("a.png", "copy")
	s.Toggle("a.png", "skip")
	before := s.Snapshot()

	for _, tag := range []string{"copy", "skip", "new"} {
		first := s.Toggle("a.png", tag)
		second := s.Toggle("a.png", tag)
		assert.NotEqual(t, first.Action, second.Action)
		assert.ElementsMatch(t, before["a.png"], s.Tags("a.png"), tag)
	}
}

func TestToggleActions(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), tagFile, nil)

	e := s.Toggle("a.png", "copy")
	assert.Equal(t, Event{Image: "a.png", Tag: "copy", Action: Added, Index: 0}, e)
	assert.True(t, s.HasAnyTag("a.png"))

	e = s.Toggle("a.png", "skip")
	assert.Equal(t, 1, e.Index)

	e = s.Toggle("a.png", "copy")
	assert.Equal(t, Event{Image: "a.png", Tag: "copy", Action: Removed, Index: 0}, e)
	assert.Equal(t, []string{"skip"}, s.Tags("a.png"))

	s.Toggle("a.png", "skip")
	assert.False(t, s.HasAnyTag("a.png"))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "removed", Removed.String())
}

func TestUndoRestoresPreSessionState(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, tagFile, nil)
	s.Toggle("a.png", "copy")
	s.Toggle("a.png", "skip")
	s.Toggle("b.png", "skip")
	initial := s.Snapshot()

	var h History
	ops := []struct{ image, tag string }{
		{"a.png", "copy"},
		{"a.png", "new"},
		{"a.png", "copy"},
		{"b.png", "skip"},
		{"c.png", "copy"},
		{"a.png", "skip"},
		{"b.png", "skip"},
		{"a.png", "new"},
	}
	for _, op := range ops {
		h.Push(s.Toggle(op.image, op.tag))
	}
	assert.Equal(t, len(ops), h.Len())

	for h.Len() > 0 {
		_, ok := h.Undo(s)
		require.True(t, ok)
	}
	assert.Equal(t, initial, s.Snapshot())

	_, ok := h.Undo(s)
	assert.False(t, ok)
}

func TestTagged(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), tagFile, nil)
	s.Toggle("z.png", "copy")
	s.Toggle("a.png", "copy")
	s.Toggle("m.png", "skip")

	assert.Equal(t, []string{"a.png", "z.png"}, s.Tagged("copy"))
	assert.Empty(t, s.Tagged("none"))
}
