package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1siamBot/modkit/engine/render"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MODKIT_CONFIG", "")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", c.Paths.Base)
	assert.Equal(t, "extracted", c.Review.ImageRoot)
	assert.Equal(t, "tags.json", c.Review.TagsFile)
	assert.True(t, c.Review.SkipTagged)
	assert.Equal(t, render.Grid, c.DisplayMode())
	assert.Equal(t, 1280, c.Review.WindowWidth)
	assert.Equal(t, 720, c.Review.WindowHeight)
	assert.Equal(t, 8, c.Review.ResizeSettleTicks)
	assert.Equal(t, map[string]string{"1": "copy", "2": "skip"}, c.Review.TagKeys)
	assert.Equal(t, 10, c.Tools.Workers)
	assert.Equal(t, 30, c.Tools.ExtractWorkers)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
[paths]
base = "/mods"

[review]
display_mode = "single"
tag_keys = { 1 = "copy", 3 = "retex" }

[tools]
workers = 4
`), 0o644))
	t.Setenv("MODKIT_CONFIG", cfgFile)
	t.Setenv("MODKIT_REVIEW_SKIP_TAGGED", "false")
	t.Setenv("MODKIT_LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/mods", c.Paths.Base)
	assert.Equal(t, render.Single, c.DisplayMode())
	assert.Equal(t, "retex", c.Review.TagKeys["3"])
	assert.Equal(t, 4, c.Tools.Workers)
	assert.False(t, c.Review.SkipTagged)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, filepath.Join("/mods", "extracted"), c.Path(c.Paths.Extracted))
	assert.Equal(t, "/abs/dir", c.Path("/abs/dir"))
}

func TestLoadBrokenFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("[paths\nbase ="), 0o644))
	t.Setenv("MODKIT_CONFIG", cfgFile)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"zero workers", "tools.workers", 0},
		{"negative extract workers", "tools.extract_workers", -1},
		{"zero window", "review.window_width", 0},
		{"negative settle", "review.resize_settle_ticks", -2},
		{"unknown mode", "review.display_mode", "tiles"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}

	_, err := FromViper(viper.New())
	assert.NoError(t, err)
}
