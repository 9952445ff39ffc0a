// Package config loads modkit settings from modkit.toml and MODKIT_* env vars
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1siamBot/modkit/engine/render"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Paths  PathsConfig  `mapstructure:"paths"`
	Review ReviewConfig `mapstructure:"review"`
	Tools  ToolsConfig  `mapstructure:"tools"`
	Log    LogConfig    `mapstructure:"log"`
}

// PathsConfig holds the working tree layout. Relative entries resolve
// against Base.
type PathsConfig struct {
	Base      string `mapstructure:"base"`
	Source    string `mapstructure:"source"`
	Extracted string `mapstructure:"extracted"`
	Edited    string `mapstructure:"edited"`
	Converted string `mapstructure:"converted"`
	Raw       string `mapstructure:"raw"`
	Patched   string `mapstructure:"patched"`
	Edits     string `mapstructure:"edits"`
	Selected  string `mapstructure:"selected"`
	Temp      string `mapstructure:"temp"`
	Modding   string `mapstructure:"modding"`
	ModOutput string `mapstructure:"mod_output"`
}

// ReviewConfig holds viewer settings.
type ReviewConfig struct {
	ImageRoot         string            `mapstructure:"image_root"`
	TagsFile          string            `mapstructure:"tags_file"`
	SkipTagged        bool              `mapstructure:"skip_tagged"`
	DisplayMode       string            `mapstructure:"display_mode"`
	WindowWidth       int               `mapstructure:"window_width"`
	WindowHeight      int               `mapstructure:"window_height"`
	ResizeSettleTicks int               `mapstructure:"resize_settle_ticks"`
	TagKeys           map[string]string `mapstructure:"tag_keys"`
	CopyTag           string            `mapstructure:"copy_tag"`
}

// ToolsConfig holds external executables and pool sizes.
type ToolsConfig struct {
	Pal2Pac        string `mapstructure:"pal2pac"`
	Magick         string `mapstructure:"magick"`
	ExtractPbo     string `mapstructure:"extract_pbo"`
	Workers        int    `mapstructure:"workers"`
	ExtractWorkers int    `mapstructure:"extract_workers"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.base", ".")
	v.SetDefault("paths.source", "source")
	v.SetDefault("paths.extracted", "extracted")
	v.SetDefault("paths.edited", "edited")
	v.SetDefault("paths.converted", "converted")
	v.SetDefault("paths.raw", "raw")
	v.SetDefault("paths.patched", "patched")
	v.SetDefault("paths.edits", "edits")
	v.SetDefault("paths.selected", "selected")
	v.SetDefault("paths.temp", "temp")
	v.SetDefault("paths.modding", "modding")
	v.SetDefault("paths.mod_output", "mod_output")

	v.SetDefault("review.image_root", "extracted")
	v.SetDefault("review.tags_file", "tags.json")
	v.SetDefault("review.skip_tagged", true)
	v.SetDefault("review.display_mode", "grid")
	v.SetDefault("review.window_width", 1280)
	v.SetDefault("review.window_height", 720)
	v.SetDefault("review.resize_settle_ticks", 8)
	v.SetDefault("review.tag_keys", map[string]string{"1": "copy", "2": "skip"})
	v.SetDefault("review.copy_tag", "copy")

	v.SetDefault("tools.pal2pac", `C:\Program Files (x86)\Steam\steamapps\common\DayZ Tools\Bin\ImageToPAA\Pal2PacE.exe`)
	v.SetDefault("tools.magick", "magick")
	v.SetDefault("tools.extract_pbo", "ExtractPbo.exe")
	v.SetDefault("tools.workers", 10)
	v.SetDefault("tools.extract_workers", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from file and env. Env var overrides use prefix
// MODKIT_, e.g. MODKIT_REVIEW_SKIP_TAGGED=false. A missing config file is fine.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("MODKIT_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("modkit")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "modkit"))
		}
	}

	v.SetEnvPrefix("MODKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

// FromViper decodes an already populated viper instance on top of the defaults
func FromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings no tool can run with
func (c Config) Validate() error {
	if c.Tools.Workers < 1 {
		return fmt.Errorf("tools.workers must be positive, got %d", c.Tools.Workers)
	}
	if c.Tools.ExtractWorkers < 1 {
		return fmt.Errorf("tools.extract_workers must be positive, got %d", c.Tools.ExtractWorkers)
	}
	if c.Review.WindowWidth < 1 || c.Review.WindowHeight < 1 {
		return fmt.Errorf("review window size must be positive, got %dx%d", c.Review.WindowWidth, c.Review.WindowHeight)
	}
	if c.Review.ResizeSettleTicks < 0 {
		return fmt.Errorf("review.resize_settle_ticks must not be negative")
	}
	if _, err := render.ParseDisplayMode(c.Review.DisplayMode); err != nil {
		return fmt.Errorf("review.display_mode: %w", err)
	}
	return nil
}

// Path resolves a configured path against paths.base
func (c Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Base, p)
}

// DisplayMode returns the parsed review.display_mode
func (c Config) DisplayMode() render.DisplayMode {
	m, _ := render.ParseDisplayMode(c.Review.DisplayMode)
	return m
}
