package main

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
)

// Config holds persistent editor settings
type Config struct {
	CanvasSize int      `toml:"canvas_size"`
	FPS        int      `toml:"fps"`
	UndoLevels int      `toml:"undo_levels"` // per frame, 0 = unlimited
	Palette    []string `toml:"palette"`     // hex colours
	LastDir    string   `toml:"last_dir"`
	LogFile    string   `toml:"log_file"` // empty disables logging
}

const (
	defaultCanvasSize = 16
	defaultUndoLevels = 50
	paletteSize       = 16
)

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	cwd, _ := os.Getwd()
	pal := sprite.Palette(paletteSize)
	hex := make([]string, len(pal))
	for i, c := range pal {
		hex[i] = sprite.FormatColor(c)
	}
	return Config{
		CanvasSize: defaultCanvasSize,
		FPS:        sprite.DefaultFPS,
		UndoLevels: defaultUndoLevels,
		Palette:    hex,
		LastDir:    cwd,
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spriteedit.toml"
	}
	return filepath.Join(home, ".spriteedit.toml")
}

// LoadConfig loads configuration from the user's config file
func LoadConfig() Config {
	return loadConfigFrom(ConfigPath())
}

// loadConfigFrom reads path over the defaults. A missing or unreadable
// file yields the defaults; out of range values keep their default.
func loadConfigFrom(path string) Config {
	cfg := DefaultConfig()

	var file Config
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return cfg
	}

	if file.CanvasSize >= sprite.MinSize && file.CanvasSize <= sprite.MaxSize {
		cfg.CanvasSize = file.CanvasSize
	}
	if file.FPS >= 1 && file.FPS <= sprite.MaxFPS {
		cfg.FPS = file.FPS
	}
	if md.IsDefined("undo_levels") && file.UndoLevels >= 0 {
		cfg.UndoLevels = file.UndoLevels
	}
	if len(file.Palette) > 0 {
		cfg.Palette = file.Palette
	}
	if file.LastDir != "" {
		cfg.LastDir = file.LastDir
	}
	cfg.LogFile = file.LogFile
	return cfg
}

// saveConfigTo writes cfg to path with a header comment.
func saveConfigTo(path string, cfg Config) error {
	var buf bytes.Buffer
	buf.WriteString("# spriteedit configuration\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Colors returns the parsed palette. Entries that do not parse are
// skipped; an empty result falls back to the generated palette.
func (cfg Config) Colors() []color.NRGBA {
	var out []color.NRGBA
	for _, s := range cfg.Palette {
		c, err := sprite.ParseColor(s)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return sprite.Palette(paletteSize)
	}
	return out
}
