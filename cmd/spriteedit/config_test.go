package main

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfigFrom(filepath.Join(t.TempDir(), "missing.toml"))
	def := DefaultConfig()
	if cfg.CanvasSize != def.CanvasSize || cfg.FPS != def.FPS || cfg.UndoLevels != defaultUndoLevels {
		t.Errorf("got %+v, want defaults", cfg)
	}
	if len(cfg.Colors()) != paletteSize {
		t.Errorf("palette has %d colours, want %d", len(cfg.Colors()), paletteSize)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name string
		file string
		want func(Config) bool
	}{
		{
			"all keys",
			"canvas_size = 24\nfps = 12\nundo_levels = 10\npalette = [\"#ff0000\", \"00ff00\"]\nlast_dir = \"/tmp/sprites\"\nlog_file = \"/tmp/spriteedit.log\"\n",
			func(c Config) bool {
				return c.CanvasSize == 24 && c.FPS == 12 && c.UndoLevels == 10 &&
					len(c.Palette) == 2 && c.LastDir == "/tmp/sprites" && c.LogFile == "/tmp/spriteedit.log"
			},
		},
		{
			"out of range values keep defaults",
			"canvas_size = 100\nfps = 0\nundo_levels = -1\n",
			func(c Config) bool {
				return c.CanvasSize == defaultCanvasSize && c.FPS == sprite.DefaultFPS && c.UndoLevels == defaultUndoLevels
			},
		},
		{
			"zero undo levels means unlimited",
			"undo_levels = 0\n",
			func(c Config) bool { return c.UndoLevels == 0 },
		},
		{
			"missing undo levels keeps default",
			"fps = 5\n",
			func(c Config) bool { return c.UndoLevels == defaultUndoLevels && c.FPS == 5 },
		},
		{
			"malformed file yields defaults",
			"canvas_size = = 3\n",
			func(c Config) bool { return c.CanvasSize == defaultCanvasSize },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.file), 0644); err != nil {
				t.Fatal(err)
			}
			if cfg := loadConfigFrom(path); !tt.want(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.CanvasSize = 8
	cfg.FPS = 24
	cfg.UndoLevels = 0
	cfg.Palette = []string{"#123456", "#abcdef80"}
	cfg.LastDir = "/home/me/art"

	if err := saveConfigTo(path, cfg); err != nil {
		t.Fatal(err)
	}
	got := loadConfigFrom(path)
	if got.CanvasSize != 8 || got.FPS != 24 || got.UndoLevels != 0 || got.LastDir != "/home/me/art" {
		t.Errorf("got %+v", got)
	}
	colors := got.Colors()
	if len(colors) != 2 || colors[1] != (color.NRGBA{0xab, 0xcd, 0xef, 0x80}) {
		t.Errorf("palette = %v", colors)
	}
}

func TestConfigColorsSkipsInvalid(t *testing.T) {
	cfg := Config{Palette: []string{"nope", "#00f", "#zzzzzz"}}
	colors := cfg.Colors()
	if len(colors) != 1 || colors[0] != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("got %v, want only blue", colors)
	}

	cfg.Palette = []string{"bad"}
	if len(cfg.Colors()) != paletteSize {
		t.Error("all-invalid palette did not fall back to the generated one")
	}
}
