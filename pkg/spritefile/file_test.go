package spritefile

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
)

func TestWriteFileReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "walk.json")

	p := randomProject(t, rand.New(rand.NewSource(7)), 16, 3)
	if err := WriteFile(path, p); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if p.Path() != path {
		t.Errorf("Path() = %q after save, want %q", p.Path(), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries after save, want 1", len(entries))
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Path() != path {
		t.Errorf("loaded Path() = %q, want %q", got.Path(), path)
	}
	want := p.LatestBuffers()
	for i, b := range got.LatestBuffers() {
		if !b.Equal(want[i]) {
			t.Errorf("frame %d differs after save and load", i)
		}
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	p, _ := sprite.New(4)
	if err := WriteFile(path, p); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), documentKey) {
		t.Errorf("file was not replaced: %q", data)
	}
}

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "nope.json"))
		if !errors.Is(err, sprite.ErrIOFailure) {
			t.Errorf("got %v, want ErrIOFailure", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		p, _ := sprite.New(4)
		path := filepath.Join(dir, "no", "such", "dir", "x.json")
		if err := WriteFile(path, p); !errors.Is(err, sprite.ErrIOFailure) {
			t.Errorf("got %v, want ErrIOFailure", err)
		}
		if p.Path() != "" {
			t.Errorf("Path() = %q after failed save, want empty", p.Path())
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		os.WriteFile(path, []byte(`{"Animation Frames": {}}`), 0644)
		_, err := ReadFile(path)
		if !errors.Is(err, sprite.ErrCorruptFile) {
			t.Errorf("got %v, want ErrCorruptFile", err)
		}
	})
}
