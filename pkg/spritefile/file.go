package spritefile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
)

// Write writes p to w as an indented project document.
func Write(w io.Writer, p *sprite.Project) error {
	data, err := ToJSON(p, true)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	return nil
}

// Read reads a project document from r.
func Read(r io.Reader) (*sprite.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	return ParseJSON(data)
}

// WriteFile saves p to path and associates the project with it. The
// document is written to a temporary file next to path and renamed into
// place, so a failed save leaves any previous file intact.
func WriteFile(path string, p *sprite.Project) error {
	data, err := ToJSON(p, true)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}

	p.SetPath(path)
	return nil
}

// ReadFile loads a project from path and associates it with the file.
func ReadFile(path string) (*sprite.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	p, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	p.SetPath(path)
	return p, nil
}
