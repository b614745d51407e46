// Package spritefile reads and writes sprite projects and renders them to
// image formats.
package spritefile

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
)

// documentKey is the top-level key of a project document.
const documentKey = "Animation Frames"

// jsonDocument is the JSON representation of a project.
type jsonDocument struct {
	Frames *jsonFrames `json:"Animation Frames"`
}

// jsonFrames uses pointers so missing fields can be told apart from zeros.
type jsonFrames struct {
	Size   *int      `json:"size"`
	FPS    *int      `json:"fps"`
	Frames *[]string `json:"frames"`
}

// ToJSON encodes the current content of every frame of p. Undo history is
// not stored.
func ToJSON(p *sprite.Project, pretty bool) ([]byte, error) {
	size := p.Size()
	fps := p.FPS()
	frames := make([]string, 0, p.FrameCount())

	for i, b := range p.LatestBuffers() {
		data, err := b.PNG()
		if err != nil {
			return nil, fmt.Errorf("encoding frame %d: %w", i, err)
		}
		frames = append(frames, base64.StdEncoding.EncodeToString(data))
	}

	doc := jsonDocument{Frames: &jsonFrames{Size: &size, FPS: &fps, Frames: &frames}}
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// ParseJSON decodes a project document. Every frame of the result has a
// single history entry. Both the bare document object and an array whose
// first element is the document are accepted. Any defect yields an error
// wrapping sprite.ErrCorruptFile and no project.
func ParseJSON(data []byte) (*sprite.Project, error) {
	var doc jsonDocument

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []jsonDocument
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, corrupt("%v", err)
		}
		if len(docs) == 0 {
			return nil, corrupt("empty document array")
		}
		doc = docs[0]
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, corrupt("%v", err)
	}

	f := doc.Frames
	switch {
	case f == nil:
		return nil, corrupt("missing %q object", documentKey)
	case f.Size == nil:
		return nil, corrupt("missing size")
	case f.FPS == nil:
		return nil, corrupt("missing fps")
	case f.Frames == nil:
		return nil, corrupt("missing frames")
	case len(*f.Frames) == 0:
		return nil, corrupt("no frames")
	}

	size := *f.Size
	if size < sprite.MinSize || size > sprite.MaxSize {
		return nil, corrupt("canvas size %d not in [%d, %d]", size, sprite.MinSize, sprite.MaxSize)
	}

	buffers := make([]*sprite.Buffer, 0, len(*f.Frames))
	for i, s := range *f.Frames {
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, corrupt("frame %d: %v", i, err)
		}
		b, err := sprite.DecodePNG(bytes.NewReader(raw), size)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		buffers = append(buffers, b)
	}

	p, err := sprite.FromBuffers(size, *f.FPS, buffers)
	if err != nil {
		return nil, corrupt("%v", err)
	}
	return p, nil
}

func corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sprite.ErrCorruptFile, fmt.Sprintf(format, args...))
}
