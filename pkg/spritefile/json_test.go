package spritefile

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
)

// randomProject builds a project with random pixels, alpha 0 included, and
// some undo history on each frame.
func randomProject(t *testing.T, rng *rand.Rand, size, frames int) *sprite.Project {
	t.Helper()
	p, err := sprite.New(size)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < frames; i++ {
		if i > 0 {
			if err := p.AddFrame(i - 1); err != nil {
				t.Fatal(err)
			}
		}
		for s := 0; s < 3; s++ {
			c := color.NRGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
			tool := sprite.DefaultTool().WithColor(c)
			if s == 2 {
				tool = tool.WithEraser()
			}
			tool, _ = tool.WithWidth(1 + rng.Intn(3))
			from := image.Pt(rng.Intn(sprite.ScreenSize), rng.Intn(sprite.ScreenSize))
			to := image.Pt(rng.Intn(sprite.ScreenSize), rng.Intn(sprite.ScreenSize))
			if err := p.BeginStroke(from, tool); err != nil {
				t.Fatal(err)
			}
			if _, err := p.ContinueStroke(to); err != nil {
				t.Fatal(err)
			}
			if err := p.EndStroke(); err != nil {
				t.Fatal(err)
			}
		}
	}
	return p
}

func TestJSONRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, tc := range []struct{ size, frames int }{{2, 1}, {4, 3}, {16, 5}, {32, 2}} {
		p := randomProject(t, rng, tc.size, tc.frames)
		if err := p.SetFPS(12); err != nil {
			t.Fatal(err)
		}

		for _, pretty := range []bool{false, true} {
			data, err := ToJSON(p, pretty)
			if err != nil {
				t.Fatalf("ToJSON: %v", err)
			}
			got, err := ParseJSON(data)
			if err != nil {
				t.Fatalf("ParseJSON: %v", err)
			}

			if got.Size() != p.Size() || got.FPS() != 12 {
				t.Errorf("size/fps = %d/%d, want %d/12", got.Size(), got.FPS(), p.Size())
			}
			want := p.LatestBuffers()
			have := got.LatestBuffers()
			if len(have) != len(want) {
				t.Fatalf("frame count = %d, want %d", len(have), len(want))
			}
			for i := range want {
				if !have[i].Equal(want[i]) {
					t.Errorf("size %d frame %d: pixels differ after round trip", tc.size, i)
				}
				h, _ := got.History(i)
				if h.Len() != 1 || h.CanRedo() {
					t.Errorf("frame %d: loaded history has %d entries, want 1", i, h.Len())
				}
			}
		}
	}
}

func TestJSONSchema(t *testing.T) {
	p, err := sprite.New(4)
	if err != nil {
		t.Fatal(err)
	}
	p.AddFrame(0)

	data, err := ToJSON(p, false)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("document is not a single object: %v", err)
	}
	doc, ok := raw["Animation Frames"]
	if !ok {
		t.Fatalf("missing top-level key, got %s", data)
	}
	if string(doc["size"]) != "4" || string(doc["fps"]) != "2" {
		t.Errorf("size/fps = %s/%s, want 4/2", doc["size"], doc["fps"])
	}

	var frames []string
	if err := json.Unmarshal(doc["frames"], &frames); err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frame payloads, want 2", len(frames))
	}
	png, err := base64.StdEncoding.DecodeString(frames[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("frame payload is not a PNG")
	}
}

func TestParseJSONArrayWrapped(t *testing.T) {
	p, err := sprite.New(4)
	if err != nil {
		t.Fatal(err)
	}
	tool := sprite.DefaultTool().WithColor(color.NRGBA{255, 0, 0, 255})
	p.BeginStroke(image.Pt(0, 0), tool)
	p.EndStroke()

	data, err := ToJSON(p, true)
	if err != nil {
		t.Fatal(err)
	}
	wrapped := append(append([]byte("[\n"), data...), []byte("\n]")...)

	got, err := ParseJSON(wrapped)
	if err != nil {
		t.Fatalf("ParseJSON(array): %v", err)
	}
	cur, _ := got.Current(0)
	if c := cur.Pixel(0, 0); c.R != 255 || c.A != 255 {
		t.Errorf("pixel (0, 0) = %v, want red", c)
	}
}

func TestParseJSONCorrupt(t *testing.T) {
	blank, err := sprite.NewBuffer(4)
	if err != nil {
		t.Fatal(err)
	}
	pngData, err := blank.PNG()
	if err != nil {
		t.Fatal(err)
	}
	good := base64.StdEncoding.EncodeToString(pngData)

	tests := []struct {
		name string
		doc  string
	}{
		{"empty input", ``},
		{"not json", `hello`},
		{"empty object", `{}`},
		{"null document", `{"Animation Frames": null}`},
		{"empty array", `[]`},
		{"missing size", `{"Animation Frames": {"fps": 2, "frames": ["` + good + `"]}}`},
		{"missing fps", `{"Animation Frames": {"size": 4, "frames": ["` + good + `"]}}`},
		{"missing frames", `{"Animation Frames": {"size": 4, "fps": 2}}`},
		{"no frames", `{"Animation Frames": {"size": 4, "fps": 2, "frames": []}}`},
		{"string size", `{"Animation Frames": {"size": "4", "fps": 2, "frames": ["` + good + `"]}}`},
		{"size too large", `{"Animation Frames": {"size": 64, "fps": 2, "frames": ["` + good + `"]}}`},
		{"zero fps", `{"Animation Frames": {"size": 4, "fps": 0, "frames": ["` + good + `"]}}`},
		{"bad base64", `{"Animation Frames": {"size": 4, "fps": 2, "frames": ["!!!"]}}`},
		{"not a png", `{"Animation Frames": {"size": 4, "fps": 2, "frames": ["aGVsbG8="]}}`},
		{"size mismatch", `{"Animation Frames": {"size": 8, "fps": 2, "frames": ["` + good + `"]}}`},
		{"one bad frame", `{"Animation Frames": {"size": 4, "fps": 2, "frames": ["` + good + `", "AAAA"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseJSON([]byte(tt.doc))
			if !errors.Is(err, sprite.ErrCorruptFile) {
				t.Errorf("got err %v, want ErrCorruptFile", err)
			}
			if p != nil {
				t.Error("returned a partial project")
			}
		})
	}
}

func TestReadWriteStream(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := randomProject(t, rng, 8, 2)

	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Error("document does not end with a newline")
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.FrameCount() != 2 {
		t.Errorf("frame count = %d, want 2", got.FrameCount())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteFailure(t *testing.T) {
	p, _ := sprite.New(4)
	if err := Write(failingWriter{}, p); !errors.Is(err, sprite.ErrIOFailure) {
		t.Errorf("got %v, want ErrIOFailure", err)
	}
}
