// Command sprite is a CLI tool for working with sprite animation projects.
package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
	"github.com/ha1tch/sprite-toolkit/pkg/spritefile"
)

const usage = `sprite - sprite animation toolkit

Usage:
  sprite <command> [options]

Commands:
  new        Create a blank project
  info       Show project information
  validate   Validate a project file
  convert    Rewrite a project file in the current layout
  import     Build a project from image files
  sheet      Render a PNG contact sheet
  gif        Render an animated GIF
  pdf        Render a PDF contact sheet
  frames     Export every frame as a PNG

Examples:
  sprite new walk.json -s 16 -n 4
  sprite convert old.json -o walk.json
  sprite import f1.png f2.png -o walk.json --fps 8
  sprite sheet walk.json -c 4 -s 8
  sprite gif walk.json -s 10
  sprite frames walk.json -d out/

Use "sprite <command> -h" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "new":
		cmdNew(args)
	case "info":
		cmdInfo(args)
	case "validate":
		cmdValidate(args)
	case "convert":
		cmdConvert(args)
	case "import":
		cmdImport(args)
	case "sheet":
		cmdSheet(args)
	case "gif":
		cmdGIF(args)
	case "pdf":
		cmdPDF(args)
	case "frames":
		cmdFrames(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func wantsHelp(args []string) bool {
	return len(args) < 1 || args[0] == "-h" || args[0] == "--help"
}

// intValue parses the value following a flag, exiting on bad input.
func intValue(flag, value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid value for %s: %q\n", flag, value)
		os.Exit(1)
	}
	return n
}

// outputPath replaces the extension of input with ext.
func outputPath(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func cmdNew(args []string) {
	if wantsHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sprite new <output> [-s size] [-f fps] [-n frames] [--fill color]")
		os.Exit(1)
	}

	output := args[0]
	size, fps, frames := 32, sprite.DefaultFPS, 1
	var fill string

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-s", "--size":
			if i+1 < len(args) {
				size = intValue(args[i], args[i+1])
				i++
			}
		case "-f", "--fps":
			if i+1 < len(args) {
				fps = intValue(args[i], args[i+1])
				i++
			}
		case "-n", "--frames":
			if i+1 < len(args) {
				frames = intValue(args[i], args[i+1])
				i++
			}
		case "--fill":
			if i+1 < len(args) {
				fill = args[i+1]
				i++
			}
		}
	}

	p, err := newProject(size, fps, frames, fill)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating project: %v\n", err)
		os.Exit(1)
	}
	if err := spritefile.WriteFile(output, p); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}
	fmt.Printf("Written: %s\n", output)
}

// newProject builds a project of frames identical frames, optionally filled
// with a colour.
func newProject(size, fps, frames int, fill string) (*sprite.Project, error) {
	if frames < 1 {
		return nil, fmt.Errorf("%w: frame count %d", sprite.ErrOutOfRange, frames)
	}
	base, err := sprite.NewBuffer(size)
	if err != nil {
		return nil, err
	}
	if fill != "" {
		c, err := sprite.ParseColor(fill)
		if err != nil {
			return nil, err
		}
		base.Fill(c)
	}
	bufs := make([]*sprite.Buffer, frames)
	for i := range bufs {
		bufs[i] = base.Clone()
	}
	return sprite.FromBuffers(size, fps, bufs)
}

func cmdInfo(args []string) {
	if wantsHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sprite info <input>")
		os.Exit(1)
	}

	input := args[0]
	p, err := spritefile.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}
	fmt.Print(describe(p))
}

// describe summarises a project, one frame per line.
func describe(p *sprite.Project) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Size:        %dx%d\n", p.Size(), p.Size())
	fmt.Fprintf(&sb, "FPS:         %d\n", p.FPS())
	fmt.Fprintf(&sb, "Frames:      %d\n", p.FrameCount())
	fmt.Fprintf(&sb, "Duration:    %v\n", sprite.Interval(p.FPS())*time.Duration(p.FrameCount()))
	sb.WriteString("\n")
	for i, b := range p.LatestBuffers() {
		fmt.Fprintf(&sb, "  %3d: %s\n", i+1, frameSummary(b))
	}
	return sb.String()
}

// frameSummary counts the painted pixels of b and its distinct colours.
func frameSummary(b *sprite.Buffer) string {
	if b.IsBlank() {
		return "blank"
	}
	painted := 0
	colors := make(map[string]bool)
	for y := 0; y < b.Size(); y++ {
		for x := 0; x < b.Size(); x++ {
			c := b.Pixel(x, y)
			if c.A == 0 {
				continue
			}
			painted++
			colors[sprite.FormatColor(c)] = true
		}
	}
	return fmt.Sprintf("%d pixels, %d colours", painted, len(colors))
}

func cmdValidate(args []string) {
	if wantsHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sprite validate <input>")
		os.Exit(1)
	}

	input := args[0]
	p, err := spritefile.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: valid %dx%d project with %d frames at %d fps\n",
		input, p.Size(), p.Size(), p.FrameCount(), p.FPS())
}

func cmdConvert(args []string) {
	if wantsHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sprite convert <input> [-o output] [--compact] [--fps n]")
		os.Exit(1)
	}

	input := args[0]
	output := input
	compact := false
	fps := 0

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "--compact":
			compact = true
		case "--fps":
			if i+1 < len(args) {
				fps = intValue(args[i], args[i+1])
				i++
			}
		}
	}

	p, err := spritefile.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}
	if fps != 0 {
		if err := p.SetFPS(fps); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if compact {
		data, err := spritefile.ToJSON(p, false)
		if err == nil {
			err = os.WriteFile(output, append(data, '\n'), 0644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
			os.Exit(1)
		}
	} else if err := spritefile.WriteFile(output, p); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}
	fmt.Printf("Written: %s\n", output)
}

func cmdImport(args []string) {
	if wantsHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sprite import <image>... -o output [--fps n]")
		os.Exit(1)
	}

	var inputs []string
	var output string
	fps := sprite.DefaultFPS

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "-f", "--fps":
			if i+1 < len(args) {
				fps = intValue(args[i], args[i+1])
				i++
			}
		default:
			inputs = append(inputs, args[i])
		}
	}
	if output == "" || len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "import needs at least one image and -o output")
		os.Exit(1)
	}

	p, err := importImages(inputs, fps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		os.Exit(1)
	}
	if err := spritefile.WriteFile(output, p); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}
	fmt.Printf("Written: %s (%d frames)\n", output, p.FrameCount())
}

// importImages decodes each path as one frame. All images must be square
// and share a size.
func importImages(paths []string, fps int) (*sprite.Project, error) {
	bufs := make([]*sprite.Buffer, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", path, sprite.ErrCorruptFile, err)
		}
		b, err := sprite.BufferFromImage(img)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		bufs = append(bufs, b)
	}
	return sprite.FromBuffers(bufs[0].Size(), fps, bufs)
}

func cmdSheet(args []string) {
	if wantsHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sprite sheet <input> [-o output] [-c columns] [-s scale] [-p padding] [--no-labels] [--no-checker]")
		os.Exit(1)
	}

	input := args[0]
	output := outputPath(input, "_sheet.png")
	opts := spritefile.DefaultSheetOptions()

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "-c", "--columns":
			if i+1 < len(args) {
				opts.Columns = intValue(args[i], args[i+1])
				i++
			}
		case "-s", "--scale":
			if i+1 < len(args) {
				opts.Scale = intValue(args[i], args[i+1])
				i++
			}
		case "-p", "--padding":
			if i+1 < len(args) {
				opts.Padding = intValue(args[i], args[i+1])
				i++
			}
		case "--no-labels":
			opts.Labels = false
		case "--no-checker":
			opts.Checker = false
		}
	}

	p := mustLoad(input)
	writeRendered(output, func(f *os.File) error {
		return spritefile.RenderSheet(p, f, opts)
	})
}

func cmdGIF(args []string) {
	if wantsHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sprite gif <input> [-o output] [-s scale]")
		os.Exit(1)
	}

	input := args[0]
	output := outputPath(input, ".gif")
	scale := 8

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "-s", "--scale":
			if i+1 < len(args) {
				scale = intValue(args[i], args[i+1])
				i++
			}
		}
	}

	p := mustLoad(input)
	writeRendered(output, func(f *os.File) error {
		return spritefile.RenderGIF(p, f, scale)
	})
}

func cmdPDF(args []string) {
	if wantsHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sprite pdf <input> [-o output] [-t title] [-c columns]")
		os.Exit(1)
	}

	input := args[0]
	output := outputPath(input, ".pdf")
	opts := spritefile.DefaultPDFOptions()

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "-t", "--title":
			if i+1 < len(args) {
				opts.Title = args[i+1]
				i++
			}
		case "-c", "--columns":
			if i+1 < len(args) {
				opts.Columns = intValue(args[i], args[i+1])
				i++
			}
		}
	}

	p := mustLoad(input)
	writeRendered(output, func(f *os.File) error {
		return spritefile.RenderPDF(p, f, opts)
	})
}

func cmdFrames(args []string) {
	if wantsHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sprite frames <input> [-d dir] [-p prefix] [-s scale]")
		os.Exit(1)
	}

	input := args[0]
	dir := "."
	prefix := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	scale := 1

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-d", "--dir":
			if i+1 < len(args) {
				dir = args[i+1]
				i++
			}
		case "-p", "--prefix":
			if i+1 < len(args) {
				prefix = args[i+1]
				i++
			}
		case "-s", "--scale":
			if i+1 < len(args) {
				scale = intValue(args[i], args[i+1])
				i++
			}
		}
	}

	p := mustLoad(input)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dir, err)
		os.Exit(1)
	}
	paths, err := spritefile.ExportFrames(p, dir, prefix, scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting frames: %v\n", err)
		os.Exit(1)
	}
	for _, path := range paths {
		fmt.Printf("Written: %s\n", path)
	}
}

func mustLoad(path string) *sprite.Project {
	p, err := spritefile.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
		os.Exit(1)
	}
	return p
}

// writeRendered creates output and fills it with render.
func writeRendered(output string, render func(*os.File) error) {
	f, err := os.Create(output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", output, err)
		os.Exit(1)
	}
	if err := render(f); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error rendering %s: %v\n", output, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}
	fmt.Printf("Written: %s\n", output)
}
