package spritefile

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
)

// PDFOptions configures PDF contact sheet rendering. Lengths are in
// millimetres.
type PDFOptions struct {
	Title   string
	Columns int
	Cell    float64 // edge length of each frame
	Gap     float64
	Margin  float64
}

// DefaultPDFOptions returns sensible defaults for an A4 page.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Columns: 4,
		Cell:    40,
		Gap:     6,
		Margin:  15,
	}
}

// pdfImageScale enlarges frames before embedding so viewers that smooth
// images still show hard pixel edges.
const pdfImageScale = 8

// RenderPDF writes an A4 contact sheet of every frame of p, adding pages as
// needed.
func RenderPDF(p *sprite.Project, w io.Writer, opts PDFOptions) error {
	def := DefaultPDFOptions()
	if opts.Columns < 1 {
		opts.Columns = def.Columns
	}
	if opts.Cell <= 0 {
		opts.Cell = def.Cell
	}
	if opts.Gap < 0 {
		opts.Gap = def.Gap
	}
	if opts.Margin < 0 {
		opts.Margin = def.Margin
	}
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("%d frames, %dx%d, %d fps", p.FrameCount(), p.Size(), p.Size(), p.FPS())
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	_, pageH := pdf.GetPageSize()

	const titleHeight = 12.0
	const labelHeight = 5.0
	rowHeight := opts.Cell + labelHeight + opts.Gap

	y := pageH // forces a page on the first frame
	for i, b := range p.LatestBuffers() {
		col := i % opts.Columns
		if col == 0 && y+rowHeight > pageH-opts.Margin {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 14)
			pdf.Text(opts.Margin, opts.Margin+5, opts.Title)
			y = opts.Margin + titleHeight
		}
		x := opts.Margin + float64(col)*(opts.Cell+opts.Gap)

		var buf bytes.Buffer
		if err := png.Encode(&buf, Scale(b, pdfImageScale)); err != nil {
			return fmt.Errorf("encoding frame %d: %w", i, err)
		}
		name := fmt.Sprintf("frame%d", i)
		imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, imgOpts, &buf)

		pdf.SetDrawColor(153, 153, 153)
		pdf.Rect(x, y, opts.Cell, opts.Cell, "D")
		pdf.ImageOptions(name, x, y, opts.Cell, opts.Cell, false, imgOpts, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.Text(x, y+opts.Cell+labelHeight-1, fmt.Sprintf("Frame %d", i+1))

		if col == opts.Columns-1 {
			y += rowHeight
		}
	}

	if err := pdf.Output(w); err != nil {
		return err
	}
	return nil
}
