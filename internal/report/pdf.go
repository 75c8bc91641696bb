package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"artwork-sequencer/internal/sequence"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions adds optional content to the summary sheet.
type PDFOptions struct {
	// Composite is a PNG of the rendered document, placed under the table.
	Composite []byte
}

// WritePDF writes a one-page A4 summary sheet: metadata, the requirements
// table and, when given, the composite image.
func WritePDF(w io.Writer, t Tally, generated time.Time, opts PDFOptions) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle(Title, false)
	p.SetCreationDate(generated)
	p.SetCompression(true)
	p.AddPage()

	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(0, 10, Title, "", 1, "L", false, 0, "")
	p.SetDrawColor(0, 0, 0)
	p.SetLineWidth(0.5)
	x, y := p.GetXY()
	pageW, _ := p.GetPageSize()
	left, _, right, _ := p.GetMargins()
	p.Line(x, y, pageW-right, y)
	p.Ln(3)

	p.SetFont("Helvetica", "", 11)
	meta := [][2]string{
		{"Generated:", generated.Format(TimeLayout)},
		{"Road Type:", t.Mode.Title()},
		{"Use Pictures:", yesNo(t.UseImages)},
		{"Unique Artworks:", strconv.Itoa(t.ArtworkCount)},
	}
	if t.Mode == sequence.TwoWay {
		meta = append(meta,
			[2]string{"Side 1 Lamp Posts:", strconv.Itoa(t.Side1Posts)},
			[2]string{"Side 2 Lamp Posts:", strconv.Itoa(t.Side2Posts)})
	}
	meta = append(meta, [2]string{"Total Lamp Posts:", strconv.Itoa(t.TotalPosts())})
	for _, m := range meta {
		p.CellFormat(45, 6, m[0], "", 0, "L", false, 0, "")
		p.SetFont("Helvetica", "B", 11)
		p.CellFormat(0, 6, m[1], "", 1, "L", false, 0, "")
		p.SetFont("Helvetica", "", 11)
	}
	p.Ln(4)

	twoWay := t.Mode == sequence.TwoWay
	header := []string{"Artwork", "Name", "Copies"}
	widths := []float64{25, 85, 25}
	if twoWay {
		header = append(header, "Side 1", "Side 2")
		widths = []float64{25, 65, 25, 25, 25}
	}
	p.SetFont("Helvetica", "B", 11)
	p.SetFillColor(230, 230, 230)
	for i, h := range header {
		p.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	p.Ln(-1)
	p.SetFont("Helvetica", "", 11)
	for _, c := range t.Counts {
		name := c.Name
		if name == "" {
			name = "-"
		}
		cells := []string{"#" + strconv.Itoa(c.Artwork), name, strconv.Itoa(c.Total())}
		if twoWay {
			cells = append(cells, strconv.Itoa(c.Side1), strconv.Itoa(c.Side2))
		}
		for i, v := range cells {
			align := "R"
			if i == 1 {
				align = "L"
			}
			p.CellFormat(widths[i], 6, v, "1", 0, align, false, 0, "")
		}
		p.Ln(-1)
	}

	if len(opts.Composite) > 0 {
		p.Ln(6)
		info := p.RegisterImageOptionsReader("composite", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(opts.Composite))
		if p.Ok() && info != nil {
			maxW := pageW - left - right
			w, h := info.Extent()
			if w > maxW {
				h = h * maxW / w
				w = maxW
			}
			p.ImageOptions("composite", left, p.GetY(), w, h, true, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf report: %w", err)
	}
	return nil
}
