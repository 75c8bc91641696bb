package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"artwork-sequencer/internal/sequence"
)

// Title heads every text report.
const Title = "Artwork SEQUENCING REPORT"

// TimeLayout formats the Generated line.
const TimeLayout = "2006-01-02T15:04:05"

// Text renders the fixed-layout plain-text report. generated is printed as
// is, so identical inputs give identical text.
func Text(t Tally, generated time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", Title)
	line("%s", strings.Repeat("=", 50))
	line("Generated: %s", generated.Format(TimeLayout))
	line("Road Type: %s", t.Mode.Title())
	line("Use Pictures: %s", yesNo(t.UseImages))
	line("Unique Artworks: %d", t.ArtworkCount)
	if t.Mode == sequence.TwoWay {
		line("Side 1 Lamp Posts: %d", t.Side1Posts)
		line("Side 2 Lamp Posts: %d", t.Side2Posts)
	}
	line("Total Lamp Posts: %d", t.TotalPosts())
	line("")
	line("Artwork Requirements:")
	line("%s", strings.Repeat("-", 50))
	for _, c := range t.Counts {
		if t.Mode == sequence.TwoWay {
			line("Artwork #%d: %d copies (Side 1: %d, Side 2: %d)", c.Artwork, c.Total(), c.Side1, c.Side2)
		} else {
			line("Artwork #%d: %d copies", c.Artwork, c.Side1)
		}
	}

	return b.String()
}

// WriteText writes the text report to w.
func WriteText(w io.Writer, t Tally, generated time.Time) error {
	_, err := io.WriteString(w, Text(t, generated))
	return err
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
