package sequence

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ArtworkChoice is one entry of the picked-image catalog.
type ArtworkChoice struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// Catalog is the ordered, read-only list of artworks a picked-image document
// chooses from. The 1-based position of an entry is its artwork number in
// reports.
type Catalog []ArtworkChoice

// NewCatalog builds a catalog from artwork files, numbering entries "1".."N"
// in order and deriving display names from the file names.
func NewCatalog(paths []string) Catalog {
	c := make(Catalog, len(paths))
	for i, p := range paths {
		c[i] = ArtworkChoice{ID: strconv.Itoa(i + 1), Path: p, Name: DisplayName(p, i+1)}
	}
	return c
}

// Lookup finds an entry by id and returns it with its 1-based position.
func (c Catalog) Lookup(id string) (ArtworkChoice, int, bool) {
	for i, ch := range c {
		if ch.ID == id {
			return ch, i + 1, true
		}
	}
	return ArtworkChoice{}, 0, false
}

// At returns the entry at 1-based position n.
func (c Catalog) At(n int) (ArtworkChoice, bool) {
	if n < 1 || n > len(c) {
		return ArtworkChoice{}, false
	}
	return c[n-1], true
}

// Validate checks that the catalog has exactly count entries with unique,
// non-empty ids.
func (c Catalog) Validate(count int) error {
	if len(c) != count {
		return invalidf("choices", "catalog has %d entries, want %d", len(c), count)
	}
	seen := make(map[string]struct{}, len(c))
	for i, ch := range c {
		if ch.ID == "" {
			return invalidf("choices", "entry %d has no id", i+1)
		}
		if _, dup := seen[ch.ID]; dup {
			return invalidf("choices", "duplicate id %q", ch.ID)
		}
		seen[ch.ID] = struct{}{}
	}
	return nil
}

// DisplayName turns an artwork file path into a title-cased name
// ("summer_fest-v2.png" -> "Summer Fest V2"). Falls back to "Artwork n".
func DisplayName(path string, n int) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" || path == "" {
		return "Artwork " + strconv.Itoa(n)
	}
	return cases.Title(language.Und).String(name)
}
