package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary is the machine-readable form of a tally.
type Summary struct {
	Generated    string     `json:"generated" yaml:"generated"`
	RoadType     string     `json:"roadType" yaml:"road_type"`
	UsePictures  bool       `json:"usePictures" yaml:"use_pictures"`
	Artworks     int        `json:"uniqueArtworks" yaml:"unique_artworks"`
	Placements   int        `json:"placements" yaml:"placements"`
	Side1Posts   int        `json:"side1LampPosts" yaml:"side1_lamp_posts"`
	Side2Posts   int        `json:"side2LampPosts,omitempty" yaml:"side2_lamp_posts,omitempty"`
	TotalPosts   int        `json:"totalLampPosts" yaml:"total_lamp_posts"`
	Requirements []CountRow `json:"requirements" yaml:"requirements"`
}

// CountRow is one artwork line of a Summary.
type CountRow struct {
	Count `yaml:",inline"`
	Total int `json:"total" yaml:"total"`
}

// NewSummary converts a tally for structured output.
func NewSummary(t Tally, generated time.Time) Summary {
	s := Summary{
		Generated:   generated.Format(TimeLayout),
		RoadType:    t.Mode.String(),
		UsePictures: t.UseImages,
		Artworks:    t.ArtworkCount,
		Placements:  t.Placements,
		Side1Posts:  t.Side1Posts,
		Side2Posts:  t.Side2Posts,
		TotalPosts:  t.TotalPosts(),
	}
	for _, c := range t.Counts {
		s.Requirements = append(s.Requirements, CountRow{Count: c, Total: c.Total()})
	}
	return s
}

// WriteYAML writes the summary as YAML.
func WriteYAML(w io.Writer, t Tally, generated time.Time) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewSummary(t, generated)); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes the summary as indented JSON.
func WriteJSON(w io.Writer, t Tally, generated time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewSummary(t, generated)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}
