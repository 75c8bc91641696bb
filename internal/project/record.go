package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Token is an artwork identifier as it appears on the wire. Companion
// tooling writes catalog ids as JSON numbers, hand-edited files often use
// strings; both decode to the same Token.
type Token string

// UnmarshalJSON accepts a JSON string, number or null.
func (t *Token) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Token(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("artwork id must be a string or number: %w", err)
	}
	*t = Token(n.String())
	return nil
}

// MarshalJSON writes canonical integers as numbers and everything else as
// strings.
func (t Token) MarshalJSON() ([]byte, error) {
	if t.isCanonicalInt() {
		return []byte(t), nil
	}
	return json.Marshal(string(t))
}

func (t Token) isCanonicalInt() bool {
	s := string(t)
	if s == "" || (len(s) > 1 && s[0] == '0') || strings.HasPrefix(s, "-") {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// Int returns the token as an integer, if it is one.
func (t Token) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(t)))
	return n, err == nil
}

// Choice is a catalog entry on the wire.
type Choice struct {
	ID   Token  `json:"id"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// PlacementRecord is one placement on the wire. Unset sides are null.
type PlacementRecord struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	S1Num  *int   `json:"s1_num"`
	S2Num  *int   `json:"s2_num"`
	S1Icon *Token `json:"s1_icon"`
	S2Icon *Token `json:"s2_icon"`
}

// ImageSize is the natural size of the base image.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Record is the flat save/load and transfer format of a document. The base
// image is referenced by Image, never embedded.
type Record struct {
	Mode        string            `json:"mode"`
	NumArtworks int               `json:"numArtworks"`
	UseImages   bool              `json:"useImages"`
	Choices     []Choice          `json:"choices,omitempty"`
	Placements  []PlacementRecord `json:"placements"`

	Image     string     `json:"image,omitempty"`
	ImageSize *ImageSize `json:"imageSize,omitempty"`
}

// Unmarshal decodes a record from JSON.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &r, nil
}

// Marshal encodes a record as indented JSON.
func (r *Record) Marshal() ([]byte, error) {
	if r.Placements == nil {
		r.Placements = []PlacementRecord{}
	}
	return json.MarshalIndent(r, "", "  ")
}
