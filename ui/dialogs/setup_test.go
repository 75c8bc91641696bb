package dialogs

import (
	"errors"
	"testing"

	"artwork-sequencer/internal/sequence"
)

func TestBuildSetup(t *testing.T) {
	setup, err := BuildSetup(SetupValues{
		Mode:      "Two Way",
		Artworks:  " 3 ",
		ImagePath: "/photos/street.JPG",
	})
	if err != nil {
		t.Fatalf("BuildSetup: %v", err)
	}
	if setup.Mode != sequence.TwoWay || setup.ArtworkCount != 3 || setup.UseImages || setup.Choices != nil {
		t.Fatalf("unexpected setup %+v", setup)
	}

	setup, err = BuildSetup(SetupValues{
		Mode:      "single",
		Artworks:  "2",
		UseImages: true,
		ImagePath: "street.png",
		Choices:   []string{"a.png", "b.png"},
	})
	if err != nil {
		t.Fatalf("BuildSetup with pictures: %v", err)
	}
	if setup.Mode != sequence.SingleWay || len(setup.Choices) != 2 {
		t.Fatalf("unexpected setup %+v", setup)
	}
}

func TestBuildSetupRejects(t *testing.T) {
	cases := []struct {
		name string
		v    SetupValues
	}{
		{"unknown mode", SetupValues{Mode: "Roundabout", Artworks: "2", ImagePath: "a.png"}},
		{"zero artworks", SetupValues{Mode: "Single Way", Artworks: "0", ImagePath: "a.png"}},
		{"not a number", SetupValues{Mode: "Single Way", Artworks: "many", ImagePath: "a.png"}},
		{"no image", SetupValues{Mode: "Single Way", Artworks: "2"}},
		{"unsupported image", SetupValues{Mode: "Single Way", Artworks: "2", ImagePath: "notes.txt"}},
		{"too few pictures", SetupValues{Mode: "Single Way", Artworks: "2", ImagePath: "a.png", UseImages: true, Choices: []string{"x.png"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BuildSetup(tc.v); !errors.Is(err, sequence.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
