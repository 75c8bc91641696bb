package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"artwork-sequencer/internal/app"
	"artwork-sequencer/internal/interact"
	"artwork-sequencer/internal/project"
	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/geometry"
)

func newNewCommand(ctx *commandContext) *cobra.Command {
	var (
		imagePath string
		mode      string
		artworks  int
		choices   []string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a project for a street photograph",
		Example: `  # Eight numbered artworks on a two-way road
  sequencer new --image street.jpg --mode two --artworks 8

  # Picked artwork images instead of numbers
  sequencer new --image street.jpg --artworks 3 --choice a.png --choice b.png --choice c.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			roadMode, err := sequence.ParseRoadMode(mode)
			if err != nil {
				return err
			}
			absImage, err := filepath.Abs(imagePath)
			if err != nil {
				return fmt.Errorf("resolve image path: %w", err)
			}
			absChoices := make([]string, len(choices))
			for i, c := range choices {
				if absChoices[i], err = filepath.Abs(c); err != nil {
					return fmt.Errorf("resolve choice path: %w", err)
				}
			}
			state := app.NewState(cfg)
			if err := state.NewDocument(app.Setup{
				Mode:         roadMode,
				ArtworkCount: artworks,
				UseImages:    len(choices) > 0,
				ImagePath:    absImage,
				Choices:      absChoices,
			}); err != nil {
				return err
			}
			target := strings.TrimSpace(output)
			if target == "" {
				target = strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + project.Extension
			}
			if err := state.SaveProject(target); err != nil {
				return err
			}
			doc := state.Document()
			size := doc.NaturalSize()
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s, %d artworks, %.0fx%.0f)\n",
				target, doc.Mode().Title(), doc.ArtworkCount(), size.Width, size.Height)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Street photograph")
	cmd.Flags().StringVarP(&mode, "mode", "m", "single", "Road mode: single or two")
	cmd.Flags().IntVarP(&artworks, "artworks", "n", 0, "Number of distinct artworks")
	cmd.Flags().StringArrayVar(&choices, "choice", nil, "Artwork image, once per artwork in order")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Project file (default: next to the image)")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("artworks")
	return cmd
}

func newPlaceCommand(ctx *commandContext) *cobra.Command {
	var side1, side2 string

	cmd := &cobra.Command{
		Use:   "place <project> <x> <y>",
		Short: "Add a lamp post, or reuse the one already there",
		Long: `Place finds the lamp post within the ensure radius of (x, y) in image
pixels, creating one when there is none, and optionally labels its sides.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			x, err := parseCoord("x", args[1])
			if err != nil {
				return err
			}
			y, err := parseCoord("y", args[2])
			if err != nil {
				return err
			}
			doc, err := project.OpenDocument(path)
			if err != nil {
				return err
			}
			vp := geometry.IdentityViewport(doc.NaturalSize())
			p, created, err := doc.EnsurePlacement(geometry.NewPoint2D(x, y), vp)
			if err != nil {
				return err
			}
			for _, sl := range []struct {
				side  sequence.Side
				label string
				set   bool
			}{
				{sequence.Side1, side1, cmd.Flags().Changed("side1")},
				{sequence.Side2, side2, cmd.Flags().Changed("side2")},
			} {
				if !sl.set {
					continue
				}
				a, err := parseAssignment(doc, sl.label)
				if err != nil {
					return err
				}
				if p, err = doc.SetAssignment(p.ID, sl.side, a); err != nil {
					return err
				}
			}
			if err := project.SaveDocument(path, doc); err != nil {
				return err
			}
			verb := "Reused"
			if created {
				verb = "Placed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s lamp post %d at (%d, %d): %s\n",
				verb, indexOf(doc, p.ID), p.Position.X, p.Position.Y, describe(doc, p))
			return nil
		},
	}

	cmd.Flags().StringVar(&side1, "side1", "", "Artwork for side 1 (number or choice id)")
	cmd.Flags().StringVar(&side2, "side2", "", "Artwork for side 2 (number or choice id)")
	return cmd
}

func newAssignCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <project> <post> <side> [artwork]",
		Short: "Set or clear the artwork on one side of a lamp post",
		Long: `Assign labels side 1 or 2 of lamp post <post> (1-based, in placement
order). Omit the artwork to clear the side.`,
		Example: `  sequencer assign street.artseq.json 3 2 5
  sequencer assign street.artseq.json 3 2`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := project.OpenDocument(path)
			if err != nil {
				return err
			}
			p, err := placementAt(doc, args[1])
			if err != nil {
				return err
			}
			side, err := parseSide(args[2])
			if err != nil {
				return err
			}
			label := ""
			if len(args) == 4 {
				label = args[3]
			}
			a, err := parseAssignment(doc, label)
			if err != nil {
				return err
			}
			if p, err = doc.SetAssignment(p.ID, side, a); err != nil {
				return err
			}
			if err := project.SaveDocument(path, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Lamp post %s: %s\n", args[1], describe(doc, p))
			return nil
		},
	}
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project> <post>",
		Short: "Delete a lamp post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := project.OpenDocument(path)
			if err != nil {
				return err
			}
			p, err := placementAt(doc, args[1])
			if err != nil {
				return err
			}
			if err := doc.Remove(p.ID); err != nil {
				return err
			}
			if err := project.SaveDocument(path, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed lamp post %s at (%d, %d); %d remain\n",
				args[1], p.Position.X, p.Position.Y, doc.Len())
			return nil
		},
	}
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "validate <project>",
		Short: "Check a project and optionally drop unlabelled lamp posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := project.OpenDocument(path)
			if err != nil {
				return err
			}
			unassigned, labelled := 0, 0
			for _, p := range doc.Placements() {
				if p.Unassigned() {
					unassigned++
				}
				labelled += p.AssignedCount()
			}
			out := cmd.OutOrStdout()
			size := doc.NaturalSize()
			fmt.Fprintf(out, "Project: %s\n", path)
			fmt.Fprintf(out, "Road type: %s\n", doc.Mode().Title())
			fmt.Fprintf(out, "Image: %.0fx%.0f\n", size.Width, size.Height)
			fmt.Fprintf(out, "Lamp posts: %d (%d without artwork)\n", doc.Len(), unassigned)
			fmt.Fprintf(out, "Labelled sides: %d\n", labelled)
			if prune && unassigned > 0 {
				removed := doc.PruneUnassigned()
				if err := project.SaveDocument(path, doc); err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d lamp posts\n", removed)
			}
			fmt.Fprintln(out, "Project valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Remove lamp posts with no artwork on either side")
	return cmd
}

func parseCoord(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &sequence.ValidationError{Field: name, Msg: fmt.Sprintf("%q is not a number", s)}
	}
	return v, nil
}

func parseSide(s string) (sequence.Side, error) {
	switch strings.TrimSpace(s) {
	case "1":
		return sequence.Side1, nil
	case "2":
		return sequence.Side2, nil
	default:
		return 0, &sequence.ValidationError{Field: "side", Msg: fmt.Sprintf("side must be 1 or 2, got %q", s)}
	}
}

// parseAssignment reads a side label. Numbered documents take an artwork
// number; picked-image documents take a choice id or catalog position.
// Blank clears the side.
func parseAssignment(doc *sequence.Document, label string) (sequence.Assignment, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return sequence.Empty(), nil
	}
	if doc.UseImages() {
		if _, _, ok := doc.Catalog().Lookup(label); ok {
			return sequence.Identity(label), nil
		}
		if n, err := strconv.Atoi(label); err == nil {
			if ch, ok := doc.Catalog().At(n); ok {
				return sequence.Identity(ch.ID), nil
			}
		}
		return sequence.Empty(), &sequence.ValidationError{Field: "artwork", Msg: fmt.Sprintf("no artwork choice %q", label)}
	}
	a := interact.ParseLabel(label)
	if a.IsEmpty() {
		return a, &sequence.ValidationError{Field: "artwork", Msg: fmt.Sprintf("%q is not an artwork number", label)}
	}
	return a, nil
}

// placementAt resolves a 1-based lamp post index.
func placementAt(doc *sequence.Document, s string) (sequence.Placement, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return sequence.Placement{}, &sequence.ValidationError{Field: "post", Msg: fmt.Sprintf("%q is not a lamp post number", s)}
	}
	placements := doc.Placements()
	if n < 1 || n > len(placements) {
		return sequence.Placement{}, sequence.NotFound("lamp post", s, nil)
	}
	return placements[n-1], nil
}

func indexOf(doc *sequence.Document, id sequence.PlacementID) int {
	for i, p := range doc.Placements() {
		if p.ID == id {
			return i + 1
		}
	}
	return 0
}

func describe(doc *sequence.Document, p sequence.Placement) string {
	side := func(a sequence.Assignment) string {
		if a.IsEmpty() {
			return "-"
		}
		if ch, ok := doc.Choice(a); ok && ch.Name != "" {
			return ch.Name
		}
		return a.Label()
	}
	if doc.Mode() == sequence.TwoWay {
		return fmt.Sprintf("side 1 %s, side 2 %s", side(p.Side1), side(p.Side2))
	}
	return "side 1 " + side(p.Side1)
}
