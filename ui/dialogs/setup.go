// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"artwork-sequencer/internal/app"
	seqimage "artwork-sequencer/internal/image"
	"artwork-sequencer/internal/sequence"
)

var modeOptions = []string{sequence.SingleWay.Title(), sequence.TwoWay.Title()}

// SetupValues are the raw field values of the new project dialog.
type SetupValues struct {
	Mode      string
	Artworks  string
	UseImages bool
	ImagePath string
	Choices   []string
}

// BuildSetup validates v and converts it into a document setup.
func BuildSetup(v SetupValues) (app.Setup, error) {
	mode, err := parseModeTitle(v.Mode)
	if err != nil {
		return app.Setup{}, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.Artworks))
	if err != nil || n < 1 {
		return app.Setup{}, &sequence.ValidationError{Field: "numArtworks", Msg: "enter a positive number of artworks"}
	}
	if strings.TrimSpace(v.ImagePath) == "" {
		return app.Setup{}, &sequence.ValidationError{Field: "image", Msg: "choose a street photograph"}
	}
	if !seqimage.IsSupportedFormat(v.ImagePath) {
		return app.Setup{}, &sequence.ValidationError{Field: "image", Msg: fmt.Sprintf("%s is not a supported image", filepath.Base(v.ImagePath))}
	}
	setup := app.Setup{
		Mode:         mode,
		ArtworkCount: n,
		UseImages:    v.UseImages,
		ImagePath:    v.ImagePath,
	}
	if v.UseImages {
		if len(v.Choices) != n {
			return app.Setup{}, &sequence.ValidationError{
				Field: "choices",
				Msg:   fmt.Sprintf("add %d artwork images, have %d", n, len(v.Choices)),
			}
		}
		setup.Choices = append([]string(nil), v.Choices...)
	}
	return setup, nil
}

func parseModeTitle(s string) (sequence.RoadMode, error) {
	for _, m := range []sequence.RoadMode{sequence.SingleWay, sequence.TwoWay} {
		if s == m.Title() {
			return m, nil
		}
	}
	return sequence.ParseRoadMode(s)
}

// SetupDialog collects the road type, artwork count and photograph for a new
// project.
type SetupDialog struct {
	window   fyne.Window
	startDir fyne.ListableURI

	mode      *widget.Select
	artworks  *widget.Entry
	useImages *widget.Check
	imagePath *widget.Entry
	choices   []string
	choiceLbl *widget.Label
	choiceBox *fyne.Container

	onCreate func(app.Setup)
}

// NewSetupDialog creates the dialog. startDir may be nil.
func NewSetupDialog(window fyne.Window, startDir fyne.ListableURI, onCreate func(app.Setup)) *SetupDialog {
	return &SetupDialog{
		window:   window,
		startDir: startDir,
		onCreate: onCreate,
	}
}

// Show displays the dialog.
func (d *SetupDialog) Show() {
	content := d.createContent()

	dlg := dialog.NewCustomConfirm(
		"New Sequence",
		"Create",
		"Cancel",
		content,
		func(create bool) {
			if !create {
				return
			}
			setup, err := BuildSetup(d.values())
			if err != nil {
				dialog.ShowError(err, d.window)
				return
			}
			if d.onCreate != nil {
				d.onCreate(setup)
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(480, 420))
	dlg.Show()
}

func (d *SetupDialog) values() SetupValues {
	return SetupValues{
		Mode:      d.mode.Selected,
		Artworks:  d.artworks.Text,
		UseImages: d.useImages.Checked,
		ImagePath: d.imagePath.Text,
		Choices:   d.choices,
	}
}

func (d *SetupDialog) createContent() fyne.CanvasObject {
	d.mode = widget.NewSelect(modeOptions, nil)
	d.mode.SetSelected(modeOptions[0])

	d.artworks = widget.NewEntry()
	d.artworks.SetText("8")

	d.imagePath = widget.NewEntry()
	d.imagePath.SetPlaceHolder(seqimage.FileFilter())
	browse := widget.NewButton("Browse...", func() {
		d.openImage(func(path string) { d.imagePath.SetText(path) })
	})

	d.choiceLbl = widget.NewLabel("")
	d.choiceLbl.Wrapping = fyne.TextWrapWord
	d.updateChoices()
	d.choiceBox = container.NewVBox(
		d.choiceLbl,
		container.NewHBox(
			widget.NewButton("Add Artwork...", func() {
				d.openImage(func(path string) {
					d.choices = append(d.choices, path)
					d.updateChoices()
				})
			}),
			widget.NewButton("Remove Last", func() {
				if len(d.choices) > 0 {
					d.choices = d.choices[:len(d.choices)-1]
					d.updateChoices()
				}
			}),
		),
	)
	d.choiceBox.Hide()

	d.useImages = widget.NewCheck("Use pictures", func(on bool) {
		if on {
			d.choiceBox.Show()
		} else {
			d.choiceBox.Hide()
		}
	})

	form := widget.NewForm(
		widget.NewFormItem("Road type", d.mode),
		widget.NewFormItem("Artworks", d.artworks),
		widget.NewFormItem("Photograph", container.NewBorder(nil, nil, nil, browse, d.imagePath)),
		widget.NewFormItem("", d.useImages),
	)
	return container.NewVBox(form, d.choiceBox)
}

func (d *SetupDialog) updateChoices() {
	if len(d.choices) == 0 {
		d.choiceLbl.SetText("No artwork images added")
		return
	}
	names := make([]string, len(d.choices))
	for i, p := range d.choices {
		names[i] = fmt.Sprintf("%d. %s", i+1, sequence.DisplayName(p, i+1))
	}
	d.choiceLbl.SetText(strings.Join(names, "\n"))
}

func (d *SetupDialog) openImage(onPick func(path string)) {
	dlg := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		onPick(path)
	}, d.window)
	dlg.SetFilter(storage.NewExtensionFileFilter(seqimage.SupportedFormats()))
	if d.startDir != nil {
		dlg.SetLocation(d.startDir)
	}
	dlg.Show()
}
