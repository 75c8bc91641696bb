package panels

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"artwork-sequencer/internal/app"
	"artwork-sequencer/internal/interact"
	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/ui/canvas"
)

// EditorPanel edits the artwork on the selected side of a lamp post. Numbered
// documents get a number entry; picked-image documents get a list of the
// catalog.
type EditorPanel struct {
	state  *app.State
	canvas *canvas.EditorCanvas
	window fyne.Window

	container *fyne.Container
	title     *widget.Label
	hint      *widget.Label

	numeric *fyne.Container
	entry   *widget.Entry

	picker  *fyne.Container
	choices *widget.List
	items   []sequence.ArtworkChoice
	picked  widget.ListItemID

	clearBtn *widget.Button

	syncing bool
}

// NewEditorPanel creates the panel for cvs.
func NewEditorPanel(state *app.State, cvs *canvas.EditorCanvas) *EditorPanel {
	ep := &EditorPanel{state: state, canvas: cvs, picked: -1}

	ep.title = widget.NewLabelWithStyle("No lamp post selected", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ep.hint = widget.NewLabel("Click the photo to place a lamp post.\nDrag a marker to move it, right-click to remove it.")
	ep.hint.Wrapping = fyne.TextWrapWord

	ep.entry = widget.NewEntry()
	ep.entry.SetPlaceHolder("Artwork number")
	ep.entry.OnChanged = func(text string) {
		if s := ep.session(); s != nil && !ep.syncing {
			s.Editor.SetText(text)
		}
	}
	ep.entry.OnSubmitted = func(string) { ep.confirm() }
	ep.numeric = container.NewVBox(
		ep.entry,
		widget.NewButton("Set", ep.confirm),
	)

	ep.choices = widget.NewList(
		func() int { return len(ep.items) },
		func() fyne.CanvasObject { return widget.NewLabel("artwork name") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			ch := ep.items[id]
			obj.(*widget.Label).SetText(fmt.Sprintf("%d. %s", id+1, ch.Name))
		},
	)
	ep.choices.OnSelected = func(id widget.ListItemID) {
		ep.picked = id
		if !ep.syncing {
			ep.pick(id)
		}
	}
	ep.picker = container.NewGridWrap(fyne.NewSize(220, 260), ep.choices)

	ep.clearBtn = widget.NewButton("Clear Side", ep.clear)

	ep.container = container.NewVBox(
		ep.title,
		ep.hint,
		widget.NewSeparator(),
		ep.numeric,
		ep.picker,
		ep.clearBtn,
	)
	ep.Sync()
	return ep
}

// Container returns the panel container.
func (ep *EditorPanel) Container() fyne.CanvasObject {
	return ep.container
}

// SetWindow sets the parent window for error dialogs.
func (ep *EditorPanel) SetWindow(w fyne.Window) {
	ep.window = w
}

func (ep *EditorPanel) session() *interact.Session {
	return ep.canvas.Session()
}

// Sync rebuilds the panel for the current document.
func (ep *EditorPanel) Sync() {
	ep.items = nil
	doc := ep.state.Document()
	if doc != nil && doc.UseImages() {
		for n := 1; n <= doc.ArtworkCount(); n++ {
			if ch, ok := doc.Catalog().At(n); ok {
				ep.items = append(ep.items, ch)
			}
		}
	}
	ep.choices.Refresh()
	if s := ep.session(); s != nil {
		ep.ShowTarget(s.Selection())
		return
	}
	ep.ShowTarget(interact.Target{}, false)
}

// ShowTarget points the panel at side t of a placement.
func (ep *EditorPanel) ShowTarget(t interact.Target, ok bool) {
	ep.syncing = true
	defer func() { ep.syncing = false }()

	s := ep.session()
	if s == nil || !ok {
		ep.title.SetText("No lamp post selected")
		ep.numeric.Hide()
		ep.picker.Hide()
		ep.clearBtn.Disable()
		ep.selectItem(-1)
		return
	}
	ep.title.SetText(fmt.Sprintf("Lamp post %d, side %d", ep.indexOf(t.ID), t.Side))
	ep.clearBtn.Enable()

	if s.Editor.Kind() == interact.PickerEditor {
		ep.numeric.Hide()
		ep.picker.Show()
		want := widget.ListItemID(-1)
		if p, found := s.Doc.Get(t.ID); found {
			if ref, isRef := p.Assignment(t.Side).Ref(); isRef {
				if _, n, known := s.Doc.Catalog().Lookup(ref); known {
					want = n - 1
				}
			}
		}
		ep.selectItem(want)
		return
	}
	ep.picker.Hide()
	ep.numeric.Show()
	ep.entry.SetText(s.Editor.Text())
}

// selectItem moves the list selection without triggering a pick.
func (ep *EditorPanel) selectItem(id widget.ListItemID) {
	if id == ep.picked {
		return
	}
	if id < 0 {
		ep.choices.UnselectAll()
	} else {
		ep.choices.Select(id)
	}
	ep.picked = id
}

func (ep *EditorPanel) indexOf(id sequence.PlacementID) int {
	for i, p := range ep.state.Document().Placements() {
		if p.ID == id {
			return i + 1
		}
	}
	return 0
}

func (ep *EditorPanel) confirm() {
	s := ep.session()
	if s == nil {
		return
	}
	t, open := s.Editor.Target()
	if !open {
		return
	}
	s.Editor.SetText(ep.entry.Text)
	if _, err := s.Editor.Confirm(); err != nil {
		ep.showError(err)
		return
	}
	ep.edited(t)
}

func (ep *EditorPanel) pick(id widget.ListItemID) {
	s := ep.session()
	if s == nil || id < 0 || id >= len(ep.items) {
		return
	}
	t, open := s.Editor.Target()
	if !open {
		return
	}
	if _, err := s.Editor.Pick(ep.items[id].ID); err != nil {
		ep.showError(err)
		return
	}
	ep.edited(t)
}

func (ep *EditorPanel) clear() {
	s := ep.session()
	if s == nil {
		return
	}
	t, open := s.Editor.Target()
	if !open {
		return
	}
	if _, err := s.Editor.Clear(); err != nil {
		ep.showError(err)
		return
	}
	ep.edited(t)
}

// edited reopens the editor on t so the side stays selected after a commit.
func (ep *EditorPanel) edited(t interact.Target) {
	if err := ep.canvas.Select(t.ID, t.Side); err != nil {
		log.Printf("Reselect lamp post: %v", err)
	}
	ep.canvas.Refresh()
	ep.state.Touch()
}

func (ep *EditorPanel) showError(err error) {
	log.Printf("Edit rejected: %v", err)
	if ep.window != nil {
		dialog.ShowError(err, ep.window)
	}
}
