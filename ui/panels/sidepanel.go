// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"artwork-sequencer/internal/app"
	"artwork-sequencer/internal/interact"
	"artwork-sequencer/ui/canvas"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	canvas    *canvas.EditorCanvas
	container *container.AppTabs

	editorPanel *EditorPanel
	tallyPanel  *TallyPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, cvs *canvas.EditorCanvas) *SidePanel {
	sp := &SidePanel{
		state:  state,
		canvas: cvs,
	}

	sp.editorPanel = NewEditorPanel(state, cvs)
	sp.tallyPanel = NewTallyPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Artwork", sp.editorPanel.Container()),
		container.NewTabItem("Tally", sp.tallyPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.editorPanel.SetWindow(w)
}

// Sync rebuilds both panels for a new or reloaded document.
func (sp *SidePanel) Sync() {
	sp.editorPanel.Sync()
	sp.tallyPanel.Update()
}

// ShowSelection points the editor at the selected side.
func (sp *SidePanel) ShowSelection(t interact.Target, ok bool) {
	sp.editorPanel.ShowTarget(t, ok)
	if ok {
		sp.container.SelectIndex(0)
	}
}

// UpdateTally recounts after an edit.
func (sp *SidePanel) UpdateTally() {
	sp.tallyPanel.Update()
}
