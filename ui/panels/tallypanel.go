package panels

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"artwork-sequencer/internal/app"
	"artwork-sequencer/internal/report"
)

// TallyPanel shows how many copies of each artwork the open document needs.
type TallyPanel struct {
	state     *app.State
	container fyne.CanvasObject

	summary *widget.Label
	counts  *widget.Label
	now     func() time.Time
}

// NewTallyPanel creates a tally panel.
func NewTallyPanel(state *app.State) *TallyPanel {
	tp := &TallyPanel{state: state, now: time.Now}
	tp.summary = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	tp.counts = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})
	tp.container = container.NewBorder(tp.summary, nil, nil, nil, container.NewVScroll(tp.counts))
	tp.Update()
	return tp
}

// Container returns the panel container.
func (tp *TallyPanel) Container() fyne.CanvasObject {
	return tp.container
}

// Update recounts the open document.
func (tp *TallyPanel) Update() {
	t, err := tp.state.Tally()
	if err != nil {
		tp.summary.SetText("No project open")
		tp.counts.SetText("")
		return
	}
	tp.summary.SetText(fmt.Sprintf("%d lamp posts, %d artwork copies", t.Placements, t.TotalCopies()))
	tp.counts.SetText(report.Text(t, tp.now()))
}
