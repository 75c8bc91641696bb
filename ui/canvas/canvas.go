// Package canvas provides the interactive street canvas: the base photograph
// scaled to the widget with lamp post markers drawn over it.
package canvas

import (
	"image"
	"log"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	seqimage "artwork-sequencer/internal/image"
	"artwork-sequencer/internal/interact"
	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/colorutil"
	"artwork-sequencer/pkg/geometry"
)

var (
	_ fyne.Draggable    = (*EditorCanvas)(nil)
	_ desktop.Mouseable = (*EditorCanvas)(nil)
	_ desktop.Hoverable = (*EditorCanvas)(nil)
)

// EditorCanvas shows one document and turns pointer input into edits.
// Primary press and release on empty stage places a lamp post, on a marker
// half selects it, and press-drag-release moves the marker. A secondary
// press removes the marker under the pointer. Hovering a picked artwork
// shows its preview.
type EditorCanvas struct {
	widget.BaseWidget

	raster *fynecanvas.Raster

	doc     *sequence.Document
	base    image.Image
	icons   *seqimage.IconCache
	session *interact.Session

	fit          geometry.FitMode
	markerWidth  float64
	markerHeight float64
	threshold    float64

	pressed bool
	lastPos fyne.Position

	preview    interact.Preview
	hasPreview bool

	// Callbacks
	onChanged func()
	onSelect  func(t interact.Target, ok bool)
	onError   func(err error)
}

// NewEditorCanvas creates an empty canvas.
func NewEditorCanvas() *EditorCanvas {
	ec := &EditorCanvas{
		fit:          geometry.FitStretch,
		markerWidth:  interact.DefaultMarkerWidth,
		markerHeight: interact.DefaultMarkerHeight,
		threshold:    interact.DefaultDragThreshold,
	}
	ec.raster = fynecanvas.NewRaster(ec.draw)
	ec.ExtendBaseWidget(ec)
	return ec
}

// SetDocument shows doc over base. icons supplies previews for picked
// artwork and may be nil. A nil doc clears the canvas.
func (ec *EditorCanvas) SetDocument(doc *sequence.Document, base image.Image, icons *seqimage.IconCache) {
	ec.doc = doc
	ec.base = base
	ec.icons = icons
	ec.pressed = false
	ec.hasPreview = false
	ec.session = nil
	if doc != nil {
		ec.session = interact.NewSession(doc, ec.viewport())
		ec.session.ThumbSize = ec.thumbSize
		ec.applySettings()
	}
	ec.Refresh()
}

// Session returns the interaction session, or nil without a document.
func (ec *EditorCanvas) Session() *interact.Session {
	return ec.session
}

// SetMarkerSize sets the marker size in display pixels.
func (ec *EditorCanvas) SetMarkerSize(width, height float64) {
	if width > 0 {
		ec.markerWidth = width
	}
	if height > 0 {
		ec.markerHeight = height
	}
	ec.applySettings()
	ec.Refresh()
}

// SetDragThreshold sets how far a press must travel to become a drag.
func (ec *EditorCanvas) SetDragThreshold(px float64) {
	if px > 0 {
		ec.threshold = px
	}
	ec.applySettings()
}

// SetFitMode changes how the photograph fills the canvas.
func (ec *EditorCanvas) SetFitMode(mode geometry.FitMode) {
	ec.fit = mode
	ec.updateViewport()
	ec.Refresh()
}

// FitMode returns the current fit mode.
func (ec *EditorCanvas) FitMode() geometry.FitMode {
	return ec.fit
}

// Select marks a placement side as current, e.g. from a list outside the
// canvas.
func (ec *EditorCanvas) Select(id sequence.PlacementID, side sequence.Side) error {
	if ec.session == nil {
		return nil
	}
	if err := ec.session.Select(id, side); err != nil {
		return err
	}
	ec.selectionChanged()
	ec.Refresh()
	return nil
}

// OnChanged registers a callback for edits made on the canvas.
func (ec *EditorCanvas) OnChanged(callback func()) {
	ec.onChanged = callback
}

// OnSelect registers a callback for selection changes.
func (ec *EditorCanvas) OnSelect(callback func(t interact.Target, ok bool)) {
	ec.onSelect = callback
}

// OnError registers a callback for rejected edits.
func (ec *EditorCanvas) OnError(callback func(err error)) {
	ec.onError = callback
}

// Resize updates the viewport along with the widget size.
func (ec *EditorCanvas) Resize(size fyne.Size) {
	ec.BaseWidget.Resize(size)
	ec.updateViewport()
}

// Refresh redraws the raster.
func (ec *EditorCanvas) Refresh() {
	ec.raster.Refresh()
	ec.BaseWidget.Refresh()
}

func (ec *EditorCanvas) applySettings() {
	if ec.session == nil {
		return
	}
	ec.session.Layout.Width = ec.markerWidth
	ec.session.Layout.Height = ec.markerHeight
	ec.session.Drag.Threshold = ec.threshold
}

func (ec *EditorCanvas) viewport() geometry.Viewport {
	if ec.doc == nil {
		return geometry.Viewport{}
	}
	size := ec.Size()
	stage := geometry.NewSize(float64(size.Width), float64(size.Height))
	return geometry.NewViewport(ec.doc.NaturalSize(), stage, ec.fit)
}

func (ec *EditorCanvas) updateViewport() {
	if ec.session != nil {
		ec.session.SetViewport(ec.viewport())
	}
}

func (ec *EditorCanvas) thumbSize(ch sequence.ArtworkChoice) geometry.Size {
	if ec.icons == nil {
		return geometry.Size{}
	}
	icon, err := ec.icons.Icon(ch)
	if err != nil {
		return geometry.Size{}
	}
	b := icon.Bounds()
	return geometry.NewSize(float64(b.Dx()), float64(b.Dy()))
}

func toPoint(pos fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(pos.X), float64(pos.Y))
}

// MouseDown implements desktop.Mouseable.
func (ec *EditorCanvas) MouseDown(e *desktop.MouseEvent) {
	if ec.session == nil {
		return
	}
	switch e.Button {
	case desktop.MouseButtonPrimary:
		ec.pressed = true
		ec.lastPos = e.Position
		ec.hasPreview = false
		ec.session.PointerDown(toPoint(e.Position))
	case desktop.MouseButtonSecondary:
		removed, err := ec.session.RemoveAt(toPoint(e.Position))
		if err != nil {
			ec.fail(err)
			return
		}
		if removed {
			ec.hasPreview = false
			ec.changed()
			ec.selectionChanged()
			ec.Refresh()
		}
	}
}

// MouseUp implements desktop.Mouseable.
func (ec *EditorCanvas) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		ec.release(e.Position)
	}
}

// Dragged implements fyne.Draggable.
func (ec *EditorCanvas) Dragged(e *fyne.DragEvent) {
	if ec.session == nil || !ec.pressed {
		return
	}
	ec.lastPos = e.Position
	changed, err := ec.session.PointerMove(toPoint(e.Position))
	if err != nil {
		ec.fail(err)
		return
	}
	if changed {
		ec.Refresh()
	}
}

// DragEnd implements fyne.Draggable. Drivers that deliver MouseUp after a
// drag find the gesture already finished.
func (ec *EditorCanvas) DragEnd() {
	ec.release(ec.lastPos)
}

func (ec *EditorCanvas) release(pos fyne.Position) {
	if ec.session == nil || !ec.pressed {
		return
	}
	ec.pressed = false
	out, err := ec.session.PointerUp(toPoint(pos))
	if err != nil {
		ec.fail(err)
		ec.Refresh()
		return
	}
	switch out.Gesture {
	case interact.GestureDrag:
		ec.changed()
	case interact.GestureTap:
		if out.Created {
			ec.changed()
		}
		ec.selectionChanged()
	case interact.GestureClick:
		ec.selectionChanged()
	}
	ec.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (ec *EditorCanvas) MouseIn(e *desktop.MouseEvent) {
	ec.MouseMoved(e)
}

// MouseMoved implements desktop.Hoverable.
func (ec *EditorCanvas) MouseMoved(e *desktop.MouseEvent) {
	if ec.session == nil || ec.pressed {
		return
	}
	p, ok := ec.session.Hover(toPoint(e.Position))
	if ok == ec.hasPreview && p == ec.preview {
		return
	}
	ec.preview, ec.hasPreview = p, ok
	ec.Refresh()
}

// MouseOut implements desktop.Hoverable.
func (ec *EditorCanvas) MouseOut() {
	if ec.hasPreview {
		ec.hasPreview = false
		ec.Refresh()
	}
}

func (ec *EditorCanvas) changed() {
	if ec.onChanged != nil {
		ec.onChanged()
	}
}

func (ec *EditorCanvas) selectionChanged() {
	if ec.onSelect == nil {
		return
	}
	ec.onSelect(ec.session.Selection())
}

func (ec *EditorCanvas) fail(err error) {
	log.Printf("canvas: %v", err)
	if ec.onError != nil {
		ec.onError(err)
	}
}

// draw is the raster drawing function. The raster is w x h pixels for a
// widget whose size is in display units, so display geometry is scaled by
// w / width.
func (ec *EditorCanvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(out, out.Bounds(), stageBackground)

	size := ec.Size()
	if ec.session == nil || ec.base == nil || size.Width <= 0 {
		return out
	}
	k := float64(w) / float64(size.Width)
	vp := ec.session.Viewport()
	drawBase(out, ec.base, toPixels(vp.DrawRect(), k))

	sel, hasSel := ec.session.Selection()
	for _, p := range ec.doc.Placements() {
		c := vp.ToDisplay(p.Position.ToFloat())
		for _, side := range ec.doc.Mode().Sides() {
			r := toPixels(ec.session.Layout.Half(c, side), k)
			fill, border := colorutil.Side1Fill, colorutil.Side1Border
			if side == sequence.Side2 {
				fill, border = colorutil.Side2Fill, colorutil.Side2Border
			}
			fillRect(out, r, colorutil.WithAlpha(fill, markerFillAlpha))
			strokeRect(out, r, 1, border)
			if hasSel && sel.ID == p.ID && sel.Side == side {
				strokeRect(out, r.Inset(-2), 2, selectionColor)
			}
			drawLabel(out, p.Assignment(side).Label(), r, colorutil.White, labelScale(r))
		}
	}

	if ec.hasPreview {
		var icon image.Image
		if ec.icons != nil {
			var err error
			if icon, err = ec.icons.Icon(ec.preview.Choice); err != nil {
				log.Printf("canvas: preview %s: %v", ec.preview.Choice.Path, err)
			}
		}
		drawPreview(out, icon, toPixels(ec.preview.Rect, k))
	}
	return out
}

// CreateRenderer implements fyne.Widget.
func (ec *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &editorCanvasRenderer{canvas: ec}
}

type editorCanvasRenderer struct {
	canvas *EditorCanvas
}

func (r *editorCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	r.canvas.updateViewport()
}

func (r *editorCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

func (r *editorCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *editorCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *editorCanvasRenderer) Destroy() {}
