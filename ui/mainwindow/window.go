// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"artwork-sequencer/internal/app"
	"artwork-sequencer/internal/interact"
	"artwork-sequencer/internal/project"
	"artwork-sequencer/internal/version"
	"artwork-sequencer/pkg/geometry"
	"artwork-sequencer/ui/canvas"
	"artwork-sequencer/ui/dialogs"
	"artwork-sequencer/ui/panels"
	"artwork-sequencer/ui/prefs"
)

const appTitle = "Artwork Sequencer"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.EditorCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	// Menu items that need state tracking
	stretchItem *fyne.MenuItem
	containItem *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	if mode, ok := p.FitMode(); ok {
		state.FitMode = mode
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(p.WindowSize()))
	mw.SetCloseIntercept(mw.onClose)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	cfg := mw.state.Config

	mw.canvas = canvas.NewEditorCanvas()
	mw.canvas.SetFitMode(mw.state.FitMode)
	mw.canvas.SetMarkerSize(cfg.Editor.MarkerWidth, cfg.Editor.MarkerHeight)
	mw.canvas.SetDragThreshold(cfg.Editor.DragThreshold)
	mw.canvas.OnChanged(mw.state.Touch)
	mw.canvas.OnSelect(func(t interact.Target, ok bool) {
		mw.sidePanel.ShowSelection(t, ok)
		mw.state.Emit(app.EventSelectionChanged, t)
	})
	mw.canvas.OnError(func(err error) {
		mw.updateStatus(err.Error())
	})

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		mw.canvas,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Sequence...", mw.onNewProject),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Image and Report", mw.onExport),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Remove Unlabelled Lamp Posts", mw.onPrune),
		fyne.NewMenuItem("Clear All Lamp Posts", mw.onClearAll),
	)

	mw.stretchItem = fyne.NewMenuItem("Stretch to Window", func() { mw.setFitMode(geometry.FitStretch) })
	mw.containItem = fyne.NewMenuItem("Keep Aspect Ratio", func() { mw.setFitMode(geometry.FitContain) })
	mw.updateFitItems()
	viewMenu := fyne.NewMenu("View", mw.stretchItem, mw.containItem)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDocumentCreated, func(data interface{}) {
		mw.showDocument()
		mw.SetTitle(appTitle + " - New Sequence")
		mw.updateStatus("Click the photo to place lamp posts")
	})

	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		mw.showDocument()
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Project loaded: " + path)
		}
	})

	mw.state.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Saved " + path)
		}
	})

	mw.state.On(app.EventPlacementsChanged, func(data interface{}) {
		mw.sidePanel.UpdateTally()
		mw.canvas.Refresh()
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})

	mw.state.On(app.EventExported, func(data interface{}) {
		if res, ok := data.(app.ExportResult); ok {
			mw.updateStatus(fmt.Sprintf("Exported %s and %s",
				filepath.Base(res.ImagePath), filepath.Base(res.ReportPath)))
		}
	})
}

// showDocument puts the state's document on the canvas.
func (mw *MainWindow) showDocument() {
	if base := mw.state.Base; base != nil {
		mw.canvas.SetDocument(mw.state.Document(), base.Image, mw.state.Icons)
	} else {
		mw.canvas.SetDocument(nil, nil, nil)
	}
	mw.sidePanel.Sync()
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.LastDir()
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetLastDir(filePath)
}

// confirmDiscard runs next, first asking when there are unsaved edits.
func (mw *MainWindow) confirmDiscard(next func()) {
	if !mw.state.Modified {
		next()
		return
	}
	dialog.ShowConfirm("Unsaved Changes", "Discard the changes to the current sequence?", func(ok bool) {
		if ok {
			next()
		}
	}, mw.Window)
}

// Menu action handlers

func (mw *MainWindow) onNewProject() {
	mw.confirmDiscard(func() {
		dialogs.NewSetupDialog(mw.Window, mw.getLastDir(), func(setup app.Setup) {
			mw.saveLastDir(setup.ImagePath)
			if err := mw.state.NewDocument(setup); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}).Show()
	})
}

func (mw *MainWindow) onOpenProject() {
	mw.confirmDiscard(func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			reader.Close()
			path := reader.URI().Path()
			mw.saveLastDir(path)
			mw.OpenProject(path)
		}, mw.Window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{filepath.Ext(project.Extension)}))
		if loc := mw.getLastDir(); loc != nil {
			fd.SetLocation(loc)
		}
		fd.Show()
	})
}

// OpenProject loads path, reporting failures in a dialog.
func (mw *MainWindow) OpenProject(path string) {
	if err := mw.state.LoadProject(path); err != nil {
		log.Printf("Failed to load project %s: %v", path, err)
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProject() {
	if mw.state.Document() == nil {
		return
	}
	if mw.state.ProjectPath == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.state.SaveProject(mw.state.ProjectPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	if mw.state.Document() == nil {
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !strings.HasSuffix(path, project.Extension) {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + project.Extension
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	name := "sequence" + project.Extension
	if mw.state.Base != nil {
		base := filepath.Base(mw.state.Base.Path)
		name = strings.TrimSuffix(base, filepath.Ext(base)) + project.Extension
	}
	fd.SetFileName(name)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExport() {
	if mw.state.Document() == nil {
		mw.updateStatus("Nothing to export")
		return
	}
	res, err := mw.state.Export("", time.Now())
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	dialog.ShowInformation("Export Complete",
		fmt.Sprintf("Saved:\n%s\n%s", res.ImagePath, res.ReportPath), mw.Window)
}

func (mw *MainWindow) onPrune() {
	doc := mw.state.Document()
	if doc == nil {
		return
	}
	if n := doc.PruneUnassigned(); n > 0 {
		mw.sidePanel.Sync()
		mw.state.Touch()
		mw.updateStatus(fmt.Sprintf("Removed %d lamp posts", n))
	}
}

func (mw *MainWindow) onClearAll() {
	doc := mw.state.Document()
	if doc == nil || doc.Len() == 0 {
		return
	}
	dialog.ShowConfirm("Clear All", fmt.Sprintf("Remove all %d lamp posts?", doc.Len()), func(ok bool) {
		if !ok {
			return
		}
		doc.Clear()
		mw.canvas.Session().Deselect()
		mw.sidePanel.Sync()
		mw.state.Touch()
	}, mw.Window)
}

func (mw *MainWindow) setFitMode(mode geometry.FitMode) {
	mw.state.FitMode = mode
	mw.canvas.SetFitMode(mode)
	mw.prefs.SetFitMode(mode)
	mw.updateFitItems()
}

func (mw *MainWindow) updateFitItems() {
	mw.stretchItem.Checked = mw.state.FitMode == geometry.FitStretch
	mw.containItem.Checked = mw.state.FitMode == geometry.FitContain
	if menu := mw.MainMenu(); menu != nil {
		menu.Refresh()
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\n"+
			"Plan which artwork hangs on each lamp post along a street.",
			appTitle, version.String()),
		mw.Window)
}

// SavePreferences writes the window size and settings to disk.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetWindowSize(size.Width, size.Height)
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

func (mw *MainWindow) onClose() {
	mw.confirmDiscard(func() {
		mw.SavePreferences()
		mw.Close()
	})
}
