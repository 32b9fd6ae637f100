package main

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/fsnotify/fsnotify"

	"buoy/pkg/resource"
	stdnet "buoy/std/net"
)

const viewHeight = 640

// viewer holds the open document and the widgets showing it. Loads,
// width changes, and watcher reloads arrive on different goroutines,
// so the session and watch state live behind a mutex.
type viewer struct {
	mu      sync.Mutex
	session *resource.Session
	width   float64
	watched string // absolute path of the watched local file, "" for URLs

	watcher *fsnotify.Watcher
	img     *canvas.Image
	status  *widget.Label
	win     fyne.Window
	logger  *slog.Logger
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	a := app.New()
	w := a.NewWindow("buoy viewer")
	w.Resize(fyne.NewSize(1280, 720))

	blank := image.NewRGBA(image.Rect(0, 0, 1280, viewHeight))
	canvasImg := canvas.NewImageFromImage(blank)
	canvasImg.FillMode = canvas.ImageFillOriginal

	v := &viewer{
		width:  1280,
		img:    canvasImg,
		status: widget.NewLabel("Enter a file path or URL and press Enter"),
		win:    w,
		logger: logger,
	}

	if fw, err := fsnotify.NewWatcher(); err == nil {
		v.watcher = fw
		go v.watchLoop()
	} else {
		logger.Warn("file watching disabled", "err", err)
	}

	entry := widget.NewEntry()
	entry.SetPlaceHolder("page.html or https://example.com")
	entry.OnSubmitted = func(target string) {
		go v.load(target)
	}

	// Width presets, one per breakpoint.
	presets := container.NewHBox(
		widget.NewButton("Phone", func() { go v.setWidth(390) }),
		widget.NewButton("Tablet", func() { go v.setWidth(700) }),
		widget.NewButton("Desktop", func() { go v.setWidth(900) }),
		widget.NewButton("Wide", func() { go v.setWidth(1280) }),
	)

	if len(os.Args) > 1 {
		arg := os.Args[1]
		entry.SetText(arg)
		go v.load(arg)
	}

	top := container.NewBorder(nil, nil, nil, presets, entry)
	w.SetContent(container.NewBorder(top, v.status, nil, nil, canvasImg))

	// Keep focus on the entry to prevent Tab freeze with no other focusable widgets
	w.Canvas().Focus(entry)
	w.ShowAndRun()

	if v.watcher != nil {
		v.watcher.Close()
	}
	v.mu.Lock()
	if v.session != nil {
		v.session.Close()
	}
	v.mu.Unlock()
}

// load opens target and replaces the current session.
func (v *viewer) load(target string) {
	v.status.SetText("Loading " + target + "...")
	markup, err := resource.Load(target)
	if err != nil {
		v.status.SetText("Error: " + err.Error())
		return
	}

	v.mu.Lock()
	if v.session != nil {
		v.session.Close()
	}
	v.session = resource.NewSession(markup, resource.SessionConfig{
		Width:  v.width,
		Height: viewHeight,
		Logger: v.logger,
	})
	v.rewatch(target)
	width := v.width
	frame := v.session.Render()
	bp := v.session.Controller().Breakpoint()
	v.mu.Unlock()

	v.img.Image = frame
	v.img.Refresh()
	v.status.SetText(fmt.Sprintf("%s (%.0fpx, %s)", target, width, bp))
	v.win.SetTitle("buoy - " + target)
}

// setWidth resizes the viewport, letting the controller reposition
// every registered element for the new breakpoint.
func (v *viewer) setWidth(width float64) {
	v.mu.Lock()
	v.width = width
	if v.session == nil {
		v.mu.Unlock()
		return
	}
	v.session.Resize(width, viewHeight)
	frame := v.session.Render()
	bp := v.session.Controller().Breakpoint()
	v.mu.Unlock()

	v.img.Image = frame
	v.img.Refresh()
	v.status.SetText(fmt.Sprintf("%.0fpx (%s)", width, bp))
}

// rewatch points the file watcher at target's directory. Network URLs
// clear the watch. Watching the directory rather than the file keeps
// notifications working across editors that replace the file on save.
// Callers hold v.mu.
func (v *viewer) rewatch(target string) {
	if v.watcher == nil {
		return
	}
	if v.watched != "" {
		v.watcher.Remove(filepath.Dir(v.watched))
		v.watched = ""
	}
	if stdnet.IsNetworkURL(target) {
		return
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return
	}
	if err := v.watcher.Add(filepath.Dir(abs)); err != nil {
		v.logger.Warn("cannot watch file", "path", abs, "err", err)
		return
	}
	v.watched = abs
}

// watchLoop reloads the watched file once its directory settles.
func (v *viewer) watchLoop() {
	const settle = 150 * time.Millisecond
	var reload *time.Timer
	for {
		select {
		case ev, ok := <-v.watcher.Events:
			if !ok {
				return
			}
			v.mu.Lock()
			watched := v.watched
			v.mu.Unlock()
			if watched == "" || ev.Name != watched {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if reload != nil {
				reload.Stop()
			}
			reload = time.AfterFunc(settle, func() { v.load(watched) })
		case _, ok := <-v.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
