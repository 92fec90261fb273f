package app

import (
	"bytes"
	"sync"

	"github.com/energye/systray"

	"popomomo/tray"
)

// fakeBackend stands in for the systray loop. Like systray, it quits once
// per process: a Run after Quit exits immediately without becoming ready.
type fakeBackend struct {
	mu         sync.Mutex
	neverReady bool
	runs       int
	quit       chan struct{}
	quitted    bool

	title    string
	tooltip  string
	icon     []byte
	resets   int
	items    []*fakeItem
	seps     int
	onClick  func(systray.IMenu)
	onRClick func(systray.IMenu)
	onDClick func(systray.IMenu)
}

func (b *fakeBackend) Run(onReady, onExit func()) {
	b.mu.Lock()
	b.runs++
	if b.quitted {
		b.mu.Unlock()
		onExit()
		return
	}
	q := make(chan struct{})
	b.quit = q
	neverReady := b.neverReady
	b.mu.Unlock()

	if !neverReady {
		onReady()
	}
	<-q
	onExit()
}

func (b *fakeBackend) Quit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.quit != nil {
		close(b.quit)
		b.quit = nil
		b.quitted = true
	}
}

func (b *fakeBackend) SetIcon(icon []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.icon = icon
}

func (b *fakeBackend) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

func (b *fakeBackend) SetTooltip(tooltip string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tooltip = tooltip
}

func (b *fakeBackend) ResetMenu() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resets++
	b.items = nil
	b.seps = 0
}

func (b *fakeBackend) AddMenuItem(title, tooltip string) menuItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	item := &fakeItem{title: title}
	b.items = append(b.items, item)
	return item
}

func (b *fakeBackend) AddSeparator() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seps++
}

func (b *fakeBackend) SetOnClick(fn func(systray.IMenu)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onClick = fn
}

func (b *fakeBackend) SetOnRClick(fn func(systray.IMenu)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onRClick = fn
}

func (b *fakeBackend) SetOnDClick(fn func(systray.IMenu)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDClick = fn
}

func (b *fakeBackend) running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quit != nil
}

func (b *fakeBackend) snapshot() (title, tooltip string, runs int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title, b.tooltip, b.runs
}

func (b *fakeBackend) item(title string) *fakeItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, it := range b.items {
		if it.title == title {
			return it
		}
	}
	return nil
}

type fakeItem struct {
	title    string
	disabled bool
	click    func()
}

func (i *fakeItem) Click(fn func()) { i.click = fn }
func (i *fakeItem) Disable()        { i.disabled = true }

// fakeWindow records visibility changes.
type fakeWindow struct {
	mu      sync.Mutex
	visible bool
	shows   int
	hides   int
}

func (w *fakeWindow) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = true
	w.shows++
}

func (w *fakeWindow) Hide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = false
	w.hides++
}

func (w *fakeWindow) Focus() error { return nil }

func (w *fakeWindow) isVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

type fakeWindows struct {
	main *fakeWindow
}

func (f *fakeWindows) Window(name string) (tray.Window, bool) {
	if name != tray.MainWindow || f.main == nil {
		return nil, false
	}
	return f.main, true
}

// exitRecorder captures exit codes instead of terminating.
type exitRecorder struct {
	mu    sync.Mutex
	codes []int
}

func (e *exitRecorder) exit(code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes = append(e.codes, code)
}

func (e *exitRecorder) calls() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.codes...)
}

var testIcon = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// syncBuffer is a log sink safe for use from the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
