package tray

import (
	"errors"
	"sync"
)

var errFakePlatform = errors.New("fake platform failure")

type fakeMenu struct {
	entries []MenuEntry
}

func (m *fakeMenu) Len() int { return len(m.entries) }

// fakePlatform records every tray the controller creates.
type fakePlatform struct {
	mu sync.Mutex

	titleOnly bool
	icon      []byte

	menuErr       error
	trayErr       error
	failSetTitle  bool
	panicSetTitle bool

	menusBuilt int
	removed    int
	handles    []*fakeHandle
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{icon: []byte{0x89, 'P', 'N', 'G'}}
}

func (p *fakePlatform) NewMenu(entries []MenuEntry) (NativeMenu, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.menuErr != nil {
		return nil, p.menuErr
	}
	p.menusBuilt++
	return &fakeMenu{entries: entries}, nil
}

func (p *fakePlatform) NewTray(opts TrayOptions) (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trayErr != nil {
		return nil, p.trayErr
	}
	h := &fakeHandle{p: p, opts: opts, title: opts.Title}
	p.handles = append(p.handles, h)
	return h, nil
}

func (p *fakePlatform) TitleOnly() bool { return p.titleOnly }
func (p *fakePlatform) Icon() []byte    { return p.icon }

func (p *fakePlatform) Remove() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed++
}

func (p *fakePlatform) setFailSetTitle(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failSetTitle = fail
}

// live returns the handles that have not been released.
func (p *fakePlatform) live() []*fakeHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*fakeHandle
	for _, h := range p.handles {
		if !h.released {
			out = append(out, h)
		}
	}
	return out
}

type fakeHandle struct {
	p        *fakePlatform
	opts     TrayOptions
	title    string
	released bool
}

func (h *fakeHandle) SetTitle(title string) error {
	if h.p.panicSetTitle {
		panic("platform crashed")
	}
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	if h.p.failSetTitle || h.released {
		return errFakePlatform
	}
	h.title = title
	return nil
}

func (h *fakeHandle) Release() {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	h.released = true
}

type fakeWindow struct {
	visible  bool
	shows    int
	hides    int
	focuses  int
	focusErr error
}

func (w *fakeWindow) Show() {
	w.shows++
	w.visible = true
}

func (w *fakeWindow) Hide() {
	w.hides++
	w.visible = false
}

func (w *fakeWindow) Focus() error {
	w.focuses++
	return w.focusErr
}

// fakeWindows holds at most the main window; nil means not created yet.
type fakeWindows struct {
	main *fakeWindow
}

func (f *fakeWindows) Window(name string) (Window, bool) {
	if name != MainWindow || f.main == nil {
		return nil, false
	}
	return f.main, true
}

type countingRecorder struct {
	mu       sync.Mutex
	paths    map[string]int
	rebuilds int
	events   map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{paths: map[string]int{}, events: map[string]int{}}
}

func (r *countingRecorder) TitleUpdate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[path]++
}

func (r *countingRecorder) Rebuild() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rebuilds++
}

func (r *countingRecorder) Event(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[kind]++
}

// exitRecorder captures quit calls instead of terminating the test binary.
type exitRecorder struct {
	codes []int
}

func (e *exitRecorder) exit(code int) {
	e.codes = append(e.codes, code)
}
