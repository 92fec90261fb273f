package tray

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const initialTitle = "● 25:00"

func newTestController(t *testing.T, p *fakePlatform, opts ...Option) *Controller {
	t.Helper()
	c := NewController(p, &fakeWindows{main: &fakeWindow{}}, opts...)
	require.NoError(t, c.Setup(initialTitle))
	return c
}

func TestSetupInstallsSingleTray(t *testing.T) {
	p := newFakePlatform()
	c := newTestController(t, p)

	live := p.live()
	require.Len(t, live, 1)
	assert.Equal(t, TrayID, live[0].opts.ID)
	assert.Equal(t, initialTitle, live[0].opts.Title)
	assert.Equal(t, initialTitle, live[0].opts.Tooltip)
	assert.Equal(t, 4, live[0].opts.Menu.Len())
	assert.NotNil(t, live[0].opts.OnEvent)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{ID: TrayID, Title: initialTitle, Tooltip: initialTitle, HasIcon: true, Live: true}, snap)
}

func TestSetupTwiceFails(t *testing.T) {
	p := newFakePlatform()
	c := newTestController(t, p)

	err := c.Setup("again")
	require.ErrorIs(t, err, ErrAlreadyInstalled)
	assert.Len(t, p.live(), 1)
}

func TestSetupIconRules(t *testing.T) {
	tests := []struct {
		name      string
		titleOnly bool
		icon      []byte
		wantErr   error
		wantIcon  bool
	}{
		{"title-only platform without icon", true, nil, nil, false},
		{"title-only platform ignores icon", true, []byte{1}, nil, false},
		{"icon platform with icon", false, []byte{1}, nil, true},
		{"icon platform without icon", false, nil, ErrIconRequired, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakePlatform()
			p.titleOnly = tt.titleOnly
			p.icon = tt.icon
			c := NewController(p, &fakeWindows{})

			err := c.Setup(initialTitle)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, ErrConstruction)
				assert.Empty(t, p.live())
				return
			}
			require.NoError(t, err)
			snap, err := c.Snapshot()
			require.NoError(t, err)
			assert.Equal(t, tt.wantIcon, snap.HasIcon)
		})
	}
}

func TestSetupConstructionFailure(t *testing.T) {
	p := newFakePlatform()
	p.trayErr = errFakePlatform
	c := NewController(p, &fakeWindows{})

	err := c.Setup(initialTitle)
	require.ErrorIs(t, err, ErrConstruction)
	require.ErrorIs(t, err, errFakePlatform)
}

func TestUpdateTitleBeforeSetupIsNoop(t *testing.T) {
	p := newFakePlatform()
	rec := newCountingRecorder()
	c := NewController(p, &fakeWindows{}, WithRecorder(rec))

	require.NoError(t, c.UpdateTitle("● 24:59"))
	assert.Empty(t, p.handles)
	assert.Equal(t, 1, rec.paths[PathNoop])
}

func TestUpdateTitleInPlace(t *testing.T) {
	p := newFakePlatform()
	rec := newCountingRecorder()
	c := newTestController(t, p, WithRecorder(rec))

	require.NoError(t, c.UpdateTitle("▶ ● 24:59"))

	live := p.live()
	require.Len(t, live, 1)
	assert.Equal(t, "▶ ● 24:59", live[0].title)
	assert.Equal(t, 1, rec.paths[PathInPlace])
	assert.Zero(t, rec.rebuilds)
	assert.Equal(t, 1, p.menusBuilt)
}

// The in-place path changes only the title; the tooltip keeps the value set
// when the icon was created.
func TestUpdateTitleInPlaceKeepsTooltip(t *testing.T) {
	p := newFakePlatform()
	c := NewController(p, &fakeWindows{})
	require.NoError(t, c.Setup("A"))

	require.NoError(t, c.UpdateTitle("B"))

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "B", snap.Title)
	assert.Equal(t, "A", snap.Tooltip)
}

func TestUpdateTitleRebuildsOnPlatformFailure(t *testing.T) {
	p := newFakePlatform()
	rec := newCountingRecorder()
	c := newTestController(t, p, WithRecorder(rec))
	first := p.live()[0]

	p.setFailSetTitle(true)
	require.NoError(t, c.UpdateTitle("Y"))

	assert.True(t, first.released, "old handle must be released")
	live := p.live()
	require.Len(t, live, 1)
	assert.NotSame(t, first, live[0])
	assert.Equal(t, TrayID, live[0].opts.ID)
	assert.Equal(t, "Y", live[0].opts.Title)
	assert.Equal(t, "Y", live[0].opts.Tooltip)
	assert.NotNil(t, live[0].opts.OnEvent)
	assert.NotSame(t, first.opts.Menu, live[0].opts.Menu, "menus are not reused across trays")

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Y", snap.Title)
	assert.Equal(t, "Y", snap.Tooltip)
	assert.Equal(t, 1, rec.rebuilds)
	assert.Equal(t, 1, rec.paths[PathRebuild])
}

func TestUpdateTitleTwiceConverges(t *testing.T) {
	for _, failFirst := range []bool{false, true} {
		p := newFakePlatform()
		c := newTestController(t, p)

		p.setFailSetTitle(failFirst)
		require.NoError(t, c.UpdateTitle("X"))
		p.setFailSetTitle(false)
		require.NoError(t, c.UpdateTitle("X"))

		snap, err := c.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, "X", snap.Title)
		assert.Len(t, p.live(), 1)
	}
}

func TestInstalledTrayRoutesEvents(t *testing.T) {
	p := newFakePlatform()
	win := &fakeWindow{visible: true}
	c := NewController(p, &fakeWindows{main: win})
	require.NoError(t, c.Setup(initialTitle))

	onEvent := p.live()[0].opts.OnEvent
	onEvent(MenuCommand{ID: MenuHide})
	assert.False(t, win.visible)
	onEvent(TrayClick{Button: ButtonPrimary, Phase: PhaseReleased})
	assert.True(t, win.visible)
	assert.Equal(t, 1, win.focuses)

	// The close veto still reaches callers of Dispatch.
	assert.True(t, c.Dispatch(WindowCloseRequested{}))
	assert.False(t, win.visible)
}

func TestRebuiltTrayRoutesEvents(t *testing.T) {
	p := newFakePlatform()
	win := &fakeWindow{}
	c := NewController(p, &fakeWindows{main: win})
	require.NoError(t, c.Setup(initialTitle))

	p.setFailSetTitle(true)
	require.NoError(t, c.UpdateTitle("Y"))

	p.live()[0].opts.OnEvent(TrayClick{Button: ButtonPrimary, Phase: PhaseReleased})
	assert.Equal(t, 1, win.shows)
}

func TestRebuildFailureLeavesStoreDegraded(t *testing.T) {
	tests := []struct {
		name          string
		breakPlatform func(p *fakePlatform)
	}{
		{"menu allocation fails", func(p *fakePlatform) { p.menuErr = errFakePlatform }},
		{"tray construction fails", func(p *fakePlatform) { p.trayErr = errFakePlatform }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakePlatform()
			rec := newCountingRecorder()
			c := newTestController(t, p, WithRecorder(rec))

			p.setFailSetTitle(true)
			tt.breakPlatform(p)

			err := c.UpdateTitle("Y")
			require.ErrorIs(t, err, ErrConstruction)
			assert.Empty(t, p.live(), "no ghost icon may remain")
			assert.Equal(t, 1, rec.paths[PathError])

			snap, err := c.Snapshot()
			require.NoError(t, err)
			assert.True(t, snap.Degraded)
			assert.False(t, snap.Live)
		})
	}
}

func TestUpdateAfterFailedRebuildRestoresTray(t *testing.T) {
	p := newFakePlatform()
	c := newTestController(t, p)

	p.setFailSetTitle(true)
	p.trayErr = errFakePlatform
	require.Error(t, c.UpdateTitle("Y"))

	p.setFailSetTitle(false)
	p.trayErr = nil
	require.NoError(t, c.UpdateTitle("Z"))

	live := p.live()
	require.Len(t, live, 1)
	assert.Equal(t, "Z", live[0].opts.Title)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.False(t, snap.Degraded)
	assert.Equal(t, "Z", snap.Tooltip)
}

func TestPoisonedStoreReportsLockFailure(t *testing.T) {
	p := newFakePlatform()
	c := newTestController(t, p)

	p.panicSetTitle = true
	assert.Panics(t, func() {
		_ = c.UpdateTitle("boom")
	})
	p.panicSetTitle = false

	err := c.UpdateTitle("after")
	require.ErrorIs(t, err, ErrLockPoisoned)
	assert.Contains(t, err.Error(), "lock failed")

	_, err = c.Snapshot()
	require.ErrorIs(t, err, ErrLockPoisoned)
}

func TestConcurrentUpdatesKeepSingleTray(t *testing.T) {
	p := newFakePlatform()
	c := newTestController(t, p)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%7 == 0 {
				p.setFailSetTitle(true)
			} else if i%5 == 0 {
				p.setFailSetTitle(false)
			}
			if err := c.UpdateTitle("● 10:00"); err != nil && !errors.Is(err, ErrConstruction) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, len(p.live()), 1)
}
