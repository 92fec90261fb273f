package tray

// Title update paths reported to a Recorder.
const (
	PathInPlace = "in_place"
	PathRebuild = "rebuild"
	PathNoop    = "noop"
	PathError   = "error"
)

// Recorder receives controller activity, typically for metrics.
type Recorder interface {
	TitleUpdate(path string)
	Rebuild()
	Event(kind string)
}

type nopRecorder struct{}

func (nopRecorder) TitleUpdate(string) {}
func (nopRecorder) Rebuild()           {}
func (nopRecorder) Event(string)       {}
