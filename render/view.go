package render

import (
	"github.com/dudk/wavescope/signal"
)

// View is a panel bound to the canvas. It redraws the canvas on every
// Show call and keeps a copy of the last shown buffer.
type View struct {
	canvas *Canvas
	title  string
	last   signal.Bytes
	live   bool
}

// NewView binds a new view to the canvas.
func NewView(c *Canvas) *View {
	return &View{canvas: c}
}

// Show draws the buffer with title. Nil buffer draws no signal state.
func (v *View) Show(buf signal.Bytes, title string) {
	Draw(v.canvas, buf, title)
	v.title = title
	v.live = buf != nil
	if buf == nil {
		v.last = v.last[:0]
		return
	}
	v.last = append(v.last[:0], buf...)
}

// Canvas returns the bound canvas.
func (v *View) Canvas() *Canvas {
	return v.canvas
}

// Title returns the title of the last draw.
func (v *View) Title() string {
	return v.title
}

// Snapshot returns a copy of the last shown buffer. Nil is returned if
// there was no signal.
func (v *View) Snapshot() signal.Bytes {
	if !v.live {
		return nil
	}
	return append(signal.Bytes(nil), v.last...)
}
