// Package render draws the waveform panel. Drawing is expressed in
// logical units on the Surface, so the same routine serves any backing
// resolution.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/dudk/wavescope/signal"
)

// NoSignal is the label drawn when there is no buffer.
const NoSignal = "No Signal"

// Align is the horizontal alignment of text relative to its position.
type Align int

// Text alignments.
const (
	Left Align = iota
	Center
)

// Text describes the style of the label.
type Text struct {
	Color color.Color
	Size  float64
	Bold  bool
	Align Align
}

// Surface is a drawable target. All coordinates are logical.
type Surface interface {
	Size() (width, height float64)
	FillRect(x, y, width, height float64, c color.Color)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke(c color.Color, lineWidth float64)
	FillText(text string, x, y float64, style Text)
}

// Panel colors.
var (
	Background = color.RGBA{R: 0xf8, G: 0xf9, B: 0xfa, A: 0xff}
	Grid       = color.RGBA{R: 0xe9, G: 0xec, B: 0xef, A: 0xff}
	Axis       = color.RGBA{R: 0x6c, G: 0x75, B: 0x7d, A: 0xff}
	Waveform   = color.RGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff}
	Level      = color.NRGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0x4d}
	Label      = color.RGBA{R: 0x49, G: 0x50, B: 0x57, A: 0xff}
)

const (
	hBands = 4
	vBands = 8
)

// Draw draws the panel with provided buffer and title. Nil buffer means
// there is no signal.
func Draw(s Surface, buf signal.Bytes, title string) {
	w, h := s.Size()
	s.FillRect(0, 0, w, h, Background)
	grid(s, w, h)

	if buf != nil {
		waveform(s, buf, w, h)
		level(s, buf.RMS(), w, h)
	} else {
		s.FillText(NoSignal, w/2, h/2, Text{Color: Axis, Size: 16, Align: Center})
	}

	s.FillText(title, 10, 20, Text{Color: Label, Size: 14, Bold: true})
}

func grid(s Surface, w, h float64) {
	for i := 0; i <= hBands; i++ {
		y := h / hBands * float64(i)
		line(s, 0, y, w, y)
		s.Stroke(Grid, 0.5)
	}
	for i := 0; i <= vBands; i++ {
		x := w / vBands * float64(i)
		line(s, x, 0, x, h)
		s.Stroke(Grid, 0.5)
	}
	line(s, 0, h/2, w, h/2)
	s.Stroke(Axis, 1)
}

func line(s Surface, x0, y0, x1, y1 float64) {
	s.BeginPath()
	s.MoveTo(x0, y0)
	s.LineTo(x1, y1)
}

func waveform(s Surface, buf signal.Bytes, w, h float64) {
	if len(buf) == 0 {
		return
	}
	step := w / float64(len(buf))
	s.BeginPath()
	for i, v := range buf {
		x := step * float64(i)
		y := float64(v) / signal.Midpoint * h / 2
		if i == 0 {
			s.MoveTo(x, y)
		} else {
			s.LineTo(x, y)
		}
	}
	s.Stroke(Waveform, 2)
}

func level(s Surface, rms, w, h float64) {
	barHeight := rms / signal.Midpoint * h
	s.FillRect(w-20, h-barHeight, 10, barHeight, Level)
	s.FillText(fmt.Sprintf("RMS: %d", int(math.Round(rms))), w-60, h-10, Text{Color: Label, Size: 12})
}
