package main

import (
	"context"
	"flag"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/dudk/wavescope/frame"
	"github.com/dudk/wavescope/render"
)

type windowCommand struct {
	sessionFlags
}

func (cmd *windowCommand) Name() string {
	return "window"
}

func (cmd *windowCommand) Help() string {
	return "Show waveforms in a window, C toggles capture and T toggles tone"
}

func (cmd *windowCommand) Register(fs *flag.FlagSet) {
	cmd.sessionFlags.register(fs)
}

func (cmd *windowCommand) Run() error {
	q := frame.NewQueue()
	scale := ebiten.Monitor().DeviceScaleFactor()
	sess, err := newSession(&cmd.sessionFlags, q, scale)
	if err != nil {
		return err
	}
	defer sess.close()
	if err := sess.start(&cmd.sessionFlags); err != nil {
		sess.log.Info(err)
	}

	g := &game{
		q:     q,
		sess:  sess,
		flags: &cmd.sessionFlags,
		views: []*render.View{sess.capture, sess.tone},
		scale: scale,
	}
	ebiten.SetWindowSize(panelWidth, panelHeight*len(g.views))
	ebiten.SetWindowTitle("Wavescope")
	err = ebiten.RunGame(g)
	// ebiten returned, this goroutine is the controlling thread now
	sess.c.Close()
	q.Close()
	return err
}

// game ticks the frame queue on every ebiten update, so controller and
// samplers run on the game goroutine.
type game struct {
	q      *frame.Queue
	sess   *session
	flags  *sessionFlags
	views  []*render.View
	images []*ebiten.Image
	scale  float64
}

func (g *game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.toggleCapture()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.toggleTone()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.adjustFrequency(2)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.adjustFrequency(0.5)
	}
	g.q.Tick(time.Now())
	return nil
}

func (g *game) toggleCapture() {
	c := g.sess.c
	if c.Capture.Running() {
		c.StopCapture()
		return
	}
	if err := c.StartCapture(context.Background(), g.flags.device, c.Capture.Gain()); err != nil {
		g.sess.log.Info(err)
	}
}

func (g *game) toggleTone() {
	c := g.sess.c
	if c.Tone.Running() {
		c.StopTone()
		return
	}
	if err := c.StartTone(c.Tone.Frequency(), c.Tone.Gain()); err != nil {
		g.sess.log.Info(err)
	}
}

func (g *game) adjustFrequency(ratio float64) {
	c := g.sess.c
	if err := c.SetToneFrequency(c.Tone.Frequency() * ratio); err != nil {
		g.sess.log.Info(err)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.images == nil {
		for _, v := range g.views {
			b := v.Canvas().Image().Bounds()
			g.images = append(g.images, ebiten.NewImage(b.Dx(), b.Dy()))
		}
	}
	for i, v := range g.views {
		img := v.Canvas().Image()
		g.images[i].WritePixels(img.Pix)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(0, float64(i*img.Bounds().Dy()))
		screen.DrawImage(g.images[i], op)
	}
}

// Layout returns the screen in device pixels, so canvases are drawn
// without scaling.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w := int(float64(panelWidth) * g.scale)
	h := int(float64(panelHeight)*g.scale) * len(g.views)
	return w, h
}
