package main

import (
	"errors"
	"flag"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/dudk/wavescope/frame"
	"github.com/dudk/wavescope/render"
)

type renderCommand struct {
	sessionFlags
	frames int
	out    string
}

func (cmd *renderCommand) Name() string {
	return "render"
}

func (cmd *renderCommand) Help() string {
	return "Render panels to PNG files after number of frames"
}

func (cmd *renderCommand) Register(fs *flag.FlagSet) {
	cmd.sessionFlags.register(fs)
	fs.IntVar(&cmd.frames, "frames", frame.DefaultRate, "number of rendered display frames")
	fs.StringVar(&cmd.out, "out", ".", "directory to save capture.png and tone.png")
}

func (cmd *renderCommand) Run() error {
	if cmd.frames <= 0 {
		return errors.New("number of frames must be positive")
	}
	// signal is rendered in lockstep with display frames
	cmd.output = "manual"
	q := frame.NewQueue()
	sess, err := newSession(&cmd.sessionFlags, q, 1)
	if err != nil {
		return err
	}
	defer sess.close()
	if err := sess.start(&cmd.sessionFlags); err != nil {
		return err
	}

	samples := sess.sampleRate / frame.DefaultRate
	now := time.Now()
	for i := 0; i < cmd.frames; i++ {
		sess.ac.Render(samples)
		now = now.Add(time.Second / frame.DefaultRate)
		q.Tick(now)
	}
	views := map[string]*render.View{
		"capture.png": sess.capture,
		"tone.png":    sess.tone,
	}
	for name, v := range views {
		if err := save(filepath.Join(cmd.out, name), v); err != nil {
			sess.c.Close()
			return err
		}
	}
	return sess.c.Close()
}

func save(path string, v *render.View) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, v.Canvas().Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
