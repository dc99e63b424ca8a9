package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dudk/wavescope"
	"github.com/dudk/wavescope/frame"
	"github.com/dudk/wavescope/internal/httpapi"
	"github.com/dudk/wavescope/portaudio"
)

type serveCommand struct {
	sessionFlags
	addr string
	rate int
}

func (cmd *serveCommand) Name() string {
	return "serve"
}

func (cmd *serveCommand) Help() string {
	return "Serve HTTP control surface with metrics"
}

func (cmd *serveCommand) Register(fs *flag.FlagSet) {
	cmd.sessionFlags.register(fs)
	fs.StringVar(&cmd.addr, "addr", ":8080", "address to listen")
	fs.IntVar(&cmd.rate, "rate", frame.DefaultRate, "display frames per second")
}

func (cmd *serveCommand) Run() error {
	loop := frame.NewLoop(frame.WithRate(cmd.rate))
	sess, err := newSession(&cmd.sessionFlags, loop, 1, wavescope.WithMetric())
	if err != nil {
		return err
	}
	defer sess.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
	}()
	if err := frame.Wait(loop.Do(func() error { return sess.start(&cmd.sessionFlags) })); err != nil {
		sess.log.Info(err)
	}

	s := httpapi.New(loop.Queue, sess.c, sess.capture, sess.tone,
		httpapi.WithDevices(portaudio.Devices),
		httpapi.WithLogger(sess.log.WithField("component", "http")),
	)
	srv := &http.Server{
		Addr:         cmd.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		sess.log.Infof("listening on %s", cmd.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err = <-errc:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	frame.Wait(loop.Do(sess.c.Close))
	cancel()
	<-done
	return err
}
