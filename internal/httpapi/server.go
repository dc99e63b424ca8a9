// Package httpapi exposes the controller over HTTP. Every request is
// executed on the controlling thread by posting it to the frame queue.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dudk/wavescope"
	"github.com/dudk/wavescope/frame"
	"github.com/dudk/wavescope/graph"
	"github.com/dudk/wavescope/metric"
	"github.com/dudk/wavescope/render"
)

type (
	// Devices lists available audio devices.
	Devices func() ([]graph.Device, error)

	// Option provides a way to set functional parameters to server.
	Option func(*Server)
)

// Server routes HTTP requests to the controller.
type Server struct {
	q        *frame.Queue
	c        *wavescope.Controller
	views    map[string]*render.View
	devices  Devices
	log      logrus.FieldLogger
	registry *prometheus.Registry
}

// WithDevices sets device lister. Without it device list is empty.
func WithDevices(d Devices) Option {
	return func(s *Server) {
		s.devices = d
	}
}

// WithLogger sets request logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// New creates a server. Views must be the displays of controller
// pipelines, they are read on the controlling thread only.
func New(q *frame.Queue, c *wavescope.Controller, capture, tone *render.View, options ...Option) *Server {
	s := &Server{
		q: q,
		c: c,
		views: map[string]*render.View{
			c.Capture.Name(): capture,
			c.Tone.Name():    tone,
		},
		devices: func() ([]graph.Device, error) { return nil, nil },
		log:     logrus.StandardLogger(),
	}
	for _, option := range options {
		option(s)
	}
	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		metric.NewCollector(),
		collectors.NewGoCollector(),
	)
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Handle("/debug/vars", expvar.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/devices", s.listDevices)
		r.Get("/pipelines", s.listPipelines)
		r.Post("/route", s.route)
		r.Route("/capture", func(r chi.Router) {
			r.Post("/start", s.startCapture)
			r.Post("/stop", s.stop(func() wavescope.Pipeline { return s.c.Capture }))
			r.Patch("/", s.patchCapture)
		})
		r.Route("/tone", func(r chi.Router) {
			r.Post("/start", s.startTone)
			r.Post("/stop", s.stop(func() wavescope.Pipeline { return s.c.Tone }))
			r.Patch("/", s.patchTone)
		})
		r.Get("/data/{pipeline}", s.data)
		r.Get("/panel/{pipeline}", s.panel)
	})
	return r
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"request":  chimw.GetReqID(r.Context()),
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("request served")
	})
}

// do executes fn on the controlling thread and waits for the result.
func (s *Server) do(fn func() error) error {
	return frame.Wait(s.q.Do(fn))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices()
	if err != nil {
		s.fail(w, err)
		return
	}
	if devices == nil {
		devices = []graph.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) listPipelines(w http.ResponseWriter, r *http.Request) {
	var statuses []Status
	err := s.do(func() error {
		for _, p := range s.c.Pipelines() {
			statuses = append(statuses, s.status(p))
		}
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) startCapture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if !decode(w, r, &req) {
		return
	}
	s.reply(w, s.c.Capture, func() error {
		gain := s.c.Capture.Gain()
		if req.Gain != nil {
			gain = *req.Gain
		}
		return s.c.StartCapture(r.Context(), req.Device, gain)
	})
}

func (s *Server) patchCapture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if !decode(w, r, &req) {
		return
	}
	s.reply(w, s.c.Capture, func() error {
		if req.Gain == nil {
			return nil
		}
		return s.c.SetCaptureGain(*req.Gain)
	})
}

func (s *Server) startTone(w http.ResponseWriter, r *http.Request) {
	var req ToneRequest
	if !decode(w, r, &req) {
		return
	}
	s.reply(w, s.c.Tone, func() error {
		frequency, gain := s.c.Tone.Frequency(), s.c.Tone.Gain()
		if req.Frequency != nil {
			frequency = *req.Frequency
		}
		if req.Gain != nil {
			gain = *req.Gain
		}
		return s.c.StartTone(frequency, gain)
	})
}

func (s *Server) patchTone(w http.ResponseWriter, r *http.Request) {
	var req ToneRequest
	if !decode(w, r, &req) {
		return
	}
	s.reply(w, s.c.Tone, func() error {
		if req.Frequency != nil {
			if err := s.c.SetToneFrequency(*req.Frequency); err != nil {
				return err
			}
		}
		if req.Gain != nil {
			return s.c.SetToneGain(*req.Gain)
		}
		return nil
	})
}

func (s *Server) stop(pipeline func() wavescope.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := pipeline()
		s.reply(w, p, p.Stop)
	}
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !decode(w, r, &req) {
		return
	}
	err := s.do(func() error {
		return s.c.SetOutputRoute(r.Context(), req.Device)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) data(w http.ResponseWriter, r *http.Request) {
	view, ok := s.view(w, r)
	if !ok {
		return
	}
	var d Data
	err := s.do(func() error {
		d.Title = view.Title()
		buf := view.Snapshot()
		if buf == nil {
			return nil
		}
		d.Live = true
		d.RMS = buf.RMS()
		d.Samples = make([]int, len(buf))
		for i, v := range buf {
			d.Samples[i] = int(v)
		}
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) panel(w http.ResponseWriter, r *http.Request) {
	view, ok := s.view(w, r)
	if !ok {
		return
	}
	var b bytes.Buffer
	err := s.do(func() error {
		return png.Encode(&b, view.Canvas().Image())
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(b.Bytes())
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) (*render.View, bool) {
	name := chi.URLParam(r, "pipeline")
	view, ok := s.views[name]
	if !ok || view == nil {
		writeJSON(w, http.StatusNotFound, Error{Error: fmt.Sprintf("unknown pipeline %q", name)})
		return nil, false
	}
	return view, true
}

// reply executes fn and responds with the pipeline status.
func (s *Server) reply(w http.ResponseWriter, p wavescope.Pipeline, fn func() error) {
	var status Status
	err := s.do(func() error {
		if err := fn(); err != nil {
			return err
		}
		status = s.status(p)
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) status(p wavescope.Pipeline) Status {
	status := Status{
		Name:  p.Name(),
		State: p.State().String(),
		Title: p.Title(),
		Gain:  p.Gain(),
	}
	switch p := p.(type) {
	case *wavescope.Capture:
		status.Device = p.Device()
	case *wavescope.Tone:
		status.Frequency = p.Frequency()
	}
	return status
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		s.log.WithError(err).Info("request failed")
	}
	writeJSON(w, code, Error{Error: err.Error()})
}

func statusCode(err error) int {
	var (
		acqErr   *graph.DeviceAcquisitionError
		routeErr *graph.OutputRouteError
	)
	switch {
	case errors.Is(err, wavescope.ErrInvalidParameter),
		errors.Is(err, graph.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, wavescope.ErrInvalidState):
		return http.StatusConflict
	case errors.As(err, &acqErr), errors.As(err, &routeErr),
		errors.Is(err, frame.ErrClosed), errors.Is(err, graph.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Error: fmt.Sprintf("invalid request: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
