// Package metric measures sampler activity. Counters are published with
// expvar and exported to prometheus with Collector.
package metric

import (
	"expvar"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dudk/wavescope/signal"
)

const componentsLabel = "wavescope.components"

const (
	// FrameCounter measures number of drawn frames.
	FrameCounter = "Frames"
	// SampleCounter measures number of pulled samples.
	SampleCounter = "Samples"
	// LatencyCounter measures latency between frames.
	LatencyCounter = "Latency"
	// DurationCounter counts what's the duration of pulled signal.
	DurationCounter = "Duration"
	// ComponentCounter counts number of started components.
	ComponentCounter = "Components"
)

var (
	components = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		FrameCounter,
		SampleCounter,
		LatencyCounter,
		DurationCounter,
		ComponentCounter,
	}
)

// Get metrics values for provided component.
func Get(component string) map[string]string {
	return getCounters(component)
}

// GetAll returns counters for all measured components.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	for _, component := range components.names() {
		m[component] = getCounters(component)
	}
	return m
}

func getCounters(component string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(component, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// ResetFunc returns new Measure closure. This closure is needed to postpone metrics
// capture until component is actually running.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when frame is drawn.
type MeasureFunc func(samples int64)

// Meter creates new meter closure to capture component counters.
func Meter(component string, sampleRate int) ResetFunc {
	metric := components.get(component)
	return func() MeasureFunc {
		metric.components.Add(1)
		calledAt := time.Now()
		var (
			bufferSize     int64
			bufferDuration time.Duration
		)
		return func(s int64) {
			metric.latency.set(time.Since(calledAt))
			metric.frames.Add(1)
			metric.samples.Add(s)
			// recalculate buffer duration only when buffer size has changed
			if bufferSize != s {
				bufferSize = s
				bufferDuration = signal.DurationOf(sampleRate, s)
			}
			metric.duration.add(bufferDuration)
			calledAt = time.Now()
		}
	}
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(component string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[component]; ok {
		// return existing metric if available
		return metric
	}
	// create new metric
	metric := newMetric(component)
	m.m[component] = metric
	return metric
}

func (m *metrics) names() []string {
	m.Lock()
	defer m.Unlock()
	names := make([]string, 0, len(m.m))
	for name := range m.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *metrics) all() []metric {
	m.Lock()
	defer m.Unlock()
	all := make([]metric, 0, len(m.m))
	for _, metric := range m.m {
		all = append(all, metric)
	}
	return all
}

type metric struct {
	key        string
	components *expvar.Int
	frames     *expvar.Int
	samples    *expvar.Int
	latency    *duration
	duration   *duration
}

func newMetric(component string) metric {
	m := metric{
		key:        component,
		components: expvar.NewInt(key(component, ComponentCounter)),
		frames:     expvar.NewInt(key(component, FrameCounter)),
		samples:    expvar.NewInt(key(component, SampleCounter)),
		latency:    &duration{},
		duration:   &duration{},
	}
	expvar.Publish(key(component, LatencyCounter), m.latency)
	expvar.Publish(key(component, DurationCounter), m.duration)
	return m
}

func key(component, counter string) string {
	return fmt.Sprintf("%s.%s.%s", componentsLabel, component, counter)
}

// duration allows to format time.Duration metric values as JSON strings.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) value() time.Duration {
	return time.Duration(atomic.LoadInt64(&v.d))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
