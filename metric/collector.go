package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wavescope"

// Collector exports component counters to prometheus.
type Collector struct {
	frames     *prometheus.Desc
	samples    *prometheus.Desc
	latency    *prometheus.Desc
	duration   *prometheus.Desc
	components *prometheus.Desc
}

// NewCollector returns a new collector of all measured components.
func NewCollector() *Collector {
	labels := []string{"component"}
	return &Collector{
		frames: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "frames_total"),
			"Number of drawn frames.", labels, nil),
		samples: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "samples_total"),
			"Number of pulled samples.", labels, nil),
		latency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "frame_latency_seconds"),
			"Latency between the last two frames.", labels, nil),
		duration: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "signal_seconds_total"),
			"Duration of pulled signal.", labels, nil),
		components: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "started_total"),
			"Number of started components.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.frames
	ch <- c.samples
	ch <- c.latency
	ch <- c.duration
	ch <- c.components
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range components.all() {
		ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(m.frames.Value()), m.key)
		ch <- prometheus.MustNewConstMetric(c.samples, prometheus.CounterValue, float64(m.samples.Value()), m.key)
		ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, m.latency.value().Seconds(), m.key)
		ch <- prometheus.MustNewConstMetric(c.duration, prometheus.CounterValue, m.duration.value().Seconds(), m.key)
		ch <- prometheus.MustNewConstMetric(c.components, prometheus.CounterValue, float64(m.components.Value()), m.key)
	}
}
