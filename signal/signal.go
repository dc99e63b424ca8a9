// Package signal provides the sample representations shared by graphs,
// samplers and renderers. It allows to:
//   - convert floating point signal to unsigned 8-bit time-domain bytes
//   - compute the root-mean-square level of a byte buffer
package signal

import (
	"math"
	"time"
)

// Midpoint is the byte value that represents zero signal.
const Midpoint = 128

// Bytes is a time-domain buffer of unsigned 8-bit magnitudes centered at
// Midpoint. A single buffer is reused for every pull, so its content is
// only valid until the next pull.
type Bytes []uint8

// Float64 is a mono floating point signal in range [-1, 1].
type Float64 []float64

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// SamplesOf returns number of samples that fit into duration for this
// sample rate.
func SamplesOf(sampleRate int, d time.Duration) int {
	return int(float64(sampleRate) * d.Seconds())
}

// Byte converts a single floating point sample to its byte magnitude.
// Values outside of [-1, 1] are clipped.
func Byte(v float64) uint8 {
	b := math.Floor(Midpoint * (1 + v))
	switch {
	case b < 0 || math.IsNaN(b):
		return 0
	case b > math.MaxUint8:
		return math.MaxUint8
	}
	return uint8(b)
}

// AsBytes writes floats into dst as byte magnitudes. Only
// min(len(dst), len(floats)) samples are converted, the number of
// converted samples is returned.
func (floats Float64) AsBytes(dst Bytes) int {
	n := len(floats)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = Byte(floats[i])
	}
	return n
}

// Centered returns the sample at position i normalized to [-1, 1).
func (b Bytes) Centered(i int) float64 {
	return (float64(b[i]) - Midpoint) / Midpoint
}

// RMS returns the root-mean-square of the AC-coupled buffer expressed in
// byte units, so result is always in range [0, Midpoint]. Empty buffer
// has zero RMS.
func (b Bytes) RMS() float64 {
	if len(b) == 0 {
		return 0
	}
	var sum float64
	for i := range b {
		c := b.Centered(i)
		sum += c * c
	}
	return math.Sqrt(sum/float64(len(b))) * Midpoint
}

// Fill sets all samples of the buffer to v.
func (b Bytes) Fill(v uint8) Bytes {
	for i := range b {
		b[i] = v
	}
	return b
}
