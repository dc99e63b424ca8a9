// Package test contains helper functions usefull for testing wavescope packages.
package test

import (
	"math"

	"github.com/dudk/wavescope/signal"
)

// All shared fixtures should be listed here so they could be accessible in
// all test packages.
var (
	// BufferSize is the size of pulled buffer for default analyser window.
	BufferSize = 1024

	// Data contains byte buffers and their expected attributes.
	Data = struct {
		Silence      signal.Bytes // Silence is the buffer of midpoint samples.
		Alternating  signal.Bytes // Alternating swings between full scale 0 and 255.
		Sine         signal.Bytes // Sine is one full sine period at half scale.
		AlternateRMS float64      // AlternateRMS is the exact RMS of Alternating.
	}{
		Silence:      Constant(BufferSize, signal.Midpoint),
		Alternating:  Alternating(BufferSize),
		Sine:         Sine(BufferSize, 0.5),
		AlternateRMS: math.Sqrt((1+math.Pow(127.0/128.0, 2))/2) * signal.Midpoint,
	}
)

// Constant returns a buffer of size n filled with v.
func Constant(n int, v uint8) signal.Bytes {
	return make(signal.Bytes, n).Fill(v)
}

// Alternating returns a buffer of size n that alternates 0 and 255.
func Alternating(n int) signal.Bytes {
	b := make(signal.Bytes, n)
	for i := range b {
		if i%2 == 0 {
			b[i] = 0
		} else {
			b[i] = math.MaxUint8
		}
	}
	return b
}

// Sine returns a buffer of size n holding single sine period with
// provided amplitude.
func Sine(n int, amplitude float64) signal.Bytes {
	floats := make(signal.Float64, n)
	for i := range floats {
		floats[i] = amplitude * math.Sin(2*math.Pi*float64(i)/float64(n))
	}
	b := make(signal.Bytes, n)
	floats.AsBytes(b)
	return b
}
