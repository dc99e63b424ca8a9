// Package portaudio provides device capabilities for graph context using
// portaudio library: input streams, audible output and device listing.
//
// Initialize must be called before any other function of this package
// and Terminate after all streams are closed.
package portaudio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/dudk/wavescope/graph"
)

const (
	// DefaultFramesPerBuffer is used when streams are opened without
	// explicit buffer size.
	DefaultFramesPerBuffer = 512
	// ringBuffers is the number of device buffers kept by input ring.
	ringBuffers = 16
)

// ErrDeviceNotFound is returned when device id doesn't match any device
// of requested kind.
var ErrDeviceNotFound = errors.New("device not found")

// Initialize initializes portaudio library.
func Initialize() error {
	return portaudio.Initialize()
}

// Terminate releases portaudio library.
func Terminate() error {
	return portaudio.Terminate()
}

// Devices returns all input and output devices. Device that both captures
// and plays is listed twice.
func Devices() ([]graph.Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defaultIn, _ := portaudio.DefaultInputDevice()
	defaultOut, _ := portaudio.DefaultOutputDevice()

	var devices []graph.Device
	for _, info := range infos {
		if info.MaxInputChannels > 0 {
			devices = append(devices, device(info, graph.InputDevice, info.MaxInputChannels, info == defaultIn))
		}
		if info.MaxOutputChannels > 0 {
			devices = append(devices, device(info, graph.OutputDevice, info.MaxOutputChannels, info == defaultOut))
		}
	}
	return devices, nil
}

func device(info *portaudio.DeviceInfo, kind graph.DeviceKind, channels int, isDefault bool) graph.Device {
	return graph.Device{
		ID:         strconv.Itoa(info.Index),
		Name:       info.Name,
		Kind:       kind,
		Channels:   channels,
		SampleRate: info.DefaultSampleRate,
		Default:    isDefault,
	}
}

// lookup finds device by id. Empty id means the default device of kind.
func lookup(id string, kind graph.DeviceKind) (*portaudio.DeviceInfo, error) {
	if id == "" {
		if kind == graph.InputDevice {
			return portaudio.DefaultInputDevice()
		}
		return portaudio.DefaultOutputDevice()
	}
	index, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrDeviceNotFound, id)
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Index != index {
			continue
		}
		if kind == graph.InputDevice && info.MaxInputChannels > 0 ||
			kind == graph.OutputDevice && info.MaxOutputChannels > 0 {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w: %s device %s", ErrDeviceNotFound, kind, id)
}

// Input opens mono input streams. Samples written by device callback
// are buffered in graph.Ring and read by render path.
type Input struct {
	SampleRate      int
	FramesPerBuffer int
}

// OpenInput implements graph.InputOpener. Returned error is always
// *graph.DeviceAcquisitionError.
func (in *Input) OpenInput(ctx context.Context, deviceID string) (graph.InputStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, &graph.DeviceAcquisitionError{Device: deviceID, Err: err}
	}
	info, err := lookup(deviceID, graph.InputDevice)
	if err != nil {
		return nil, &graph.DeviceAcquisitionError{Device: deviceID, Err: err}
	}
	sampleRate, frames := in.SampleRate, in.FramesPerBuffer
	if sampleRate == 0 {
		sampleRate = graph.DefaultSampleRate
	}
	if frames == 0 {
		frames = DefaultFramesPerBuffer
	}
	ring := graph.NewRing(frames * ringBuffers)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: 1,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: frames,
	}
	stream, err := portaudio.OpenStream(params, func(in []float32) {
		ring.Write(in)
	})
	if err != nil {
		return nil, &graph.DeviceAcquisitionError{Device: deviceID, Err: err}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, &graph.DeviceAcquisitionError{Device: deviceID, Err: err}
	}
	return &inputStream{Ring: ring, stream: stream}, nil
}

type inputStream struct {
	*graph.Ring
	stream *portaudio.Stream
	once   sync.Once
	err    error
}

// Close stops the device stream and discards buffered samples.
func (s *inputStream) Close() error {
	s.once.Do(func() {
		s.err = errors.Join(s.stream.Stop(), s.stream.Close(), s.Ring.Close())
	})
	return s.err
}

// Output is a graph.Driver that plays the signal on the output device.
// Mono signal is copied to all channels of the device.
type Output struct {
	FramesPerBuffer int

	mu         sync.Mutex
	puller     graph.Puller
	sampleRate int
	stream     *portaudio.Stream
	device     string
}

// Start opens the default output device and starts pulling.
func (o *Output) Start(p graph.Puller, sampleRate int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.puller != nil {
		return errors.New("output is already started")
	}
	o.puller, o.sampleRate = p, sampleRate
	stream, err := o.open("")
	if err != nil {
		o.puller = nil
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		o.puller = nil
		return err
	}
	o.stream = stream
	return nil
}

// Route switches playback to another device. New stream is opened before
// the current is stopped, if it fails the current device keeps playing.
func (o *Output) Route(ctx context.Context, deviceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stream == nil {
		return errors.New("output is not started")
	}
	next, err := o.open(deviceID)
	if err != nil {
		return err
	}
	if err := o.stream.Stop(); err != nil {
		next.Close()
		return err
	}
	if err := next.Start(); err != nil {
		next.Close()
		return errors.Join(err, o.stream.Start())
	}
	prev := o.stream
	o.stream, o.device = next, deviceID
	return prev.Close()
}

// Device returns id of current output device.
func (o *Output) Device() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.device
}

// Close stops the output stream. Context is not pulled after Close
// returns.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stream == nil {
		return nil
	}
	err := errors.Join(o.stream.Stop(), o.stream.Close())
	o.stream, o.puller = nil, nil
	return err
}

func (o *Output) open(deviceID string) (*portaudio.Stream, error) {
	info, err := lookup(deviceID, graph.OutputDevice)
	if err != nil {
		return nil, err
	}
	frames := o.FramesPerBuffer
	if frames == 0 {
		frames = DefaultFramesPerBuffer
	}
	channels := info.MaxOutputChannels
	if channels > 2 {
		channels = 2
	}
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultLowOutputLatency,
		},
		SampleRate:      float64(o.sampleRate),
		FramesPerBuffer: frames,
	}
	return portaudio.OpenStream(params, playback(o.puller, channels, frames))
}

// playback returns stream callback that pulls mono signal and spreads it
// over interleaved channels.
func playback(p graph.Puller, channels, frames int) func([]float32) {
	mono := make([]float32, frames)
	return func(out []float32) {
		n := len(out) / channels
		if n > len(mono) {
			mono = make([]float32, n)
		}
		p.Pull(mono[:n])
		for i, v := range mono[:n] {
			for c := 0; c < channels; c++ {
				out[i*channels+c] = v
			}
		}
	}
}
