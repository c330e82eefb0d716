package main

import (
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/pkg/errors"
)

// Distinct acquisition failure kinds. The pipeline stays uninitialized
// after either one and may be retried, but only on explicit user
// action.
var (
	errPermissionDenied  = errors.New("microphone permission denied")
	errDeviceUnavailable = errors.New("microphone device unavailable")
)

// captureDevice is the acquisition collaborator boundary: something
// that can be opened, produces fixed-size sample frames, and must be
// closed exactly once.
type captureDevice interface {
	open() error
	readFrame() (sampleFrame, error)
	close() error
}

// frameSlot is a single-producer/single-consumer handoff slot. A late
// frame replaces the previous one instead of blocking the producer, so
// acquisition never stalls behind a slow estimation tick.
type frameSlot struct {
	mu     sync.Mutex
	frame  sampleFrame
	filled bool
}

func (s *frameSlot) offer(frame sampleFrame) {
	s.mu.Lock()
	// overwriting a still-filled slot drops the stale frame
	s.frame = frame
	s.filled = true
	s.mu.Unlock()
}

func (s *frameSlot) take() (sampleFrame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filled {
		return sampleFrame{}, false
	}
	s.filled = false
	return s.frame, true
}

// captureSession owns the capture device and the frame handoff buffer
// for its lifetime. stop is idempotent and safe to call at any stage of
// startup; after stop returns, no further frames are produced and the
// device has been closed.
type captureSession struct {
	device    captureDevice
	slot      frameSlot
	done      chan struct{}
	drained   chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
	started   bool
}

func newCaptureSession(device captureDevice) *captureSession {
	return &captureSession{
		device:  device,
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
}

// start opens the device and begins producing frames into the handoff
// slot. Returns errPermissionDenied or errDeviceUnavailable on failure,
// leaving nothing open.
func (s *captureSession) start() error {
	err := s.device.open()
	if err != nil {
		return err
	}
	s.started = true

	go func() {
		defer close(s.drained)
		for {
			select {
			case <-s.done:
				return
			default:
			}

			frame, err := s.device.readFrame()
			if err != nil {
				log.Error("Capture read failed, stopping session", "err", err)
				// can't call stop here, it would wait for this
				// goroutine to drain
				s.stopOnce.Do(func() { close(s.done) })
				s.closeDevice()
				return
			}
			s.slot.offer(frame)
		}
	}()

	return nil
}

// nextFrame returns the most recent captured frame, if one arrived
// since the last call.
func (s *captureSession) nextFrame() (sampleFrame, bool) {
	select {
	case <-s.done:
		return sampleFrame{}, false
	default:
	}
	return s.slot.take()
}

// stop tears the session down. The producer goroutine may be inside a
// paced readFrame when stop lands, so stop waits for it to exit before
// closing the device. Device close errors are swallowed: they must
// never block shutdown.
func (s *captureSession) stop() {
	s.stopOnce.Do(func() { close(s.done) })
	if !s.started {
		return
	}
	<-s.drained
	s.closeDevice()
}

func (s *captureSession) closeDevice() {
	s.closeOnce.Do(func() {
		err := s.device.close()
		if err != nil {
			log.Error("Error closing capture device", "err", err)
		}
	})
}

// streamerCaptureDevice adapts any beep.Streamer into a capture device.
// Stereo samples are averaged down to one channel.
type streamerCaptureDevice struct {
	streamer   beep.Streamer
	sampleRate int
	frameSize  int
	buf        [][2]float64
	opened     bool
}

func newStreamerCaptureDevice(streamer beep.Streamer, sampleRate int, frameSize int) *streamerCaptureDevice {
	return &streamerCaptureDevice{
		streamer:   streamer,
		sampleRate: sampleRate,
		frameSize:  frameSize,
	}
}

func (d *streamerCaptureDevice) open() error {
	if d.opened {
		return nil
	}
	if d.streamer == nil {
		return errDeviceUnavailable
	}
	d.buf = make([][2]float64, d.frameSize)
	d.opened = true
	return nil
}

func (d *streamerCaptureDevice) readFrame() (sampleFrame, error) {
	time.Sleep(time.Duration(d.frameSize) * time.Second / time.Duration(d.sampleRate))

	n, ok := d.streamer.Stream(d.buf)
	if !ok && n == 0 {
		return sampleFrame{}, errors.Wrap(errDeviceUnavailable, "stream ended")
	}

	samples := make([]float64, d.frameSize)
	for i := 0; i < n; i++ {
		samples[i] = (d.buf[i][0] + d.buf[i][1]) / 2
	}
	return sampleFrame{samples: samples, sampleRate: d.sampleRate}, nil
}

func (d *streamerCaptureDevice) close() error {
	d.buf = nil
	closeStreamSeeker(d.streamer)
	return nil
}

// fileCaptureDevice serves frames from a pre-decoded audio file,
// looping when it runs out. Useful for demoing the pipeline without a
// real microphone.
type fileCaptureDevice struct {
	filePath   string
	frameSize  int
	samples    []float64
	sampleRate int
	position   int
}

func newFileCaptureDevice(filePath string, frameSize int) *fileCaptureDevice {
	return &fileCaptureDevice{filePath: filePath, frameSize: frameSize}
}

func (d *fileCaptureDevice) open() error {
	if d.samples != nil {
		return nil
	}
	_, err := os.Stat(d.filePath)
	if err != nil {
		return errors.Wrap(errDeviceUnavailable, err.Error())
	}

	samples, sampleRate, err := decodeAudioFileSamples(d.filePath)
	if err != nil {
		return errors.Wrap(errDeviceUnavailable, err.Error())
	}
	d.samples = samples
	d.sampleRate = sampleRate
	return nil
}

func (d *fileCaptureDevice) readFrame() (sampleFrame, error) {
	if len(d.samples) == 0 {
		return sampleFrame{}, errDeviceUnavailable
	}

	// pace reads at the real-time rate a hardware device would deliver
	time.Sleep(time.Duration(d.frameSize) * time.Second / time.Duration(d.sampleRate))

	samples := make([]float64, d.frameSize)
	for i := range samples {
		samples[i] = d.samples[d.position]
		d.position = (d.position + 1) % len(d.samples)
	}
	return sampleFrame{samples: samples, sampleRate: d.sampleRate}, nil
}

func (d *fileCaptureDevice) close() error {
	d.samples = nil
	return nil
}

// sineToneDevice produces a pure tone. Handy for checking the pitch
// indicator end to end.
type sineToneDevice struct {
	frequency  float64
	sampleRate int
	frameSize  int
	phase      float64
}

func (d *sineToneDevice) open() error {
	if d.frequency <= 0 {
		return errDeviceUnavailable
	}
	return nil
}

func (d *sineToneDevice) readFrame() (sampleFrame, error) {
	time.Sleep(time.Duration(d.frameSize) * time.Second / time.Duration(d.sampleRate))

	samples := make([]float64, d.frameSize)
	step := 2 * math.Pi * d.frequency / float64(d.sampleRate)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(d.phase)
		d.phase += step
	}
	return sampleFrame{samples: samples, sampleRate: d.sampleRate}, nil
}

func (d *sineToneDevice) close() error {
	return nil
}

// openConfiguredCaptureDevice builds the capture device named by the
// config. Formats: "file:<path>", "stream:<path>", "sine:<hz>", "none".
func openConfiguredCaptureDevice(cfg gameConfig) (captureDevice, error) {
	source := cfg.captureSource
	switch {
	case source == "none" || source == "":
		return nil, errPermissionDenied
	case strings.HasPrefix(source, "file:"):
		return newFileCaptureDevice(strings.TrimPrefix(source, "file:"), cfg.frameSize), nil
	case strings.HasPrefix(source, "stream:"):
		// like file: but streamed and decoded incrementally instead of
		// pre-decoded into memory
		stream, format, err := openAudioFile(strings.TrimPrefix(source, "stream:"))
		if err != nil {
			return nil, errors.Wrap(errDeviceUnavailable, err.Error())
		}
		return newStreamerCaptureDevice(stream, int(format.SampleRate), cfg.frameSize), nil
	case strings.HasPrefix(source, "sine:"):
		hz, err := strconv.ParseFloat(strings.TrimPrefix(source, "sine:"), 64)
		if err != nil {
			return nil, errors.Wrap(errDeviceUnavailable, "bad sine frequency")
		}
		return &sineToneDevice{frequency: hz, sampleRate: cfg.sampleRate, frameSize: cfg.frameSize}, nil
	}
	return nil, errors.Wrap(errDeviceUnavailable, "unknown capture source "+source)
}
