package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

type tkSpeaker struct {
	initialized bool
	format      beep.Format
	mu          sync.Mutex
}

type playableSound[T beep.Streamer] struct {
	soundStream T
	format      beep.Format
}

type soundPlayer interface {
	play(stream beep.Streamer, format beep.Format)
	clear()
}

func (spkr *tkSpeaker) init(format beep.Format) {
	bufSize := format.SampleRate.N(time.Second / 10)
	log.Info(fmt.Sprintf("Initializing speaker %d,%d", format.SampleRate, bufSize))
	speaker.Init(format.SampleRate, bufSize)
	spkr.initialized = true
	spkr.format = format
}

func (spkr *tkSpeaker) play(stream beep.Streamer, format beep.Format) {
	spkr.mu.Lock()
	defer spkr.mu.Unlock()

	if !spkr.initialized {
		spkr.init(format)
	} else if format.SampleRate != spkr.format.SampleRate {
		snd := spkr.resampleIfNeeded(stream, format)
		stream = snd.soundStream
	}

	speaker.Play(stream)
}

func (spkr *tkSpeaker) resampleIfNeeded(stream beep.Streamer, oldFormat beep.Format) playableSound[beep.Streamer] {
	result := stream
	if !spkr.initialized {
		spkr.format = oldFormat
		spkr.initialized = true
	} else if oldFormat.SampleRate != spkr.format.SampleRate {
		log.Info(fmt.Sprintf("Resampling from %d to %d", oldFormat.SampleRate, spkr.format.SampleRate))
		result = beep.Resample(4, oldFormat.SampleRate, spkr.format.SampleRate, stream)
	}

	return playableSound[beep.Streamer]{
		soundStream: result,
		format:      spkr.format,
	}
}

func (spkr *tkSpeaker) resampleIntoBuffer(stream beep.Streamer, oldFormat beep.Format) playableSound[beep.StreamSeeker] {
	spkr.mu.Lock()
	result := spkr.resampleIfNeeded(stream, oldFormat)
	format := spkr.format
	spkr.mu.Unlock()

	buffered := bufferStreamer(result.soundStream, format)
	closeStreamSeeker(stream)

	return playableSound[beep.StreamSeeker]{
		soundStream: buffered,
		format:      format,
	}
}

func (spkr *tkSpeaker) clear() {
	speaker.Clear()
}
