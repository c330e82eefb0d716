package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/jfreymuth/oggvorbis"
	"github.com/pkg/errors"
)

type sound struct {
	soundStream beep.Streamer
	format      beep.Format
	filePath    string
}

func (s sound) close() {
	closeStreamSeeker(s.soundStream)
}

type decoderFunc func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

func getAudioDecoderForFile(filePath string) decoderFunc {
	if strings.HasSuffix(filePath, ".ogg") {
		return vorbis.Decode
	} else if strings.HasSuffix(filePath, ".wav") {
		return wavDecoder
	}
	return nil
}

func wavDecoder(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	// vorbis.Decode accepts a ReadCloser, so adapt wav.Decode to match
	ssc, f, err := wav.Decode(rc)
	return ssc, f, err
}

// openAudioFile opens a backing track (.ogg or .wav) as a seekable
// stream. The file is closed when the stream is closed.
func openAudioFile(filePath string) (beep.StreamSeeker, beep.Format, error) {
	decoder := getAudioDecoderForFile(filePath)
	if decoder == nil {
		return nil, beep.Format{}, errors.Errorf("unsupported audio file %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, beep.Format{}, err
	}

	return decoder(file)
}

// openEmbeddedAudioFile opens a sound effect bundled in the binary.
func openEmbeddedAudioFile(fileName string) (beep.StreamSeeker, beep.Format, error) {
	data, err := readAsset(filepath.Join("sounds", fileName))
	if err != nil {
		return nil, beep.Format{}, err
	}
	return wavDecoder(io.NopCloser(bytes.NewReader(data)))
}

// decodeAudioFileSamples decodes an entire audio file into mono
// normalized samples. Used by the file-backed capture device; whole
// songs fit comfortably in memory.
func decodeAudioFileSamples(filePath string) ([]float64, int, error) {
	if strings.HasSuffix(filePath, ".ogg") {
		return decodeVorbisFileSamples(filePath)
	} else if strings.HasSuffix(filePath, ".wav") {
		return decodeStreamedFileSamples(filePath)
	}
	return nil, 0, errors.Errorf("unsupported audio file %s", filePath)
}

func decodeVorbisFileSamples(filePath string) (samples []float64, sampleRate int, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "ogg/vorbis")
		}
	}()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	data, format, err := oggvorbis.ReadAll(file)
	if err != nil {
		return nil, 0, err
	}

	channels := format.Channels
	if channels < 1 {
		return nil, 0, errors.New("no audio channels")
	}

	samples = make([]float64, len(data)/channels)
	for i := range samples {
		sum := float32(0)
		for c := 0; c < channels; c++ {
			sum += data[i*channels+c]
		}
		samples[i] = float64(sum) / float64(channels)
	}
	return samples, format.SampleRate, nil
}

func decodeStreamedFileSamples(filePath string) ([]float64, int, error) {
	stream, format, err := openAudioFile(filePath)
	if err != nil {
		return nil, 0, err
	}
	defer closeStreamSeeker(stream)

	var samples []float64
	buf := make([][2]float64, 512)
	for {
		n, ok := stream.Stream(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, (buf[i][0]+buf[i][1])/2)
		}
		if !ok {
			break
		}
	}
	return samples, int(format.SampleRate), nil
}

func bufferStreamer(streamer beep.Streamer, format beep.Format) beep.StreamSeeker {
	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer.Streamer(0, buffer.Len())
}

func closeStreamSeeker(streamer beep.Streamer) {
	closer, ok := streamer.(beep.StreamSeekCloser)
	if ok && closer != nil {
		closer.Close()
	}
}
