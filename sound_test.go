package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestGetAudioDecoderForFile(t *testing.T) {
	if getAudioDecoderForFile("song.ogg") == nil {
		t.Error("Expected a decoder for ogg files")
	}
	if getAudioDecoderForFile("song.wav") == nil {
		t.Error("Expected a decoder for wav files")
	}
	if getAudioDecoderForFile("song.mp3") != nil {
		t.Error("Expected no decoder for mp3 files")
	}
}

func TestOpenEmbeddedAudioFile(t *testing.T) {
	stream, format, err := openEmbeddedAudioFile("finished.wav")
	if err != nil {
		t.Fatal("Expected embedded sound to decode, got", err)
	}
	defer closeStreamSeeker(stream)

	if format.SampleRate <= 0 {
		t.Error("Expected a positive sample rate, got", format.SampleRate)
	}
	if stream.Len() <= 0 {
		t.Error("Expected a non-empty stream, got", stream.Len())
	}
}

func TestOpenEmbeddedAudioFileMissing(t *testing.T) {
	_, _, err := openEmbeddedAudioFile("does-not-exist.wav")
	if err == nil {
		t.Error("Expected an error for a missing embedded sound")
	}
}

func TestOpenAudioFileUnsupported(t *testing.T) {
	_, _, err := openAudioFile("song.mp3")
	if err == nil {
		t.Error("Expected an error for an unsupported format")
	}
}

func TestDecodeAudioFileSamples(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "tone.wav")

	data, err := readAsset(filepath.Join("sounds", "finished.wav"))
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filePath, data, 0644)
	if err != nil {
		t.Fatal(err)
	}

	samples, sampleRate, err := decodeAudioFileSamples(filePath)
	if err != nil {
		t.Fatal("Expected wav file to decode, got", err)
	}
	if sampleRate != 44100 {
		t.Error("Expected 44100 sample rate, got", sampleRate)
	}
	if len(samples) == 0 {
		t.Fatal("Expected samples")
	}

	peak := float64(0)
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(s))
	}
	if peak < 0.05 {
		t.Error("Expected audible samples, got peak", peak)
	}
}
