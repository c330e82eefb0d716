package main

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(songPathEnvVar, "/tmp/songs")
	t.Setenv(difficultyEnvVar, "")
	t.Setenv(detectorEnvVar, "")
	t.Setenv(captureRateEnvVar, "")
	t.Setenv(tickIntervalEnvVar, "")

	cfg := loadConfig()

	if cfg.songsRootPath != "/tmp/songs" {
		t.Error("Expected songs root from env, got", cfg.songsRootPath)
	}
	if cfg.difficulty != difficultyMedium {
		t.Error("Expected medium difficulty by default, got", cfg.difficulty)
	}
	if cfg.detectorStrategy != detectorStrategyYin {
		t.Error("Expected yin detector by default, got", cfg.detectorStrategy)
	}
	if cfg.sampleRate != 44100 {
		t.Error("Expected 44100 sample rate by default, got", cfg.sampleRate)
	}
	if cfg.tickInterval != 50*time.Millisecond {
		t.Error("Expected 50ms tick by default, got", cfg.tickInterval)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv(difficultyEnvVar, "hard")
	t.Setenv(detectorEnvVar, "zerocross")
	t.Setenv(captureRateEnvVar, "48000")
	t.Setenv(tickIntervalEnvVar, "20")

	cfg := loadConfig()

	if cfg.difficulty != difficultyHard {
		t.Error("Expected hard difficulty, got", cfg.difficulty)
	}
	if cfg.detectorStrategy != detectorStrategyZeroCrossing {
		t.Error("Expected zerocross detector, got", cfg.detectorStrategy)
	}
	if cfg.sampleRate != 48000 {
		t.Error("Expected 48000 sample rate, got", cfg.sampleRate)
	}
	if cfg.tickInterval != 20*time.Millisecond {
		t.Error("Expected 20ms tick, got", cfg.tickInterval)
	}
}

func TestLoadConfigRejectsUnknownDetector(t *testing.T) {
	t.Setenv(detectorEnvVar, "fourier-dreams")

	cfg := loadConfig()

	if cfg.detectorStrategy != detectorStrategyYin {
		t.Error("Expected fallback to yin, got", cfg.detectorStrategy)
	}
}

func TestParseDifficulty(t *testing.T) {
	if parseDifficulty("easy") != difficultyEasy {
		t.Error("Expected easy")
	}
	if parseDifficulty("hard") != difficultyHard {
		t.Error("Expected hard")
	}
	if parseDifficulty("medium") != difficultyMedium {
		t.Error("Expected medium")
	}
	if parseDifficulty("nightmare") != difficultyMedium {
		t.Error("Expected unknown difficulty to default to medium")
	}
}
