package main

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	songPathEnvVar        = "KARAOKE_SONGS_PATH"
	dbPathEnvVar          = "KARAOKE_DB_PATH"
	difficultyEnvVar      = "KARAOKE_DIFFICULTY"
	detectorEnvVar        = "KARAOKE_PITCH_DETECTOR"
	captureSourceEnvVar   = "KARAOKE_CAPTURE_SOURCE"
	captureRateEnvVar     = "KARAOKE_CAPTURE_RATE"
	captureFrameEnvVar    = "KARAOKE_CAPTURE_FRAME_SIZE"
	tickIntervalEnvVar    = "KARAOKE_TICK_MS"
	remoteControlEnvVar   = "KARAOKE_REMOTE_FIFO"
	visibleWindowMsEnvVar = "KARAOKE_NOTE_WINDOW_MS"
)

const (
	detectorStrategyYin          = "yin"
	detectorStrategyZeroCrossing = "zerocross"
)

type gameConfig struct {
	songsRootPath     string
	dbPath            string
	difficulty        difficulty
	detectorStrategy  string
	captureSource     string
	sampleRate        int
	frameSize         int
	tickInterval      time.Duration
	visibleWindowMs   int
	remoteControlPath string
}

// loadConfig reads the game configuration from the environment, with an
// optional .env file alongside the binary.
func loadConfig() gameConfig {
	err := godotenv.Load()
	if err != nil {
		log.Debug("No .env file found, using environment variables and defaults")
	}

	cfg := gameConfig{
		songsRootPath:     os.Getenv(songPathEnvVar),
		dbPath:            os.Getenv(dbPathEnvVar),
		difficulty:        parseDifficulty(getEnv(difficultyEnvVar, "medium")),
		detectorStrategy:  getEnv(detectorEnvVar, detectorStrategyYin),
		captureSource:     getEnv(captureSourceEnvVar, "sine:440"),
		sampleRate:        getEnvInt(captureRateEnvVar, 44100),
		frameSize:         getEnvInt(captureFrameEnvVar, 2048),
		tickInterval:      time.Duration(getEnvInt(tickIntervalEnvVar, 50)) * time.Millisecond,
		visibleWindowMs:   getEnvInt(visibleWindowMsEnvVar, 4000),
		remoteControlPath: os.Getenv(remoteControlEnvVar),
	}

	if cfg.detectorStrategy != detectorStrategyYin && cfg.detectorStrategy != detectorStrategyZeroCrossing {
		log.Warn("Unknown pitch detector strategy, falling back to yin", "strategy", cfg.detectorStrategy)
		cfg.detectorStrategy = detectorStrategyYin
	}

	return cfg
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("Ignoring non-numeric config value", "key", key, "value", v)
		return fallback
	}
	return n
}
