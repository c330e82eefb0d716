package main

import (
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

func pauseKeyMsg() tea.Msg {
	return tea.KeyMsg{Type: tea.KeyEsc}
}

// manualClock drives the pipeline deterministically in tests.
type manualClock struct {
	ms int
}

func (c *manualClock) nowMs() int {
	return c.ms
}

func testGameConfig() gameConfig {
	return gameConfig{
		difficulty:       difficultyMedium,
		detectorStrategy: detectorStrategyYin,
		sampleRate:       44100,
		frameSize:        2048,
		tickInterval:     50 * time.Millisecond,
		visibleWindowMs:  4000,
	}
}

func twoNoteChart(t *testing.T) *songChart {
	chart := parseTestChart(t, `{
		"title": "Sing Test",
		"lines": [
			{
				"notes": [
					{"startTime": 1000, "duration": 500, "pitch": 69, "lyric": "first"},
					{"startTime": 2000, "duration": 500, "pitch": 69, "lyric": "second"}
				]
			}
		]
	}`)
	return chart
}

func pitchedEstimate(midi float64) pitchEstimate {
	return pitchEstimate{
		frequency: midiToFrequency(midi),
		hasPitch:  true,
		clarity:   0.9,
		volume:    0.8,
	}
}

func TestSingingTheRightPitchScoresTheNote(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())

	m.latestEstimate = pitchedEstimate(69)
	m = m.processTick(1020)

	if m.player.notesHit != 1 {
		t.Fatal("Expected 1 note hit, got", m.player.notesHit)
	}
	if m.lastEval == nil || m.lastEval.rating != ratingPerfect {
		t.Error("Expected perfect rating for on-pitch on-time sample")
	}
	if m.player.score == 0 {
		t.Error("Expected points awarded")
	}
	if m.player.combo != 1 {
		t.Error("Expected combo 1, got", m.player.combo)
	}
}

func TestNoteIsScoredAtMostOnce(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())

	m.latestEstimate = pitchedEstimate(69)
	m = m.processTick(1020)
	scoreAfterFirst := m.player.score

	// further pitched samples inside the same note change nothing
	m = m.processTick(1100)
	m = m.processTick(1200)

	if m.player.score != scoreAfterFirst {
		t.Error("Expected score unchanged on repeated samples, got", m.player.score)
	}
	if m.player.notesHit != 1 {
		t.Error("Expected 1 note hit, got", m.player.notesHit)
	}
}

func TestUnsungNoteBecomesMiss(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())

	// no pitch ever arrives; move past the first note's window
	m = m.processTick(500)
	m = m.processTick(1400)
	if m.player.notesMissed != 0 {
		t.Fatal("Expected no miss while the window is still open")
	}

	m = m.processTick(1700)
	if m.player.notesMissed != 1 {
		t.Error("Expected 1 missed note, got", m.player.notesMissed)
	}
	if m.player.combo != 0 {
		t.Error("Expected combo 0, got", m.player.combo)
	}
}

func TestOffPitchSampleIsMissButConsumesNote(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())

	// 5 semitones off, well outside the medium tolerance
	m.latestEstimate = pitchedEstimate(74)
	m = m.processTick(1020)

	if m.player.notesMissed != 1 {
		t.Error("Expected off-pitch sample recorded as miss, got", m.player.notesMissed)
	}

	// singing correctly afterwards must not rescore the note
	m.latestEstimate = pitchedEstimate(69)
	m = m.processTick(1100)
	if m.player.notesHit != 0 {
		t.Error("Expected note not rescored after a miss")
	}
}

func TestSongFinishesAfterTail(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())

	m = m.processTick(2500)
	if m.finished {
		t.Fatal("Expected song still running at the last note")
	}

	m = m.processTick(2500 + songFinishTailMs + 1)
	if !m.finished {
		t.Error("Expected song finished past the tail")
	}
}

func TestStarPowerDrainsAcrossTicks(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())
	m.player.starPower.charge(100)
	m = m.processTick(0)
	m = m.activateStarPower()

	if !m.player.starPower.isActive {
		t.Fatal("Expected star power active")
	}

	// 1 second at 20%/s
	m = m.processTick(1000)
	if math.Abs(m.player.starPower.meter-80) > 0.001 {
		t.Error("Expected meter at 80 after 1s, got", m.player.starPower.meter)
	}

	m = m.processTick(6000)
	if m.player.starPower.isActive {
		t.Error("Expected star power ended after the meter drained")
	}
}

func TestResultAggregatesPlayerState(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())
	m.chartHash = "abc123"

	m.latestEstimate = pitchedEstimate(69)
	m = m.processTick(1020)
	m = m.processTick(2020)

	result := m.result()
	if result.notesHit != 2 {
		t.Error("Expected 2 notes hit, got", result.notesHit)
	}
	if result.notesTotal != 2 {
		t.Error("Expected 2 notes total, got", result.notesTotal)
	}
	if result.songHash != "abc123" {
		t.Error("Expected chart hash on result, got", result.songHash)
	}
	if result.score != m.player.score {
		t.Error("Expected result score to match player score")
	}
	if result.accuracy != 100 {
		t.Error("Expected 100% accuracy, got", result.accuracy)
	}
}

func TestTickPipelineWithLiveCaptureSession(t *testing.T) {
	cfg := testGameConfig()
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), cfg)

	device := &sineToneDevice{frequency: 440, sampleRate: cfg.sampleRate, frameSize: cfg.frameSize}
	m.session = newCaptureSession(device)
	clock := &manualClock{ms: 1050}
	m.clockOverride = clock

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Expected a tick command from Init")
	}
	defer m.destroy()

	// A4 is MIDI 69, matching the chart note. The producer goroutine
	// needs a moment to deliver the first frame.
	deadline := time.Now().Add(2 * time.Second)
	for m.player.notesHit == 0 && time.Now().Before(deadline) {
		updated, _ := m.Update(singTickMsg(time.Now()))
		m = updated.(singSongModel)
		time.Sleep(time.Millisecond)
	}

	if m.player.notesHit != 1 {
		t.Fatal("Expected the sine tone to hit the note, got", m.player.notesHit, "hits")
	}
	if m.lastEval.rating == ratingMiss {
		t.Error("Expected a non-miss rating, got", m.lastEval.rating)
	}
	if !m.latestEstimate.hasPitch {
		t.Error("Expected a pitch estimate from the live session")
	}
}

func TestRemoteCommandPausesAndActivatesStarPower(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())

	updated, _ := m.Update(remoteCommandMsg{remoteCommandPause})
	m = updated.(singSongModel)
	if !m.paused {
		t.Error("Expected remote pause to pause the game")
	}

	// unpause with the keyboard, then fire star power remotely
	updated, _ = m.Update(pauseKeyMsg())
	m = updated.(singSongModel)
	if m.paused {
		t.Error("Expected key press to resume")
	}

	m.player.starPower.charge(100)
	updated, _ = m.Update(remoteCommandMsg{remoteCommandStarPower})
	m = updated.(singSongModel)
	if !m.player.starPower.isActive {
		t.Error("Expected remote command to activate star power")
	}
}

func TestRemoteCommandPlayResumes(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())

	updated, _ := m.Update(remoteCommandMsg{remoteCommandPause})
	m = updated.(singSongModel)
	if !m.paused {
		t.Fatal("Expected remote pause to pause the game")
	}

	updated, _ = m.Update(remoteCommandMsg{remoteCommandPlay})
	m = updated.(singSongModel)
	if m.paused {
		t.Error("Expected remote play to resume")
	}
}

func TestRemoteCommandNextSkipsSong(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())

	updated, _ := m.Update(remoteCommandMsg{remoteCommandNext})
	m = updated.(singSongModel)

	if !m.finished {
		t.Error("Expected skip to finish the song")
	}
	if m.player.notesMissed != 2 {
		t.Error("Expected unsung notes counted as misses, got", m.player.notesMissed)
	}
}

func TestRemoteVolumeCommands(t *testing.T) {
	m := createSingModelFromChart(twoNoteChart(t), newPlayerProfile("test"), testGameConfig())

	// harmless without a backing track
	updated, _ := m.Update(remoteCommandMsg{remoteCommandVolumeUp})
	m = updated.(singSongModel)

	m.songVolumeCtrl = &effects.Volume{Streamer: beep.Silence(-1), Base: 2}
	updated, _ = m.Update(remoteCommandMsg{remoteCommandVolumeUp})
	m = updated.(singSongModel)
	if m.songVolumeCtrl.Volume != 0.5 {
		t.Error("Expected volume raised to 0.5, got", m.songVolumeCtrl.Volume)
	}

	for i := 0; i < 10; i++ {
		updated, _ = m.Update(remoteCommandMsg{remoteCommandVolumeDown})
		m = updated.(singSongModel)
	}
	if !m.songVolumeCtrl.Silent {
		t.Error("Expected deep negative volume to mute the track")
	}
}
