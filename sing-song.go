package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

// leadInMs is how long the chart scrolls before the song audio starts.
const leadInMs = 3000

// songFinishTailMs keeps the screen up briefly after the last note.
const songFinishTailMs = 2000

// playbackClock is the external monotonic time source the pipeline
// samples each tick, in ms since song start. Tick intervals are jittery
// and never assumed fixed.
type playbackClock interface {
	nowMs() int
}

type singSongModel struct {
	chart     *songChart
	allNotes  []chartNote
	songInfo  songInfo
	chartHash string

	config   gameConfig
	detector pitchDetector
	session  *captureSession
	player   player
	profile  playerProfile

	startTime      time.Time
	currentTimeMs  int
	lastTickTimeMs int
	clockOverride  playbackClock

	paused         bool
	lastPausedTime time.Time
	totalPauseTime time.Duration

	latestEstimate pitchEstimate
	lastEval       *noteEvaluation
	lastEvalTimeMs int
	scoredNotes    map[int]bool

	finished     bool
	stopped      bool
	startedMusic bool

	backingTrack   playableSound[beep.StreamSeeker]
	songSoundCtrl  playableSound[*beep.Ctrl]
	songVolumeCtrl *effects.Volume
	speaker        soundPlayer
}

type singTickMsg time.Time

func singTimerCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return singTickMsg(t)
	})
}

func createSingModelFromLoadModel(lm loadSongModel, profile playerProfile, cfg gameConfig) singSongModel {
	model := createSingModelFromChart(lm.chart.chart, profile, cfg)
	model.songInfo = songInfo{lm.chartFolderPath, *lm.selectedDifficulty}
	model.config.difficulty = *lm.selectedDifficulty
	model.chartHash = lm.chart.hash

	model.session = newCaptureSession(lm.capture.device)
	model.backingTrack = lm.backingTrack.track

	ctrl := &beep.Ctrl{Streamer: model.backingTrack.soundStream}
	model.songSoundCtrl = playableSound[*beep.Ctrl]{ctrl, lm.backingTrack.track.format}
	model.songVolumeCtrl = &effects.Volume{Streamer: ctrl, Base: 2}

	model.speaker = lm.speaker
	model.startTime = time.Now()

	return model
}

func createSingModelFromChart(chart *songChart, profile playerProfile, cfg gameConfig) singSongModel {
	var allNotes []chartNote
	for _, line := range chart.lines {
		allNotes = append(allNotes, line.notes...)
	}

	return singSongModel{
		chart:          chart,
		allNotes:       allNotes,
		config:         cfg,
		detector:       newPitchDetector(cfg.detectorStrategy),
		profile:        profile,
		player:         newPlayer(profile),
		scoredNotes:    make(map[int]bool),
		lastTickTimeMs: -leadInMs,
		currentTimeMs:  -leadInMs,
	}
}

func (m singSongModel) Init() tea.Cmd {
	if m.session != nil {
		err := m.session.start()
		if err != nil {
			// the load screen verified the device opens; a failure here
			// means it vanished in between
			log.Error("Capture session failed to start", "err", err)
		}
	}
	return singTimerCmd(m.config.tickInterval)
}

// currentPlaybackTimeMs samples the playback clock.
func (m singSongModel) currentPlaybackTimeMs() int {
	if m.clockOverride != nil {
		return m.clockOverride.nowMs()
	}
	elapsed := time.Since(m.startTime) - m.totalPauseTime
	return int(elapsed/time.Millisecond) - leadInMs
}

func (m singSongModel) isPauseMsg(msg tea.Msg) bool {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return false
	}
	button := keyMsg.String()
	return button == "esc" || button == "enter"
}

func (m singSongModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.paused {
		switch msg.(type) {
		case singTickMsg:
			return m, singTimerCmd(m.config.tickInterval)
		}

		remote, isRemote := msg.(remoteCommandMsg)
		if m.isPauseMsg(msg) || (isRemote && remote.command == remoteCommandPlay) {
			m.totalPauseTime += time.Since(m.lastPausedTime)
			m.paused = false
			m.setMusicPaused(false)
		}

		return m, nil
	}

	if m.isPauseMsg(msg) {
		m.lastPausedTime = time.Now()
		m.paused = true
		m.setMusicPaused(true)
		return m, nil
	}

	switch msg := msg.(type) {
	case singTickMsg:
		m = m.processTick(m.currentPlaybackTimeMs())
		if m.finished {
			m.destroy()
			return m, nil
		}
		return m, singTimerCmd(m.config.tickInterval)
	case tea.KeyMsg:
		if msg.String() == " " || msg.String() == "space" {
			m = m.activateStarPower()
		}
	case remoteCommandMsg:
		switch msg.command {
		case remoteCommandPause:
			m.lastPausedTime = time.Now()
			m.paused = true
			m.setMusicPaused(true)
		case remoteCommandStarPower:
			m = m.activateStarPower()
		case remoteCommandNext:
			// skip the rest of the song; unsung notes count as misses
			for _, note := range m.allNotes {
				if !m.scoredNotes[note.id] {
					eval := evaluateNote(note, 0, false, float64(m.currentTimeMs), m.config.difficulty, m.player)
					m = m.applyEvaluation(note, eval, m.currentTimeMs)
				}
			}
			m.finished = true
			m.destroy()
		case remoteCommandVolumeUp:
			m.adjustMusicVolume(0.5)
		case remoteCommandVolumeDown:
			m.adjustMusicVolume(-0.5)
		}
	}
	return m, nil
}

// processTick runs one iteration of the capture → estimate → score
// pipeline at the given playback time. There is never more than one
// tick's work in flight: the next tick is only scheduled after this
// returns.
func (m singSongModel) processTick(nowMs int) singSongModel {
	elapsedMs := nowMs - m.lastTickTimeMs
	m.lastTickTimeMs = nowMs
	m.currentTimeMs = nowMs

	if m.player.starPower.isActive {
		m.player.starPower.drain(float64(elapsedMs))
	}

	if !m.startedMusic && nowMs >= 0 && m.speaker != nil && m.songVolumeCtrl != nil {
		log.Info("Starting song music")
		m.speaker.play(m.songVolumeCtrl, m.songSoundCtrl.format)
		m.startedMusic = true
	}

	if m.session != nil {
		frame, ok := m.session.nextFrame()
		if ok {
			m.latestEstimate = m.detector.estimate(frame)
		}
	}

	m = m.scoreCurrentNote(nowMs)
	m = m.processMissedNotes(nowMs)

	if nowMs > m.chart.endTimeMs()+songFinishTailMs {
		m.finished = true
	}

	return m
}

// scoreCurrentNote scores the active note against the latest pitch
// estimate. Each note is evaluated at most once, on the first pitched
// sample that lands inside its interval.
func (m singSongModel) scoreCurrentNote(nowMs int) singSongModel {
	if !m.latestEstimate.hasPitch {
		return m
	}

	note, ok := m.chart.activeNoteAt(nowMs)
	if !ok || m.scoredNotes[note.id] {
		return m
	}

	sungSemitone := frequencyToMidi(m.latestEstimate.frequency)
	eval := evaluateNote(note, sungSemitone, true, float64(nowMs), m.config.difficulty, m.player)
	m = m.applyEvaluation(note, eval, nowMs)
	return m
}

// processMissedNotes records a miss for every note whose scoring window
// has passed without an evaluation.
func (m singSongModel) processMissedNotes(nowMs int) singSongModel {
	tolerance := int(m.config.difficulty.settings().timingToleranceMs)
	for _, note := range m.allNotes {
		if note.startTimeMs > nowMs {
			break
		}
		if m.scoredNotes[note.id] || note.endTimeMs()+tolerance >= nowMs {
			continue
		}
		eval := evaluateNote(note, 0, false, float64(nowMs), m.config.difficulty, m.player)
		m = m.applyEvaluation(note, eval, nowMs)
	}
	return m
}

func (m singSongModel) applyEvaluation(note chartNote, eval noteEvaluation, nowMs int) singSongModel {
	m.scoredNotes[note.id] = true
	updatePlayerStats(&m.player, note, eval)
	m.lastEval = &eval
	m.lastEvalTimeMs = nowMs
	return m
}

func (m singSongModel) activateStarPower() singSongModel {
	if m.player.starPower.activate() {
		log.Info("Star power activated")
	}
	return m
}

func (m singSongModel) allNotesScored() bool {
	return len(m.scoredNotes) == len(m.allNotes)
}

func (m singSongModel) result() gameResult {
	durationMs := m.chart.endTimeMs()
	return m.player.result(m.chartHash, m.config.difficulty, len(m.allNotes), durationMs)
}

// adjustMusicVolume shifts the backing track volume by delta in
// half-steps of the exponential base. Singing scoring is unaffected.
func (m singSongModel) adjustMusicVolume(delta float64) {
	if m.songVolumeCtrl == nil {
		return
	}
	speaker.Lock()
	m.songVolumeCtrl.Volume += delta
	m.songVolumeCtrl.Silent = m.songVolumeCtrl.Volume < -4
	speaker.Unlock()
}

func (m singSongModel) setMusicPaused(paused bool) {
	if m.songSoundCtrl.soundStream == nil {
		// for unit tests to work
		return
	}
	speaker.Lock()
	m.songSoundCtrl.soundStream.Paused = paused
	speaker.Unlock()
}

// destroy releases the capture session and playback resources. Safe to
// call more than once.
func (m *singSongModel) destroy() {
	if m.stopped {
		return
	}
	m.stopped = true
	if m.session != nil {
		m.session.stop()
	}
	if m.speaker != nil {
		m.speaker.clear()
	}
}

func (m singSongModel) OnQuit() {
	m.destroy()
}
