package main

import (
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/pkg/errors"
)

type loadSongModel struct {
	chartFolderPath    string
	config             gameConfig
	spinner            spinner.Model
	chart              *loadedChartMsg
	backingTrack       *loadedBackingTrackMsg
	capture            *captureOpenedMsg
	menuList           *list.Model
	selectedDifficulty *difficulty
	backout            bool
	speaker            *tkSpeaker
}

type loadedChartMsg struct {
	chart *songChart
	hash  string
	err   error
}

type loadedBackingTrackMsg struct {
	track playableSound[beep.StreamSeeker]
	err   error
}

type captureOpenedMsg struct {
	device captureDevice
	err    error
}

type difficultyListItem struct {
	difficulty difficulty
}

func (i difficultyListItem) Title() string       { return i.difficulty.String() }
func (i difficultyListItem) Description() string { return "" }
func (i difficultyListItem) FilterValue() string { return i.difficulty.String() }

func initialLoadModel(chartFolderPath string, cfg gameConfig, spkr *tkSpeaker) loadSongModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	listItems := []list.Item{
		difficultyListItem{difficultyEasy},
		difficultyListItem{difficultyMedium},
		difficultyListItem{difficultyHard},
	}
	menuList := list.New(listItems, createListDd(false), 0, 0)
	menuList.Title = "Difficulty"
	menuList.SetSize(25, 8)
	menuList.SetShowStatusBar(false)
	menuList.SetFilteringEnabled(false)
	menuList.SetShowHelp(false)
	menuList.DisableQuitKeybindings()
	styleList(&menuList)
	setupKeymapForList(&menuList)
	menuList.Select(int(cfg.difficulty))

	return loadSongModel{
		chartFolderPath: chartFolderPath,
		config:          cfg,
		spinner:         s,
		menuList:        &menuList,
		speaker:         spkr,
	}
}

func (m loadSongModel) Init() tea.Cmd {
	return tea.Batch(
		loadChartCmd(m.chartFolderPath),
		loadBackingTrackCmd(m.chartFolderPath, m.speaker),
		openCaptureDeviceCmd(m.config),
		m.spinner.Tick)
}

func loadChartCmd(chartFolderPath string) tea.Cmd {
	return func() tea.Msg {
		chartPath := filepath.Join(chartFolderPath, songChartFileName)
		chart, err := loadSongChartFromFile(chartPath)
		if err != nil {
			return loadedChartMsg{nil, "", err}
		}
		hash, err := hashFileByPath(chartPath)
		return loadedChartMsg{chart, hash, err}
	}
}

func loadBackingTrackCmd(chartFolderPath string, spkr *tkSpeaker) tea.Cmd {
	return func() tea.Msg {
		track, err := loadBackingTrack(chartFolderPath, spkr)
		return loadedBackingTrackMsg{track, err}
	}
}

func loadBackingTrack(chartFolderPath string, spkr *tkSpeaker) (playableSound[beep.StreamSeeker], error) {
	for _, fileName := range []string{"song.ogg", "song.wav"} {
		filePath := filepath.Join(chartFolderPath, fileName)
		if !fileExists(filePath) {
			continue
		}
		stream, format, err := openAudioFile(filePath)
		if err != nil {
			return playableSound[beep.StreamSeeker]{}, err
		}
		return spkr.resampleIntoBuffer(stream, format), nil
	}
	return playableSound[beep.StreamSeeker]{}, errors.Errorf("no song.ogg or song.wav in %s", chartFolderPath)
}

// openCaptureDeviceCmd opens the microphone. Never retried
// automatically: a failure sits on screen until the user presses r.
func openCaptureDeviceCmd(cfg gameConfig) tea.Cmd {
	return func() tea.Msg {
		device, err := openConfiguredCaptureDevice(cfg)
		if err != nil {
			return captureOpenedMsg{nil, err}
		}
		err = device.open()
		if err != nil {
			return captureOpenedMsg{nil, err}
		}
		return captureOpenedMsg{device, nil}
	}
}

func (m loadSongModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	sm, scmd := m.spinner.Update(msg)
	m.spinner = sm

	switch msg := msg.(type) {
	case loadedChartMsg:
		m.chart = &msg
	case loadedBackingTrackMsg:
		m.backingTrack = &msg
	case captureOpenedMsg:
		m.capture = &msg
		if msg.err != nil {
			log.Error("Microphone open failed", "err", msg.err)
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			item, ok := m.menuList.SelectedItem().(difficultyListItem)
			if ok {
				d := item.difficulty
				m.selectedDifficulty = &d
			}
		case "r":
			if m.capture != nil && m.capture.err != nil {
				m.capture = nil
				return m, openCaptureDeviceCmd(m.config)
			}
		case "backspace", "esc":
			m.backout = true
		default:
			menuList, _ := m.menuList.Update(msg)
			m.menuList = &menuList
		}
	}
	return m, scmd
}

func (m loadSongModel) micFailed() bool {
	return m.capture != nil && m.capture.err != nil
}

func (m loadSongModel) micFailureMessage() string {
	if !m.micFailed() {
		return ""
	}
	switch {
	case errors.Is(m.capture.err, errPermissionDenied):
		return "Microphone permission denied. Press r to retry."
	case errors.Is(m.capture.err, errDeviceUnavailable):
		return "No microphone available. Press r to retry."
	}
	return "Microphone error: " + m.capture.err.Error() + ". Press r to retry."
}

func (m loadSongModel) finishedLoading() bool {
	return m.chart != nil && m.chart.err == nil &&
		m.backingTrack != nil && m.backingTrack.err == nil &&
		m.capture != nil && m.capture.err == nil
}

func (m loadSongModel) finishedSuccessfully() bool {
	return m.finishedLoading() && m.selectedDifficulty != nil
}
