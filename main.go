package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type sessionState int

const (
	initialLoad sessionState = iota
	chooseProfile
	chooseSong
	loadSong
	singSong
	statsScreen
)

type mainModel struct {
	state              sessionState
	selectProfileModel selectProfileModel
	selectSongModel    selectSongModel
	loadSongModel      loadSongModel
	singSongModel      singSongModel
	statsScreenModel   statsScreenModel
	config             gameConfig
	dbAccessor         tkDbAccessor
	profile            playerProfile
	speaker            *tkSpeaker
}

func initialMainModel(cfg gameConfig) mainModel {
	if cfg.songsRootPath == "" {
		panic(songPathEnvVar + " environment variable not set")
	}

	return mainModel{
		state:   initialLoad,
		config:  cfg,
		speaker: &tkSpeaker{},
	}
}

func (m mainModel) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, initializeDbCmd(m.config))
}

type dbInitializedMsg struct {
	dbAccessor tkDbAccessor
	err        error
}

func initializeDbCmd(cfg gameConfig) tea.Cmd {
	return func() tea.Msg {
		db, err := openDefaultDbConnection(cfg)
		if err != nil {
			return dbInitializedMsg{nil, err}
		}
		_, err = db.migrateDatabase()
		if err != nil {
			return dbInitializedMsg{nil, err}
		}
		return dbInitializedMsg{db, nil}
	}
}

func (m mainModel) onQuit() {
	m.singSongModel.OnQuit()
	if m.dbAccessor != nil {
		m.dbAccessor.close()
	}
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if isForceQuitMsg(msg) {
		log.Info("Force quit")
		m.onQuit()
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case dbInitializedMsg:
		if msg.err != nil {
			panic(msg.err)
		}
		m.dbAccessor = msg.dbAccessor
		m.selectProfileModel = initialSelectProfileModel(m.dbAccessor)
		m.state = chooseProfile
		return m, m.selectProfileModel.Init()
	}

	switch m.state {
	case chooseProfile:
		profileModel, cmd := m.selectProfileModel.Update(msg)
		pm := profileModel.(selectProfileModel)
		if pm.selectedProfile != nil {
			m.profile = *pm.selectedProfile
			m.selectSongModel = initialSelectSongModel(m.config.songsRootPath, m.dbAccessor, m.config.difficulty, m.speaker)
			m.state = chooseSong
			return m, m.selectSongModel.Init()
		}
		m.selectProfileModel = pm
		return m, cmd
	case chooseSong:
		selectModel, cmd := m.selectSongModel.Update(msg)
		sm := selectModel.(selectSongModel)
		if sm.selectedSongPath != "" {
			loadModel := initialLoadModel(sm.selectedSongPath, m.config, m.speaker)
			lmCmd := loadModel.Init()
			m.state = loadSong
			m.loadSongModel = loadModel
			return m, lmCmd
		}
		m.selectSongModel = sm
		return m, cmd
	case loadSong:
		lm, cmd := m.loadSongModel.Update(msg)
		loadModel := lm.(loadSongModel)

		if loadModel.backout {
			if loadModel.capture != nil && loadModel.capture.device != nil {
				loadModel.capture.device.close()
			}
			m.state = chooseSong
			m.selectSongModel = initialSelectSongModel(m.config.songsRootPath, m.dbAccessor, m.config.difficulty, m.speaker)
			var err error
			var hsCmd tea.Cmd
			m.selectSongModel, hsCmd, err = m.selectSongModel.highlightSongAbsolutePath(loadModel.chartFolderPath)
			if err != nil {
				panic(err)
			}
			return m, tea.Batch(m.selectSongModel.Init(), hsCmd)
		} else if loadModel.finishedSuccessfully() {
			singModel := createSingModelFromLoadModel(loadModel, m.profile, m.config)
			smCmd := singModel.Init()
			m.state = singSong
			m.singSongModel = singModel
			return m, smCmd
		}
		m.loadSongModel = loadModel
		return m, cmd
	case singSong:
		singModel, cmd := m.singSongModel.Update(msg)
		sm := singModel.(singSongModel)

		if sm.finished {
			m.statsScreenModel = initialStatsScreenModel(sm.songInfo, sm.result(), m.config.songsRootPath, m.dbAccessor, m.speaker)
			m.state = statsScreen
			m.singSongModel = sm
			return m, m.statsScreenModel.Init()
		}

		m.singSongModel = sm

		return m, cmd
	case statsScreen:
		statsModel, cmd := m.statsScreenModel.Update(msg)
		m.statsScreenModel = statsModel.(statsScreenModel)
		if m.statsScreenModel.shouldContinue {
			m.statsScreenModel.destroy()

			m.selectSongModel = initialSelectSongModel(m.config.songsRootPath, m.dbAccessor, m.config.difficulty, m.speaker)
			m.state = chooseSong

			si := m.statsScreenModel.songInfo

			// navigate back to the song in the tree
			var err error
			var hsCmd tea.Cmd
			m.selectSongModel, hsCmd, err = m.selectSongModel.highlightSongAbsolutePath(si.fullFolderPath)

			if err != nil {
				panic(err)
			}
			return m, tea.Batch(m.selectSongModel.Init(), hsCmd)
		}
		return m, cmd
	}
	return m, nil
}

func (m mainModel) View() string {
	switch m.state {
	case initialLoad:
		return "Loading database..."
	case chooseProfile:
		return m.selectProfileModel.View()
	case chooseSong:
		return m.selectSongModel.View()
	case loadSong:
		return m.loadSongModel.View()
	case singSong:
		return m.singSongModel.View()
	case statsScreen:
		return m.statsScreenModel.View()
	}
	return "No view"
}

func isForceQuitMsg(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return true
		}
	}
	return false
}

func main() {
	f, err := tea.LogToFile("debug.log", "debug")
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	defer f.Close()

	cfg := loadConfig()

	p := tea.NewProgram(initialMainModel(cfg))

	if cfg.remoteControlPath != "" {
		startRemoteControlListener(cfg.remoteControlPath, p)
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v", err)
		os.Exit(1)
	}
}
