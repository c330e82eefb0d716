package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
)

type audioFileOpener interface {
	openAudioFile(filePath string) (beep.StreamSeeker, beep.Format, error)
}

type audioFileOpen struct{}

func (afo audioFileOpen) openAudioFile(filePath string) (beep.StreamSeeker, beep.Format, error) {
	return openAudioFile(filePath)
}

type selectSongModel struct {
	rootSongFolder               *songFolder
	selectedSongFolder           *songFolder
	rootPath                     string
	menuList                     list.Model
	selectedSongPath             string
	dbAccessor                   tkDbAccessor
	difficulty                   difficulty
	previewSound                 *sound
	defaultHighlightRelativePath string
	speaker                      soundPlayer
	audioFileOpener              audioFileOpener
	searchTi                     *textinput.Model
}

type previewDelayTickMsg struct {
	previewFilePath string
}

type previewSongLoadedMsg struct {
	previewFilePath string
	previewSound    sound
}

type previewSongLoadFailedMsg struct {
	previewFilePath string
	err             error
}

type songFoldersLoadedMsg struct {
	rootSongFolder *songFolder
}

func initialSelectSongModel(rootPath string, dbAccessor tkDbAccessor, diff difficulty, spkr soundPlayer) selectSongModel {
	model := selectSongModel{}

	menuList := list.New([]list.Item{}, createListDd(true), 0, 0)
	menuList.SetSize(70, 24)
	menuList.SetShowStatusBar(false)
	menuList.SetFilteringEnabled(false)
	menuList.SetShowHelp(false)
	menuList.DisableQuitKeybindings()
	styleList(&menuList)
	setupKeymapForList(&menuList)
	model.menuList = menuList

	model.dbAccessor = dbAccessor
	model.difficulty = diff
	model.rootPath = rootPath
	model.speaker = spkr
	model.audioFileOpener = audioFileOpen{}

	return model
}

func initializeSongFoldersCmd(rootPath string) tea.Cmd {
	return func() tea.Msg {
		return songFoldersLoadedMsg{loadSongFolder(rootPath)}
	}
}

// initializeHighscores fills in the best verified score for each leaf
// song in the folder so the list can show it.
func initializeHighscores(fldr *songFolder, dbAccessor tkDbAccessor, diff difficulty) {
	for _, f := range fldr.subFolders {
		if !f.isLeaf {
			continue
		}
		chartPath := f.chartFilePath()
		if !fileExists(chartPath) {
			continue
		}

		hash, err := hashFileByPath(chartPath)
		if err != nil {
			log.Warn("Could not hash song chart", "path", chartPath, "err", err)
			continue
		}

		best, found, err := dbAccessor.getVerifiedHighscore(hash, diff)
		if err != nil {
			log.Warn("Could not load highscore", "path", chartPath, "err", err)
			continue
		}
		f.best = best
		f.hasBest = found
	}
}

func (m selectSongModel) Init() tea.Cmd {
	return tea.Batch(initializeSongFoldersCmd(m.rootPath), textinput.Blink)
}

func (m selectSongModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.searchTi != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "esc":
				m.searchTi = nil
				return m, nil
			case "enter":
				searchText := strings.TrimSpace(m.searchTi.Value())
				m.searchTi = nil
				if searchText != "" && m.rootSongFolder != nil {
					results := m.rootSongFolder.search(searchText)
					if len(results) > 0 {
						return m.setSelectedSongFolder(results[0].parent, results[0])
					}
				}
				return m, nil
			}
		}
		ti, tiCmd := m.searchTi.Update(msg)
		m.searchTi = &ti
		return m, tiCmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			i, ok := m.menuList.SelectedItem().(*songFolder)
			if ok {
				if i.isLeaf {
					m = m.clearSongPreview()
					resultModel := selectSongModel{}
					resultModel.selectedSongPath = i.path
					return resultModel, nil
				}
				// setSelectedSongFolder also updates the preview sound
				return m.setSelectedSongFolder(i, nil)
			}
		case "ctrl+f":
			ti := textinput.New()
			ti.Placeholder = "Search..."
			ti.CharLimit = 100
			ti.Width = 30
			ti.Focus()
			m.searchTi = &ti
			return m, textinput.Blink
		case "backspace":
			if m.selectedSongFolder != nil && m.selectedSongFolder.parent != nil {
				return m.setSelectedSongFolder(m.selectedSongFolder.parent, m.selectedSongFolder)
			}
		default:
			var mlCmd tea.Cmd
			m.menuList, mlCmd = m.menuList.Update(msg)

			// trigger the preview sound when the user navigates to a different song
			m, spCmd := m.checkInitiateSongPreview()

			return m, tea.Batch(mlCmd, spCmd)
		}
	case previewSongLoadedMsg:
		hcf := m.highlightedChildFolder()
		if hcf != nil && hcf.previewFilePath() == msg.previewFilePath {
			m.speaker.play(msg.previewSound.soundStream, msg.previewSound.format)
			m.previewSound = &msg.previewSound
		} else {
			// no longer needed, the user is viewing a different song
			msg.previewSound.close()
		}
	case previewSongLoadFailedMsg:
		log.Debug("No song preview available", "path", msg.previewFilePath)
	case previewDelayTickMsg:
		hcf := m.highlightedChildFolder()
		if hcf != nil && hcf.previewFilePath() == msg.previewFilePath {
			return m, loadPreviewSongCmd(m.audioFileOpener, msg.previewFilePath)
		}
	case songFoldersLoadedMsg:
		if msg.rootSongFolder == nil {
			return m, nil
		}
		m.rootSongFolder = msg.rootSongFolder
		m.selectedSongFolder = m.rootSongFolder

		if m.defaultHighlightRelativePath != "" {
			m, cmd := m.highlightSongRelativePath(m.defaultHighlightRelativePath)
			m.defaultHighlightRelativePath = ""
			return m, cmd
		}
		return m.setSelectedSongFolder(m.rootSongFolder, nil)
	}

	return m, nil
}

func (m selectSongModel) setSelectedSongFolder(sf *songFolder, highlightedSubFolder *songFolder) (selectSongModel, tea.Cmd) {
	listItems := []list.Item{}
	for _, f := range sf.subFolders {
		listItems = append(listItems, f)
	}
	m.menuList.SetItems(listItems)

	relative, err := sf.relativePath()
	suffix := fmt.Sprintf(" (%d %s)", sf.songCount, pluralizeWithS(sf.songCount, "song"))
	if err != nil || relative == "" {
		m.menuList.Title = sf.name + suffix
	} else {
		m.menuList.Title = strings.Replace(relative, "\\", "/", -1) + suffix
	}

	m.selectedSongFolder = sf
	initializeHighscores(sf, m.dbAccessor, m.difficulty)

	indexOfHighlighted := 0
	if highlightedSubFolder != nil {
		for i, f := range sf.subFolders {
			if f == highlightedSubFolder {
				indexOfHighlighted = i
			}
		}
	}

	m.menuList.Select(indexOfHighlighted)

	return m.checkInitiateSongPreview()
}

func (m selectSongModel) checkInitiateSongPreview() (selectSongModel, tea.Cmd) {
	m = m.clearSongPreview()
	sf := m.highlightedChildFolder()
	if sf != nil && sf.isLeaf {
		if m.previewSound == nil || m.previewSound.filePath != sf.previewFilePath() {
			return m, tea.Tick(time.Second/4, func(t time.Time) tea.Msg {
				return previewDelayTickMsg{sf.previewFilePath()}
			})
		}
	}
	return m, nil
}

func (m selectSongModel) clearSongPreview() selectSongModel {
	if m.previewSound != nil {
		m.speaker.clear()
		m.previewSound.close()
		m.previewSound = nil
	}
	return m
}

func (m selectSongModel) highlightedChildFolder() *songFolder {
	item := m.menuList.SelectedItem()
	if item == nil {
		return nil
	}
	return item.(*songFolder)
}

func loadPreviewSongCmd(afo audioFileOpener, previewFilePath string) tea.Cmd {
	return func() tea.Msg {
		// load unbuffered stream
		s, format, err := afo.openAudioFile(previewFilePath)
		if err != nil {
			return previewSongLoadFailedMsg{previewFilePath, err}
		}
		return previewSongLoadedMsg{previewFilePath, sound{s, format, previewFilePath}}
	}
}

func (m selectSongModel) highlightSongAbsolutePath(absolutePath string) (selectSongModel, tea.Cmd, error) {
	relative, err := relativePath(absolutePath, m.rootPath)
	if err != nil {
		return m, nil, err
	}
	// navigate to the song in the tree
	m, cmd := m.highlightSongRelativePath(relative)
	return m, cmd, nil
}

func (m selectSongModel) highlightSongRelativePath(relative string) (selectSongModel, tea.Cmd) {
	folders := splitFolderPath(relative)
	if m.rootSongFolder == nil {
		m.defaultHighlightRelativePath = relative
		return m, nil
	}
	songFolder := m.rootSongFolder.queryFolder(folders)
	if songFolder != nil {
		return m.setSelectedSongFolder(songFolder.parent, songFolder)
	}

	return m, nil
}
