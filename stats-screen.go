package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/faiface/beep"
)

var performanceHeadlineStyle = lipgloss.NewStyle().
	Bold(true)

var resultHeadlineStyle = lipgloss.NewStyle().Inherit(performanceHeadlineStyle).
	Foreground(lipgloss.Color(logoColor))
var newBestStyle = lipgloss.NewStyle().Inherit(performanceHeadlineStyle).
	Foreground(lipgloss.Color(goldAccentColor))
var statsListStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(pinkAccentColor)).
	Padding(1, 4, 0, 4)

type statsScreenModel struct {
	songInfo        songInfo
	result          gameResult
	songRootPath    string
	saveResultError error
	isNewBest       bool
	shouldContinue  bool
	db              tkDbAccessor
	soundEffect     statsScreenSoundLoadedMsg
	speaker         soundPlayer
}

type statsScreenSoundLoadedMsg struct {
	sound sound
	err   error
}

func initialStatsScreenModel(si songInfo, result gameResult, songRootPath string, db tkDbAccessor, spkr soundPlayer) statsScreenModel {
	model := statsScreenModel{
		songInfo:     si,
		result:       result,
		songRootPath: songRootPath,
		db:           db,
		speaker:      spkr,
	}

	previousBest, hadBest, err := db.getVerifiedHighscore(result.songHash, result.difficulty)
	if err == nil {
		model.isNewBest = !hadBest || result.score > previousBest.Score
	}

	model.saveResultError = saveResult(db, si, result, songRootPath)

	return model
}

func saveResult(db tkDbAccessor, si songInfo, result gameResult, songRootPath string) error {
	relative, err := si.relativePath(songRootPath)
	if err != nil {
		return err
	}

	s := song{result.songHash, relative, si.songName()}

	return db.saveGameResult(s, result)
}

func loadStatsScreenSoundCmd() tea.Cmd {
	return func() tea.Msg {
		var ss beep.StreamSeeker
		var format beep.Format
		var err error
		ss, format, err = openEmbeddedAudioFile("finished.wav")
		return statsScreenSoundLoadedMsg{sound{ss, format, ""}, err}
	}
}

func (m statsScreenModel) destroy() {
	m.speaker.clear()
	m.soundEffect.sound.close()
}

func (m statsScreenModel) Init() tea.Cmd {
	return loadStatsScreenSoundCmd()
}

func (m statsScreenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.shouldContinue = true
		}
	case statsScreenSoundLoadedMsg:
		m.soundEffect = msg
		if msg.err != nil {
			return m, nil
		}
		m.speaker.play(m.soundEffect.sound.soundStream, m.soundEffect.sound.format)
	}
	return m, nil
}

func (m statsScreenModel) View() string {
	sb := strings.Builder{}

	sb.WriteString(resultHeadlineStyle.Render("Song complete!") + "\n")

	starCount := calcStarCount(m.result.accuracy)
	starLine := ""
	for i := 0; i < 5; i++ {
		if i < starCount {
			starLine += starStyle.Render("★") + "  "
		} else {
			starLine += grayStarStyle.Render("★") + "  "
		}
	}
	sb.WriteString(starLine + "\n")

	if m.isNewBest {
		sb.WriteString(newBestStyle.Render("New personal best!") + "\n")
	}

	sb.WriteRune('\n')

	sl := statsList{}
	sl.add("Song", m.songInfo.songName())
	sl.add("Difficulty", m.result.difficulty.String())
	sl.add("Score", fmt.Sprintf("%d", m.result.score))
	sl.add("Accuracy", fmt.Sprintf("%.1f%%", m.result.accuracy))
	sl.add("Notes hit", fmt.Sprintf("%d/%d", m.result.notesHit, m.result.notesTotal))
	sl.add("Best combo", fmt.Sprintf("%d", m.result.maxCombo))

	sb.WriteString(statsListStyle.Render(sl.View()))

	if m.saveResultError != nil {
		sb.WriteString(errorStyle.Render("\n\nError saving score: "+m.saveResultError.Error()) + "\n")
	}

	if m.soundEffect.err != nil {
		sb.WriteString(errorStyle.Render("\n\nError playing sound effect: "+m.soundEffect.err.Error()) + "\n")
	}

	sb.WriteString(lipgloss.NewStyle().Background(lipgloss.Color("#b6b3fc")).Foreground(lipgloss.Color("#000000")).
		Padding(1, 3, 1, 3).Margin(3, 1, 1, 2).Bold(true).Render("Press ENTER To continue"))

	return sb.String()
}

type statsLine struct {
	name  string
	value string
}

type statsList struct {
	lines []statsLine
}

func (l *statsList) add(name string, value string) {
	l.lines = append(l.lines, statsLine{name, value})
}

func (l statsList) View() string {
	sb := strings.Builder{}
	maxWidth := 0
	for _, line := range l.lines {
		width := lipgloss.Width(line.name)
		if width > maxWidth {
			maxWidth = width
		}
	}

	widthStyle := lipgloss.NewStyle().Width(maxWidth + 2)

	for _, line := range l.lines {
		sb.WriteString(widthStyle.Render(line.name+": ") + line.value + "\n")
	}

	return sb.String()
}
