package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const evalFlashMs = 800

// pitchLaneSemitones is how many semitones of error the lane shows on
// each side of the target pitch.
const pitchLaneSemitones = 6

var songHeaderStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(logoColor)).
	Bold(true)

var lyricSungStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(mutedGrayColor))

var lyricActiveStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(goldAccentColor)).
	Bold(true).
	Underline(true)

var lyricGoldenStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(goldAccentColor))

var lyricUpcomingStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFFFFF"))

var nextLineStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(mutedGrayColor)).
	Italic(true)

var ratingStyles = map[noteRating]lipgloss.Style{
	ratingPerfect: lipgloss.NewStyle().Foreground(lipgloss.Color(goldAccentColor)).Bold(true),
	ratingGood:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true),
	ratingOkay:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
	ratingMiss:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
}

var starPowerActiveStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(goldAccentColor)).
	Bold(true).
	Blink(true)

var pausedStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	Padding(1, 4).
	Bold(true)

var singFrameStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(pinkAccentColor)).
	Padding(1, 2).
	Width(74)

func (m singSongModel) View() string {
	if m.paused {
		return pausedStyle.Render("PAUSED\n\nPress esc or enter to resume")
	}

	sb := strings.Builder{}

	header := fmt.Sprintf("%s  %s", m.songInfo.songName(), m.songInfo.difficulty)
	sb.WriteString(songHeaderStyle.Render(header) + "\n\n")

	sb.WriteString(fmt.Sprintf("Score %8d   Combo %3d   Accuracy %5.1f%%\n\n",
		m.player.score, m.player.combo, m.player.accuracy))

	sb.WriteString(m.renderLyrics() + "\n")
	sb.WriteString(m.renderNoteTimeline() + "\n")
	sb.WriteString(m.renderPitchLane() + "\n")
	sb.WriteString(m.renderVolumeBar() + "\n")
	sb.WriteString(m.renderStarPower() + "\n")
	sb.WriteString(m.renderRatingFlash() + "\n")

	return singFrameStyle.Render(sb.String())
}

// renderLyrics shows the current line with per-note state, and the
// upcoming line dimmed below it.
func (m singSongModel) renderLyrics() string {
	line, _, ok := m.chart.lineAt(m.currentTimeMs)
	if !ok {
		next, hasNext := m.chart.nextLineAfter(m.currentTimeMs)
		if hasNext {
			secondsAway := float64(next.startTimeMs-m.currentTimeMs) / 1000
			return fmt.Sprintf("♪ in %.0fs\n%s", secondsAway, nextLineStyle.Render(next.text()))
		}
		if m.allNotesScored() {
			return "♪\n" + nextLineStyle.Render("that's everything, take a bow")
		}
		return "♪\n "
	}

	sb := strings.Builder{}
	for _, note := range line.notes {
		style := lyricUpcomingStyle
		switch {
		case note.startTimeMs <= m.currentTimeMs && m.currentTimeMs <= note.endTimeMs():
			style = lyricActiveStyle
		case note.endTimeMs() < m.currentTimeMs:
			style = lyricSungStyle
		case note.isGolden:
			style = lyricGoldenStyle
		}
		sb.WriteString(style.Render(note.lyric))
	}

	next, hasNext := m.chart.nextLineAfter(line.endTimeMs)
	if hasNext {
		sb.WriteString("\n" + nextLineStyle.Render(next.text()))
	} else {
		sb.WriteString("\n ")
	}
	return sb.String()
}

// renderNoteTimeline draws the notes inside the visibility window as a
// horizontal strip. The left edge is now, golden notes stand out.
func (m singSongModel) renderNoteTimeline() string {
	const stripWidth = 60
	windowMs := m.config.visibleWindowMs
	if windowMs <= 0 {
		windowMs = 4000
	}

	strip := make([]rune, stripWidth)
	for i := range strip {
		strip[i] = ' '
	}

	goldenSlots := map[int]bool{}
	for _, note := range m.chart.notesInWindow(m.currentTimeMs, windowMs) {
		from := (note.startTimeMs - m.currentTimeMs) * stripWidth / windowMs
		to := (note.endTimeMs() - m.currentTimeMs) * stripWidth / windowMs
		for i := from; i <= to; i++ {
			if i < 0 || i >= stripWidth {
				continue
			}
			strip[i] = '▬'
			if note.isGolden {
				goldenSlots[i] = true
			}
		}
	}

	sb := strings.Builder{}
	sb.WriteString("now ▏")
	for i, r := range strip {
		if goldenSlots[i] {
			sb.WriteString(lyricGoldenStyle.Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// renderPitchLane draws the sung pitch relative to the active note's
// target pitch: a marker left of center is flat, right of center sharp.
func (m singSongModel) renderPitchLane() string {
	width := pitchLaneSemitones*2 + 1
	lane := make([]rune, width)
	for i := range lane {
		lane[i] = '·'
	}
	lane[pitchLaneSemitones] = '┃'

	note, hasNote := m.chart.activeNoteAt(m.currentTimeMs)
	if hasNote && m.latestEstimate.hasPitch {
		offset := frequencyToMidi(m.latestEstimate.frequency) - float64(note.pitch)
		slot := pitchLaneSemitones + int(offset+0.5)
		if slot < 0 {
			slot = 0
		}
		if slot >= width {
			slot = width - 1
		}
		lane[slot] = '●'
	}

	label := "     "
	if hasNote {
		label = fmt.Sprintf("%4d ", note.pitch)
	}
	return label + string(lane)
}

func (m singSongModel) renderVolumeBar() string {
	const barWidth = 20
	filled := int(m.latestEstimate.volume * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	return "vol  " + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func (m singSongModel) renderStarPower() string {
	meterBar := progress.New(progress.WithGradient("#5A56E0", "#EE6FF8"), progress.WithoutPercentage())
	meterBar.Width = 27
	bar := meterBar.ViewAs(m.player.starPower.meter / starPowerMaxMeter)

	if m.player.starPower.isActive {
		return starPowerActiveStyle.Render("★ STAR POWER ★ ") + bar
	}
	if m.player.starPower.canActivate() {
		return starStyle.Render("star ready (space) ") + bar
	}
	return "star " + bar
}

func (m singSongModel) renderRatingFlash() string {
	if m.lastEval == nil || m.currentTimeMs-m.lastEvalTimeMs > evalFlashMs {
		return " "
	}
	style, ok := ratingStyles[m.lastEval.rating]
	if !ok {
		return m.lastEval.rating.String()
	}
	if m.lastEval.points > 0 {
		return style.Render(fmt.Sprintf("%s +%d", m.lastEval.rating, m.lastEval.points))
	}
	return style.Render(m.lastEval.rating.String())
}
