package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var redTextStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FF0000"))

var greenTextStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#00FF00"))

var orangeTextStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFA500"))

var loadingDetailsStyle = lipgloss.NewStyle().
	MarginLeft(4).Width(70)

func (m loadSongModel) View() string {
	sb := strings.Builder{}

	if m.selectedDifficulty == nil {
		sb.WriteString(songListStyle.Width(40).Render(m.menuList.View()))
	} else {
		sb.WriteString(greenTextStyle.Render("✓ Difficulty: " + m.selectedDifficulty.String()))
	}

	sb.WriteString("\n\n")

	ld := strings.Builder{}
	if m.chart != nil {
		if m.chart.err != nil {
			ld.WriteString(loadFailureString("load chart: " + m.chart.err.Error()))
		} else {
			ld.WriteString(loadSuccessString("chart"))
		}
	} else {
		ld.WriteString(m.spinner.View() + " " + loadingString("chart"))
	}
	ld.WriteString("\n\n")

	if m.backingTrack != nil {
		if m.backingTrack.err != nil {
			ld.WriteString(loadFailureString("load backing track: " + m.backingTrack.err.Error()))
		} else {
			ld.WriteString(loadSuccessString("backing track"))
		}
	} else {
		ld.WriteString(m.spinner.View() + " " + loadingString("backing track"))
	}
	ld.WriteString("\n\n")

	if m.capture != nil {
		if m.capture.err != nil {
			ld.WriteString(errorStyle.Render("✕ " + m.micFailureMessage()))
		} else {
			ld.WriteString(successString("Microphone ready"))
		}
	} else {
		ld.WriteString(m.spinner.View() + " " + loadingString("microphone"))
	}
	ld.WriteRune('\n')

	sb.WriteString(loadingDetailsStyle.Render(ld.String()))

	return sb.String()
}

func loadFailureString(errStr string) string {
	return redTextStyle.Render("✕ Failed to " + errStr)
}

func loadSuccessString(msg string) string {
	return successString("Loaded " + msg)
}

func successString(msg string) string {
	return greenTextStyle.Render("✓ " + msg)
}

func loadingString(msg string) string {
	return orangeTextStyle.Render("Loading " + msg + "...")
}
