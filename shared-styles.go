package main

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

const (
	logoColor         = "#34d8eb"
	selectedItemColor = logoColor
	goldAccentColor   = "#f5c542"
	pinkAccentColor   = "#ee6ff8"
	mutedGrayColor    = "#484a4d"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

var starStyle = lipgloss.NewStyle().Bold(true).
	Foreground(lipgloss.Color(goldAccentColor))
var grayStarStyle = lipgloss.NewStyle().Bold(true).
	Foreground(lipgloss.Color(mutedGrayColor))

var micSideBorder = lipgloss.Border{
	Left:  "♪",
	Right: "♪",
}

var listTitleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(goldAccentColor)).
	Bold(true).
	BorderForeground(lipgloss.Color(pinkAccentColor)).
	BorderStyle(micSideBorder).
	BorderBottom(false).BorderTop(false).BorderLeft(true).BorderRight(true).
	Padding(0, 1, 0, 1)

var songListStyle = lipgloss.NewStyle().
	Padding(1, 1, 1, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(goldAccentColor)).
	Width(71).
	Bold(true)

func styleList(list *list.Model) {
	list.Styles.Title = listTitleStyle
}

func createListDd(hasDesc bool) list.DefaultDelegate {
	dd := list.NewDefaultDelegate()
	selectedDescBorder := lipgloss.Border{
		Left: "♫",
	}

	selectedTitleBorder := lipgloss.Border{
		Left: "♪",
	}

	dd.Styles.SelectedTitle = dd.Styles.SelectedTitle.
		Foreground(lipgloss.Color(selectedItemColor)).
		BorderStyle(selectedTitleBorder).
		BorderForeground(lipgloss.Color(selectedItemColor))
	dd.Styles.SelectedDesc = dd.Styles.SelectedDesc.
		Foreground(lipgloss.Color(selectedItemColor)).
		BorderStyle(selectedDescBorder).
		BorderForeground(lipgloss.Color(selectedItemColor))

	dd.ShowDescription = hasDesc
	return dd
}
