package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var bannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(logoColor)).
	Bold(true)

var bannerCache string

func gameBanner() string {
	if bannerCache == "" {
		file, err := readAsset("banner.txt")
		if err != nil {
			bannerCache = "Terminal Karaoke"
		} else {
			// \r characters mess up the lipgloss styles, such as borders
			bannerCache = strings.Replace(string(file), "\r", "", -1)
		}
	}
	return bannerCache
}

func (m selectSongModel) View() string {
	r := strings.Builder{}

	if m.rootSongFolder == nil {
		r.WriteString("Loading songs\n")
		return r.String()
	}

	r.WriteString(bannerStyle.Render(gameBanner()) + "\n\n")

	r.WriteString(songListStyle.Render(m.menuList.View()))

	if m.searchTi != nil {
		r.WriteString("\n" + m.searchTi.View())
	}

	return r.String()
}
