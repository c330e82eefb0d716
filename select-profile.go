package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type profileListItem struct {
	profile playerProfile
}

func (i profileListItem) Title() string { return i.profile.Name }
func (i profileListItem) Description() string {
	if i.profile.GamesPlayed == 0 {
		return "No games played yet"
	}
	return fmt.Sprintf("%d %s, best score %d, best combo %d",
		i.profile.GamesPlayed, pluralizeWithS(i.profile.GamesPlayed, "game"),
		i.profile.BestScore, i.profile.BestCombo)
}
func (i profileListItem) FilterValue() string { return i.profile.Name }

type selectProfileModel struct {
	menuList        list.Model
	dbAccessor      tkDbAccessor
	nameInput       *textinput.Model
	selectedProfile *playerProfile
	loadError       error
}

type profilesLoadedMsg struct {
	profiles []playerProfile
	err      error
}

type profileCreatedMsg struct {
	profile playerProfile
	err     error
}

func initialSelectProfileModel(dbAccessor tkDbAccessor) selectProfileModel {
	menuList := list.New([]list.Item{}, createListDd(true), 70, 20)
	menuList.Title = "Who's singing?"
	menuList.SetShowStatusBar(false)
	menuList.SetFilteringEnabled(false)
	menuList.DisableQuitKeybindings()
	styleList(&menuList)
	setupKeymapForList(&menuList)

	return selectProfileModel{
		menuList:   menuList,
		dbAccessor: dbAccessor,
	}
}

func loadProfilesCmd(dbAccessor tkDbAccessor) tea.Cmd {
	return func() tea.Msg {
		profiles, err := dbAccessor.listProfiles()
		return profilesLoadedMsg{profiles, err}
	}
}

func createProfileCmd(dbAccessor tkDbAccessor, name string) tea.Cmd {
	return func() tea.Msg {
		profile, err := dbAccessor.createProfile(name)
		return profileCreatedMsg{profile, err}
	}
}

func (m selectProfileModel) Init() tea.Cmd {
	return tea.Batch(loadProfilesCmd(m.dbAccessor), textinput.Blink)
}

func (m selectProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.nameInput != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "esc":
				m.nameInput = nil
				return m, nil
			case "enter":
				name := strings.TrimSpace(m.nameInput.Value())
				m.nameInput = nil
				if name != "" {
					return m, createProfileCmd(m.dbAccessor, name)
				}
				return m, nil
			}
		}
		ti, tiCmd := m.nameInput.Update(msg)
		m.nameInput = &ti
		return m, tiCmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			item, ok := m.menuList.SelectedItem().(profileListItem)
			if ok {
				m.selectedProfile = &item.profile
				return m, nil
			}
		case "n":
			ti := textinput.New()
			ti.Placeholder = "Singer name..."
			ti.CharLimit = 40
			ti.Width = 30
			ti.Focus()
			m.nameInput = &ti
			return m, textinput.Blink
		default:
			var mlCmd tea.Cmd
			m.menuList, mlCmd = m.menuList.Update(msg)
			return m, mlCmd
		}
	case profilesLoadedMsg:
		if msg.err != nil {
			m.loadError = msg.err
			return m, nil
		}
		items := []list.Item{}
		for _, p := range msg.profiles {
			items = append(items, profileListItem{p})
		}
		m.menuList.SetItems(items)
	case profileCreatedMsg:
		if msg.err != nil {
			m.loadError = msg.err
			return m, nil
		}
		m.selectedProfile = &msg.profile
	}
	return m, nil
}

func (m selectProfileModel) View() string {
	sb := strings.Builder{}
	sb.WriteString(m.menuList.View())
	sb.WriteString("\n")
	if m.nameInput != nil {
		sb.WriteString("New singer: " + m.nameInput.View() + "\n")
	} else {
		sb.WriteString("Press n to create a new singer\n")
	}
	if m.loadError != nil {
		sb.WriteString(errorStyle.Render("Error: "+m.loadError.Error()) + "\n")
	}
	return sb.String()
}
