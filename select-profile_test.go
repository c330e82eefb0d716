package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestSelectProfileWithEnter(t *testing.T) {
	m := initialSelectProfileModel(&fakeDbAccessor{})

	alice := newPlayerProfile("Alice")
	bob := newPlayerProfile("Bob")
	updated, _ := m.Update(profilesLoadedMsg{[]playerProfile{alice, bob}, nil})
	m = updated.(selectProfileModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(selectProfileModel)

	if m.selectedProfile == nil {
		t.Fatal("Expected a selected profile")
	}
	if m.selectedProfile.Name != "Alice" {
		t.Error("Expected the first profile selected, got", m.selectedProfile.Name)
	}
}

func TestCreateProfileFlow(t *testing.T) {
	m := initialSelectProfileModel(&fakeDbAccessor{})

	updated, _ := m.Update(profilesLoadedMsg{nil, nil})
	m = updated.(selectProfileModel)

	// n opens the name input
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = updated.(selectProfileModel)
	if m.nameInput == nil {
		t.Fatal("Expected the name input to open")
	}

	for _, r := range "Carol" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(selectProfileModel)
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(selectProfileModel)
	if cmd == nil {
		t.Fatal("Expected a create command")
	}

	msg := cmd()
	created, ok := msg.(profileCreatedMsg)
	if !ok {
		t.Fatalf("Expected profileCreatedMsg, got %T", msg)
	}
	if created.profile.Name != "Carol" {
		t.Error("Expected profile named Carol, got", created.profile.Name)
	}

	updated, _ = m.Update(created)
	m = updated.(selectProfileModel)
	if m.selectedProfile == nil || m.selectedProfile.Name != "Carol" {
		t.Error("Expected the new profile selected")
	}
}

func TestProfileListItemDescription(t *testing.T) {
	fresh := profileListItem{newPlayerProfile("Alice")}
	if fresh.Description() != "No games played yet" {
		t.Error("Expected fresh profile description, got", fresh.Description())
	}

	veteran := newPlayerProfile("Bob")
	veteran.GamesPlayed = 12
	veteran.BestScore = 9001
	veteran.BestCombo = 55
	description := profileListItem{veteran}.Description()
	if description == "No games played yet" {
		t.Error("Expected stats in description for a veteran profile")
	}
}
