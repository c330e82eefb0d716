package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// remoteCommand is a discrete command token from a companion device.
type remoteCommand int

const (
	remoteCommandPlay remoteCommand = iota
	remoteCommandPause
	remoteCommandNext
	remoteCommandVolumeUp
	remoteCommandVolumeDown
	remoteCommandStarPower
)

func (c remoteCommand) String() string {
	switch c {
	case remoteCommandPlay:
		return "play"
	case remoteCommandPause:
		return "pause"
	case remoteCommandNext:
		return "next"
	case remoteCommandVolumeUp:
		return "volume-up"
	case remoteCommandVolumeDown:
		return "volume-down"
	case remoteCommandStarPower:
		return "star"
	}
	return "unknown"
}

type remoteCommandMsg struct {
	command remoteCommand
}

func parseRemoteCommand(token string) (remoteCommand, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "play":
		return remoteCommandPlay, true
	case "pause":
		return remoteCommandPause, true
	case "next":
		return remoteCommandNext, true
	case "volume-up", "vol+":
		return remoteCommandVolumeUp, true
	case "volume-down", "vol-":
		return remoteCommandVolumeDown, true
	case "star":
		return remoteCommandStarPower, true
	}
	return 0, false
}

type commandSender interface {
	Send(msg tea.Msg)
}

// listenForRemoteCommands reads newline-separated command tokens and
// forwards them into the program. Unknown tokens are logged and
// dropped. Returns when the reader is exhausted or closed.
func listenForRemoteCommands(reader io.Reader, sender commandSender) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		token := scanner.Text()
		if token == "" {
			continue
		}
		command, ok := parseRemoteCommand(token)
		if !ok {
			log.Warn("Dropping unknown remote command", "token", token)
			continue
		}
		sender.Send(remoteCommandMsg{command})
	}
}

func startRemoteControlListener(fifoPath string, sender commandSender) {
	go func() {
		file, err := os.Open(fifoPath)
		if err != nil {
			log.Error("Could not open remote control pipe", "path", fifoPath, "err", err)
			return
		}
		defer file.Close()
		listenForRemoteCommands(file, sender)
	}()
}
