package main

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/bubbles/list"
)

func relativePath(fullPath string, parentPath string) (string, error) {
	fullPath = filepath.Clean(fullPath)
	parentPath = filepath.Clean(parentPath)

	if len(fullPath) < len(parentPath) || fullPath[:len(parentPath)] != parentPath {
		return "", fmt.Errorf("parent path %s is not a parent of %s", parentPath, fullPath)
	}

	if len(parentPath) == len(fullPath) {
		return "", nil
	}

	return fullPath[len(parentPath)+1:], nil
}

func splitFolderPath(folderPath string) []string {
	var folderSeparatorMatcher = regexp.MustCompile(`[\\\/]`)
	return folderSeparatorMatcher.Split(folderPath, -1)
}

func pluralizeWithS(count int, singular string) string {
	return pluralize(count, singular, singular+"s")
}

func pluralize(count int, singular string, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// calcStarCount maps a final accuracy percentage to a star rating.
func calcStarCount(accuracy float64) int {
	switch {
	case accuracy >= 95:
		return 5
	case accuracy >= 85:
		return 4
	case accuracy >= 70:
		return 3
	case accuracy >= 50:
		return 2
	case accuracy > 0:
		return 1
	}
	return 0
}

func smallStarString(starCount int) string {
	switch starCount {
	case 1:
		return "★☆☆☆☆"
	case 2:
		return "★★☆☆☆"
	case 3:
		return "★★★☆☆"
	case 4:
		return "★★★★☆"
	case 5:
		return "★★★★★"
	default:
		return "☆☆☆☆☆"
	}
}

func setupKeymapForList(list *list.Model) {
	list.KeyMap.NextPage.SetKeys("right", "d")
	list.KeyMap.PrevPage.SetKeys("left", "a")
	list.KeyMap.CursorDown.SetKeys("down", "s")
	list.KeyMap.CursorUp.SetKeys("up", "w")
}
