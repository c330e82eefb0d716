package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const songChartFileName = "song.json"

// songFolder is a node in the song library tree. A leaf is a folder
// containing a song.json chart.
type songFolder struct {
	name       string
	path       string
	parent     *songFolder
	subFolders []*songFolder
	isLeaf     bool
	songCount  int
	best       highscore
	hasBest    bool
}

func (fldr *songFolder) relativePath() (string, error) {
	return relativePath(fldr.path, fldr.root().path)
}

func (i *songFolder) Title() string { return i.name }
func (i *songFolder) Description() string {
	if i.isLeaf {
		if !i.hasBest {
			return "Never sung"
		}
		return fmt.Sprintf("%s: %d (%.0f%%) %s", i.best.ProfileName, i.best.Score, i.best.Accuracy,
			starStyle.Render(smallStarString(calcStarCount(i.best.Accuracy))))
	}
	return fmt.Sprintf("%d %s", i.songCount, pluralizeWithS(i.songCount, "song"))
}
func (i *songFolder) FilterValue() string { return i.name }

func (fldr *songFolder) root() *songFolder {
	if fldr.parent == nil {
		return fldr
	}
	return fldr.parent.root()
}

func (fldr *songFolder) chartFilePath() string {
	return filepath.Join(fldr.path, songChartFileName)
}

func (fldr *songFolder) previewFilePath() string {
	return filepath.Join(fldr.path, "preview.ogg")
}

func loadSongFolder(p string) *songFolder {
	folder := songFolder{}
	folder.name = "All Songs"
	folder.isLeaf = false
	folder.path = p
	folder.subFolders = []*songFolder{}
	folder.songCount = 0

	populateSongFolder(&folder)
	trimSongFolders(&folder)

	return &folder
}

func populateSongFolder(fldr *songFolder) {
	files, err := os.ReadDir(fldr.path)
	if err != nil {
		return
	}

	for _, f := range files {
		if f.IsDir() {
			child := &songFolder{name: f.Name(), path: filepath.Join(fldr.path, f.Name()),
				parent: fldr, subFolders: []*songFolder{}}
			fldr.subFolders = append(fldr.subFolders, child)
			populateSongFolder(child)
		} else if f.Name() == songChartFileName {
			incrementSongCount(fldr)
			fldr.isLeaf = true
			break
		}
	}
}

func trimSongFolders(fldr *songFolder) {
	for i := len(fldr.subFolders) - 1; i >= 0; i-- {
		if fldr.subFolders[i].songCount == 0 {
			fldr.subFolders = append(fldr.subFolders[:i], fldr.subFolders[i+1:]...)
		} else {
			trimSongFolders(fldr.subFolders[i])
		}
	}
}

func (fldr *songFolder) queryFolder(path []string) *songFolder {
	for _, p := range path {
		fldr = fldr.getSubfolder(p)
		if fldr == nil {
			return nil
		}
	}
	return fldr
}

func (fldr *songFolder) getSubfolder(name string) *songFolder {
	for _, f := range fldr.subFolders {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (fldr *songFolder) addSubFolder(name string) *songFolder {
	child := &songFolder{name: name, path: filepath.Join(fldr.path, name),
		parent: fldr, subFolders: []*songFolder{}}
	fldr.subFolders = append(fldr.subFolders, child)
	return child
}

// search returns all descendant folders whose name contains the text,
// case-insensitive. The receiver itself is never returned.
func (fldr *songFolder) search(text string) []*songFolder {
	var results []*songFolder
	lowered := strings.ToLower(text)
	for _, f := range fldr.subFolders {
		if strings.Contains(strings.ToLower(f.name), lowered) {
			results = append(results, f)
		}
		results = append(results, f.search(text)...)
	}
	return results
}

func incrementSongCount(fldr *songFolder) {
	fldr.songCount++
	if fldr.parent != nil {
		incrementSongCount(fldr.parent)
	}
}

func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
