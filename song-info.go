package main

import "path/filepath"

// songInfo identifies the song being played: where it lives on disk and
// at which difficulty it was started.
type songInfo struct {
	fullFolderPath string
	difficulty     difficulty
}

func (si songInfo) relativePath(rootSongFolder string) (string, error) {
	return relativePath(si.fullFolderPath, rootSongFolder)
}

func (si songInfo) songName() string {
	return filepath.Base(si.fullFolderPath)
}

func (si songInfo) chartFilePath() string {
	return filepath.Join(si.fullFolderPath, songChartFileName)
}
