package main

import (
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// chartNote is one timed note of a song chart. Immutable once loaded.
type chartNote struct {
	id          int
	startTimeMs int
	durationMs  int
	pitch       int // MIDI note number
	lyric       string
	isGolden    bool
	isBonus     bool
}

func (n chartNote) endTimeMs() int {
	return n.startTimeMs + n.durationMs
}

// lyricLine is an ordered group of notes sharing display text and a
// time span.
type lyricLine struct {
	startTimeMs int
	endTimeMs   int
	notes       []chartNote
}

func (l lyricLine) text() string {
	text := ""
	for _, note := range l.notes {
		text += note.lyric
	}
	return text
}

type songChart struct {
	title  string
	artist string
	lines  []lyricLine
}

// JSON schema of song.json in a song folder.

type songChartFile struct {
	Title  string          `json:"title"`
	Artist string          `json:"artist"`
	Lines  []lyricLineFile `json:"lines"`
}

type lyricLineFile struct {
	Notes []chartNoteFile `json:"notes"`
}

type chartNoteFile struct {
	StartTimeMs int    `json:"startTime"`
	DurationMs  int    `json:"duration"`
	Pitch       int    `json:"pitch"`
	Lyric       string `json:"lyric"`
	Golden      bool   `json:"golden,omitempty"`
	Bonus       bool   `json:"bonus,omitempty"`
}

func parseSongChart(reader io.Reader) (*songChart, error) {
	var file songChartFile
	decoder := json.NewDecoder(reader)
	err := decoder.Decode(&file)
	if err != nil {
		return nil, errors.Wrap(err, "parsing song chart")
	}

	chart := &songChart{title: file.Title, artist: file.Artist}
	noteId := 0
	for lineIndex, lineFile := range file.Lines {
		line := lyricLine{}
		for _, noteFile := range lineFile.Notes {
			note := chartNote{
				id:          noteId,
				startTimeMs: noteFile.StartTimeMs,
				durationMs:  noteFile.DurationMs,
				pitch:       noteFile.Pitch,
				lyric:       noteFile.Lyric,
				isGolden:    noteFile.Golden,
				isBonus:     noteFile.Bonus,
			}
			noteId++
			line.notes = append(line.notes, note)
		}

		line.notes = sanitizeLineNotes(line.notes, lineIndex)
		if len(line.notes) == 0 {
			log.Warn("Skipping empty lyric line", "line", lineIndex)
			continue
		}

		line.startTimeMs = line.notes[0].startTimeMs
		line.endTimeMs = line.notes[len(line.notes)-1].endTimeMs()
		chart.lines = append(chart.lines, line)
	}

	// lookups scan lines in time order and stop early, so the file's
	// line order can't be trusted as-is
	sort.SliceStable(chart.lines, func(i, j int) bool {
		return chart.lines[i].startTimeMs < chart.lines[j].startTimeMs
	})

	return chart, nil
}

// sanitizeLineNotes enforces the chart invariants on one line: notes
// time-ordered, positive durations, non-negative start times, no
// overlap. Bad notes are skipped or clamped so a single malformed note
// can't corrupt scoring for the rest of the song.
func sanitizeLineNotes(notes []chartNote, lineIndex int) []chartNote {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].startTimeMs < notes[j].startTimeMs
	})

	result := make([]chartNote, 0, len(notes))
	for _, note := range notes {
		if note.durationMs <= 0 || note.startTimeMs < 0 {
			log.Warn("Skipping malformed chart note",
				"line", lineIndex, "startTime", note.startTimeMs, "duration", note.durationMs)
			continue
		}
		if len(result) > 0 {
			prev := &result[len(result)-1]
			if note.startTimeMs < prev.endTimeMs() {
				log.Warn("Clamping overlapping chart note",
					"line", lineIndex, "startTime", note.startTimeMs, "prevEnd", prev.endTimeMs())
				prev.durationMs = note.startTimeMs - prev.startTimeMs
				if prev.durationMs <= 0 {
					result = result[:len(result)-1]
				}
			}
		}
		result = append(result, note)
	}
	return result
}

func loadSongChartFromFile(chartPath string) (*songChart, error) {
	file, err := os.Open(chartPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseSongChart(file)
}

func (c *songChart) totalNotes() int {
	count := 0
	for _, line := range c.lines {
		count += len(line.notes)
	}
	return count
}

func (c *songChart) endTimeMs() int {
	if len(c.lines) == 0 {
		return 0
	}
	return c.lines[len(c.lines)-1].endTimeMs
}

// notesInWindow returns the notes whose interval intersects
// [currentTimeMs, currentTimeMs+windowMs]. Used by the view to decide
// what's on screen.
func (c *songChart) notesInWindow(currentTimeMs int, windowMs int) []chartNote {
	windowEnd := currentTimeMs + windowMs
	var result []chartNote
	for _, line := range c.lines {
		if line.endTimeMs < currentTimeMs {
			continue
		}
		if line.startTimeMs > windowEnd {
			break
		}
		for _, note := range line.notes {
			if note.endTimeMs() >= currentTimeMs && note.startTimeMs <= windowEnd {
				result = append(result, note)
			}
		}
	}
	return result
}

// activeNoteAt returns the note whose interval contains currentTimeMs,
// if any. This is the note a sung sample at that time is scored
// against.
func (c *songChart) activeNoteAt(currentTimeMs int) (chartNote, bool) {
	for _, line := range c.lines {
		if line.endTimeMs < currentTimeMs || line.startTimeMs > currentTimeMs {
			continue
		}
		for _, note := range line.notes {
			if note.startTimeMs <= currentTimeMs && currentTimeMs <= note.endTimeMs() {
				return note, true
			}
		}
	}
	return chartNote{}, false
}

// lineAt returns the lyric line whose span contains currentTimeMs.
func (c *songChart) lineAt(currentTimeMs int) (lyricLine, int, bool) {
	for i, line := range c.lines {
		if line.startTimeMs <= currentTimeMs && currentTimeMs <= line.endTimeMs {
			return line, i, true
		}
	}
	return lyricLine{}, -1, false
}

// nextLineAfter returns the first line starting after currentTimeMs.
func (c *songChart) nextLineAfter(currentTimeMs int) (lyricLine, bool) {
	for _, line := range c.lines {
		if line.startTimeMs > currentTimeMs {
			return line, true
		}
	}
	return lyricLine{}, false
}

const minPracticeSectionMs = 2000

type practiceSection struct {
	name        string
	startTimeMs int
	endTimeMs   int
}

// createPracticeSections builds one looping practice section per lyric
// line. Sections inherit the line's time bounds; lines shorter than the
// minimum get their end extended so a section is always long enough to
// practice against.
func createPracticeSections(lines []lyricLine) []practiceSection {
	sections := make([]practiceSection, len(lines))
	for i, line := range lines {
		endTimeMs := line.endTimeMs
		if endTimeMs-line.startTimeMs < minPracticeSectionMs {
			endTimeMs = line.startTimeMs + minPracticeSectionMs
		}
		sections[i] = practiceSection{
			name:        line.text(),
			startTimeMs: line.startTimeMs,
			endTimeMs:   endTimeMs,
		}
	}
	return sections
}
