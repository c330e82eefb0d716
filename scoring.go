package main

import "math"

type noteRating int

const (
	ratingMiss noteRating = iota
	ratingOkay
	ratingGood
	ratingPerfect
)

func (r noteRating) String() string {
	switch r {
	case ratingPerfect:
		return "Perfect"
	case ratingGood:
		return "Good"
	case ratingOkay:
		return "Okay"
	case ratingMiss:
		return "Miss"
	}
	return "Unknown"
}

type difficulty int

const (
	difficultyEasy difficulty = iota
	difficultyMedium
	difficultyHard
)

func (d difficulty) String() string {
	switch d {
	case difficultyEasy:
		return "Easy"
	case difficultyMedium:
		return "Medium"
	case difficultyHard:
		return "Hard"
	}
	return "Unknown"
}

type difficultySettings struct {
	timingToleranceMs float64
	pitchTolerance    float64 // semitones
	scoreMultiplier   float64
}

// tolerances tighten from easy to hard
func (d difficulty) settings() difficultySettings {
	switch d {
	case difficultyEasy:
		return difficultySettings{250, 3, 1.0}
	case difficultyHard:
		return difficultySettings{100, 1, 2.0}
	default:
		return difficultySettings{150, 2, 1.5}
	}
}

func parseDifficulty(name string) difficulty {
	switch name {
	case "easy":
		return difficultyEasy
	case "hard":
		return difficultyHard
	default:
		return difficultyMedium
	}
}

const (
	pointsPerfectNote = 100
	pointsGoodNote    = 50
	pointsOkayNote    = 25
	comboBonusPoints  = 10
	goldenNoteBonus   = 50

	perfectAccuracyCutoff = 0.9
	goodAccuracyCutoff    = 0.7
)

// noteEvaluation is the transient result of scoring one sung sample
// against one chart note.
type noteEvaluation struct {
	noteId         int
	rating         noteRating
	points         int
	pitchAccuracy  float64
	timingAccuracy float64
	isComboBreak   bool
}

// evaluateNote scores a single sung sample against a chart note. Pure
// function: the caller persists the result via updatePlayerStats.
// sungPitch is a fractional MIDI note number; hasPitch is false when
// the detector reported silence or noise for this sample.
func evaluateNote(note chartNote, sungPitch float64, hasPitch bool, sungTimeMs float64, diff difficulty, p player) noteEvaluation {
	ds := diff.settings()

	timingDiff := math.Abs(sungTimeMs - float64(note.startTimeMs))
	timingAccuracy := math.Max(0, 1-timingDiff/ds.timingToleranceMs)
	isOnTime := timingDiff <= ds.timingToleranceMs

	pitchAccuracy := 0.0
	isPitchMatch := false
	if hasPitch {
		pitchDiff := math.Abs(sungPitch - float64(note.pitch))
		pitchAccuracy = math.Max(0, 1-pitchDiff/ds.pitchTolerance)
		isPitchMatch = pitchDiff <= ds.pitchTolerance
	}

	// non-miss tiers grade on the blend of the two accuracies, so a
	// dead-on pitch forgives a slightly late entry and vice versa
	combined := (pitchAccuracy + timingAccuracy) / 2

	var rating noteRating
	switch {
	case !isOnTime || !isPitchMatch:
		rating = ratingMiss
	case combined >= perfectAccuracyCutoff:
		rating = ratingPerfect
	case combined >= goodAccuracyCutoff:
		rating = ratingGood
	default:
		rating = ratingOkay
	}

	points := 0
	if rating != ratingMiss {
		base := 0
		switch rating {
		case ratingPerfect:
			base = pointsPerfectNote
		case ratingGood:
			base = pointsGoodNote
		case ratingOkay:
			base = pointsOkayNote
		}
		points = int(float64(base) * ds.scoreMultiplier)
		points += (p.combo / 10) * comboBonusPoints
		if p.starPower.isActive {
			points = int(float64(points) * p.starPower.multiplier)
		}
		if note.isGolden {
			points += goldenNoteBonus
		}
	}

	return noteEvaluation{
		noteId:         note.id,
		rating:         rating,
		points:         points,
		pitchAccuracy:  pitchAccuracy,
		timingAccuracy: timingAccuracy,
		isComboBreak:   rating == ratingMiss,
	}
}

const (
	starChargePerfect = 5.0
	starChargeOther   = 2.0
)

// updatePlayerStats folds a note evaluation into the player's per-game
// state.
func updatePlayerStats(p *player, note chartNote, eval noteEvaluation) {
	if eval.rating == ratingMiss {
		p.combo = 0
		p.notesMissed++
	} else {
		p.combo++
		if p.combo > p.maxCombo {
			p.maxCombo = p.combo
		}
		p.notesHit++
		p.score += eval.points

		charge := starChargeOther
		if eval.rating == ratingPerfect {
			charge = starChargePerfect
		}
		p.starPower.chargeForNote(charge, note)
	}

	total := p.notesHit + p.notesMissed
	if total > 0 {
		p.accuracy = float64(p.notesHit) / float64(total) * 100
	}
}
