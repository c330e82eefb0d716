package main

import (
	"time"

	"github.com/google/uuid"
)

// playerProfile is a persistent identity that survives across games.
// The cumulative counters are folded in from gameResults.
type playerProfile struct {
	Id          string
	Name        string
	GamesPlayed int
	TotalScore  int
	BestScore   int
	BestCombo   int
	CreatedAt   int64
}

func newPlayerProfile(name string) playerProfile {
	return playerProfile{
		Id:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().Unix(),
	}
}

// player is the mutable per-game entity. Created fresh from a profile
// at game start, folded back into the profile at game end, then
// discarded.
type player struct {
	profileId   string
	name        string
	score       int
	combo       int
	maxCombo    int
	notesHit    int
	notesMissed int
	accuracy    float64 // 0..100
	starPower   starPowerState
}

func newPlayer(profile playerProfile) player {
	return player{
		profileId: profile.Id,
		name:      profile.Name,
		starPower: newStarPowerState(),
	}
}

// gameResult is the write-only summary handed to the persistence sink
// when a game completes.
type gameResult struct {
	profileId  string
	songHash   string
	difficulty difficulty
	score      int
	maxCombo   int
	notesHit   int
	notesTotal int
	accuracy   float64
	durationMs int
	finishedAt int64
}

func (p player) result(songHash string, diff difficulty, notesTotal int, durationMs int) gameResult {
	return gameResult{
		profileId:  p.profileId,
		songHash:   songHash,
		difficulty: diff,
		score:      p.score,
		maxCombo:   p.maxCombo,
		notesHit:   p.notesHit,
		notesTotal: notesTotal,
		accuracy:   p.accuracy,
		durationMs: durationMs,
		finishedAt: time.Now().Unix(),
	}
}

// foldResult applies a completed game to the profile's cumulative
// stats.
func (profile *playerProfile) foldResult(result gameResult) {
	profile.GamesPlayed++
	profile.TotalScore += result.score
	if result.score > profile.BestScore {
		profile.BestScore = result.score
	}
	if result.maxCombo > profile.BestCombo {
		profile.BestCombo = result.maxCombo
	}
}
