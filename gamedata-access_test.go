package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const expectedTotalMigrations = 2

func testSong() song {
	return song{
		"b9e7ce0974011f3e41b754b6f0a2f0cf9e7c7e47c67e1d45226d4fca1a7f955d",
		`Classics/Queen - Bohemian Rhapsody`,
		"Queen - Bohemian Rhapsody"}
}

type testDb struct {
	dbFolderPath string
	dbFilePath   string
	tkDbConnection
}

func (tDb testDb) destroy(t *testing.T) {
	err := tDb.db.Close()
	if err != nil {
		t.Error(err)
	}

	err = os.RemoveAll(tDb.dbFolderPath)
	if err != nil {
		t.Error(err)
	}
}

func openTestDb() (testDb, error) {
	dname, err := os.MkdirTemp("", "TerminalKaraokeTests")
	if err != nil {
		return testDb{}, err
	}
	dbFilePath := filepath.Join(dname, "karaoke.db")
	db, err := openDbConnection(dbFilePath)
	return testDb{dname, dbFilePath, db}, err
}

func openAndMigrateTestDb() (testDb, error) {
	db, err := openTestDb()
	if err != nil {
		return db, err
	}

	_, err = db.migrateDatabase()
	return db, err
}

func TestMigrateDatabase(t *testing.T) {
	db, err := openTestDb()
	if err != nil {
		t.Fatal(err)
	}
	defer db.destroy(t)

	count, err := db.migrateDatabase()

	if err != nil {
		t.Fatal(err)
	}

	if count != expectedTotalMigrations {
		t.Errorf("Migration count is %d, expected %d", count, expectedTotalMigrations)
	}

	count2, err := db.migrateDatabase()
	if err != nil {
		t.Fatal(err)
	}

	if count2 != 0 {
		t.Errorf("Migration count is %d, expected %d", count2, 0)
	}
}

func TestCreateAndListProfiles(t *testing.T) {
	db, err := openAndMigrateTestDb()
	if err != nil {
		t.Fatal(err)
	}
	defer db.destroy(t)

	first, err := db.createProfile("Alice")
	if err != nil {
		t.Fatal(err)
	}
	if first.Id == "" {
		t.Error("Expected a generated profile id")
	}
	if first.Name != "Alice" {
		t.Error("Expected profile name Alice, got", first.Name)
	}

	_, err = db.createProfile("Bob")
	if err != nil {
		t.Fatal(err)
	}

	profiles, err := db.listProfiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Fatal("Expected 2 profiles, got", len(profiles))
	}
}

func completedResult(profileId string, score int) gameResult {
	return gameResult{
		profileId:  profileId,
		songHash:   testSong().ChartHash,
		difficulty: difficultyMedium,
		score:      score,
		maxCombo:   34,
		notesHit:   80,
		notesTotal: 100,
		accuracy:   80,
		durationMs: 210000,
		finishedAt: time.Now().Unix(),
	}
}

func TestSaveGameResultFoldsProfileStats(t *testing.T) {
	db, err := openAndMigrateTestDb()
	if err != nil {
		t.Fatal(err)
	}
	defer db.destroy(t)

	profile, err := db.createProfile("Alice")
	if err != nil {
		t.Fatal(err)
	}

	err = db.saveGameResult(testSong(), completedResult(profile.Id, 4200))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := db.getProfile(profile.Id)
	if err != nil {
		t.Fatal(err)
	}
	if updated.GamesPlayed != 1 {
		t.Error("Expected 1 game played, got", updated.GamesPlayed)
	}
	if updated.TotalScore != 4200 {
		t.Error("Expected total score 4200, got", updated.TotalScore)
	}
	if updated.BestScore != 4200 {
		t.Error("Expected best score 4200, got", updated.BestScore)
	}
	if updated.BestCombo != 34 {
		t.Error("Expected best combo 34, got", updated.BestCombo)
	}
}

func TestSaveGameResultKeepsBetterHighscore(t *testing.T) {
	db, err := openAndMigrateTestDb()
	if err != nil {
		t.Fatal(err)
	}
	defer db.destroy(t)

	profile, err := db.createProfile("Alice")
	if err != nil {
		t.Fatal(err)
	}

	err = db.saveGameResult(testSong(), completedResult(profile.Id, 5000))
	if err != nil {
		t.Fatal(err)
	}
	err = db.saveGameResult(testSong(), completedResult(profile.Id, 3000))
	if err != nil {
		t.Fatal(err)
	}

	hs, found, err := db.getVerifiedHighscore(testSong().ChartHash, difficultyMedium)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("Expected a verified highscore")
	}
	if hs.Score != 5000 {
		t.Error("Expected the better score to survive, got", hs.Score)
	}
	if hs.ProfileName != "Alice" {
		t.Error("Expected profile name on the highscore, got", hs.ProfileName)
	}

	err = db.saveGameResult(testSong(), completedResult(profile.Id, 7000))
	if err != nil {
		t.Fatal(err)
	}

	hs, _, err = db.getVerifiedHighscore(testSong().ChartHash, difficultyMedium)
	if err != nil {
		t.Fatal(err)
	}
	if hs.Score != 7000 {
		t.Error("Expected the new best to replace, got", hs.Score)
	}
}

func TestHighscoresArePerDifficulty(t *testing.T) {
	db, err := openAndMigrateTestDb()
	if err != nil {
		t.Fatal(err)
	}
	defer db.destroy(t)

	profile, err := db.createProfile("Alice")
	if err != nil {
		t.Fatal(err)
	}

	result := completedResult(profile.Id, 5000)
	err = db.saveGameResult(testSong(), result)
	if err != nil {
		t.Fatal(err)
	}

	_, found, err := db.getVerifiedHighscore(testSong().ChartHash, difficultyHard)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Expected no highscore at a difficulty never played")
	}
}

func TestTamperedHighscoreIsRejected(t *testing.T) {
	db, err := openAndMigrateTestDb()
	if err != nil {
		t.Fatal(err)
	}
	defer db.destroy(t)

	profile, err := db.createProfile("Alice")
	if err != nil {
		t.Fatal(err)
	}

	err = db.saveGameResult(testSong(), completedResult(profile.Id, 5000))
	if err != nil {
		t.Fatal(err)
	}

	// bump the stored score without recomputing the fingerprint
	_, err = db.db.Exec("UPDATE Highscores SET Score = 999999")
	if err != nil {
		t.Fatal(err)
	}

	_, found, err := db.getVerifiedHighscore(testSong().ChartHash, difficultyMedium)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Expected tampered highscore to be rejected")
	}
}

func TestFingerprintScoreRoundTrip(t *testing.T) {
	hash := testSong().ChartHash
	timestamp := time.Now().Unix()

	fingerprint, err := fingerprintScore(hash, "profile-1", 1, 5000, 80, 100, timestamp)
	if err != nil {
		t.Fatal(err)
	}

	valid, err := verifyScore(hash, "profile-1", 1, 5000, 80, 100, timestamp, fingerprint)
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Error("Expected fingerprint to verify")
	}

	valid, err = verifyScore(hash, "profile-1", 1, 5001, 80, 100, timestamp, fingerprint)
	if err != nil {
		t.Fatal(err)
	}
	if valid {
		t.Error("Expected altered score to fail verification")
	}
}

func TestFoldResult(t *testing.T) {
	profile := newPlayerProfile("Alice")
	profile.foldResult(completedResult(profile.Id, 3000))
	profile.foldResult(completedResult(profile.Id, 5000))
	profile.foldResult(completedResult(profile.Id, 4000))

	if profile.GamesPlayed != 3 {
		t.Error("Expected 3 games played, got", profile.GamesPlayed)
	}
	if profile.TotalScore != 12000 {
		t.Error("Expected total score 12000, got", profile.TotalScore)
	}
	if profile.BestScore != 5000 {
		t.Error("Expected best score 5000, got", profile.BestScore)
	}
}
