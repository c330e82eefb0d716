package main

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Usage:
// db := openDefaultDbConnection()
// db.listProfiles()
// db.saveGameResult(song, result)
// db.close()

type tkDbConnection struct {
	db *sql.DB
}

type tkDbAccessor interface {
	listProfiles() ([]playerProfile, error)
	createProfile(name string) (playerProfile, error)
	getVerifiedHighscore(chartHash string, diff difficulty) (highscore, bool, error)
	saveGameResult(s song, result gameResult) error
	close() error
}

type song struct {
	ChartHash    string
	RelativePath string
	Name         string
}

type highscore struct {
	ProfileId   string
	ProfileName string
	Score       int
	NotesHit    int
	TotalNotes  int
	Accuracy    float64
	MaxCombo    int
	Timestamp   int64
	Fingerprint string // fingerprint to prevent cheating
}

func getGameDataFolder() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "Terminal Karaoke"), nil
}

func createAndGetSubDataFolder(subFolderName string) (string, error) {
	folderPath, err := getGameDataFolder()
	if err != nil {
		return "", err
	}

	subFolderPath := filepath.Join(folderPath, subFolderName)
	err = os.MkdirAll(subFolderPath, 0755)
	if err != nil {
		return subFolderPath, err
	}
	return subFolderPath, nil
}

func openDefaultDbConnection(cfg gameConfig) (tkDbConnection, error) {
	dbFilePath := cfg.dbPath
	if dbFilePath == "" {
		dbFolderPath, err := createAndGetSubDataFolder(".db")
		if err != nil {
			return tkDbConnection{}, err
		}
		dbFilePath = filepath.Join(dbFolderPath, "karaoke.db")
	}
	return openDbConnection(dbFilePath)
}

func openDbConnection(dbFilePath string) (tkDbConnection, error) {
	db, err := sql.Open("sqlite", dbFilePath)
	if err != nil {
		return tkDbConnection{}, err
	}

	return tkDbConnection{db}, nil
}

func (conn tkDbConnection) migrateDatabase() (int, error) {
	row := conn.db.QueryRow("PRAGMA user_version")

	var migrationVersion int
	if row.Err() != nil && row.Err() != sql.ErrNoRows {
		return 0, row.Err()
	} else {
		err := row.Scan(&migrationVersion)
		if err != nil && err != sql.ErrNoRows {
			return 0, err
		}
	}

	migrationsApplied := 0

	migrationFilePaths, err := getMigrationFilePaths()
	if err != nil {
		return 0, err
	}

	for _, migrationFilePath := range migrationFilePaths {
		migrationNumber := migrationFilePath.Name()[0:3]
		migrationNumberInt, err := strconv.Atoi(migrationNumber)

		if err != nil {
			return migrationsApplied, err
		}

		if migrationVersion == migrationNumberInt-1 {
			fullPath := filepath.Join("migrations", migrationFilePath.Name())
			data, err := readAsset(fullPath)
			if err != nil {
				return migrationsApplied, err
			}
			_, err = conn.db.Exec(string(data))
			if err != nil {
				return migrationsApplied, err
			}

			migrationsApplied++
			migrationVersion++

			// db doesn't allow parameters in PRAGMA statements
			_, err = conn.db.Exec("PRAGMA user_version = " + strconv.Itoa(migrationVersion))
			if err != nil {
				return migrationsApplied, err
			}
		}
	}

	return migrationsApplied, nil
}

func getMigrationFilePaths() ([]fs.DirEntry, error) {
	entries, err := listAssetDir("migrations")
	if err != nil {
		return nil, err
	}

	var migrationFilePaths []fs.DirEntry
	expectedFileIncrement := 1

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".sql" {
			migrationNumber := e.Name()[0:3]
			if migrationNumber != fmt.Sprintf("%03d", expectedFileIncrement) {
				return nil, fmt.Errorf("migration file %s is not in the expected format", e.Name())
			}
			migrationFilePaths = append(migrationFilePaths, e)
			expectedFileIncrement++
		}
	}
	return migrationFilePaths, nil
}

func (conn tkDbConnection) close() error {
	return conn.db.Close()
}

func (conn tkDbConnection) listProfiles() ([]playerProfile, error) {
	rows, err := conn.db.Query("SELECT Id,Name,GamesPlayed,TotalScore,BestScore,BestCombo,CreatedAt FROM Profiles ORDER BY CreatedAt")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []playerProfile
	for rows.Next() {
		var p playerProfile
		err = rows.Scan(&p.Id, &p.Name, &p.GamesPlayed, &p.TotalScore, &p.BestScore, &p.BestCombo, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (conn tkDbConnection) createProfile(name string) (playerProfile, error) {
	p := newPlayerProfile(name)
	_, err := conn.db.Exec("INSERT INTO Profiles (Id,Name,GamesPlayed,TotalScore,BestScore,BestCombo,CreatedAt) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.Id, p.Name, p.GamesPlayed, p.TotalScore, p.BestScore, p.BestCombo, p.CreatedAt)
	return p, err
}

func (conn tkDbConnection) getProfile(profileId string) (playerProfile, error) {
	row := conn.db.QueryRow("SELECT Id,Name,GamesPlayed,TotalScore,BestScore,BestCombo,CreatedAt FROM Profiles WHERE Id=?", profileId)
	var p playerProfile
	err := row.Scan(&p.Id, &p.Name, &p.GamesPlayed, &p.TotalScore, &p.BestScore, &p.BestCombo, &p.CreatedAt)
	return p, err
}

func (conn tkDbConnection) updateProfile(p playerProfile) error {
	_, err := conn.db.Exec("UPDATE Profiles SET GamesPlayed=?, TotalScore=?, BestScore=?, BestCombo=? WHERE Id=?",
		p.GamesPlayed, p.TotalScore, p.BestScore, p.BestCombo, p.Id)
	return err
}

func (conn tkDbConnection) addSongIfDoesntExist(s song) (int, error) {
	row := conn.db.QueryRow("SELECT Id FROM Songs WHERE ChartHash=?", s.ChartHash)
	if row.Err() != nil {
		return 0, row.Err()
	}
	var songId int
	err := row.Scan(&songId)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	if songId == 0 {
		res, err := conn.db.Exec("INSERT INTO Songs (ChartHash,Name,RelativePath) VALUES (?, ?, ?)",
			s.ChartHash, s.Name, s.RelativePath)
		if err != nil {
			return 0, err
		}

		insertId, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		songId = int(insertId)
	}
	return songId, nil
}

// saveGameResult records a finished game: folds the result into the
// profile's cumulative stats, and replaces the song highscore for the
// difficulty if this score beats it.
func (conn tkDbConnection) saveGameResult(s song, result gameResult) error {
	profile, err := conn.getProfile(result.profileId)
	if err != nil {
		return err
	}
	profile.foldResult(result)
	err = conn.updateProfile(profile)
	if err != nil {
		return err
	}

	songId, err := conn.addSongIfDoesntExist(s)
	if err != nil {
		return err
	}

	existing, err := conn.getHighscoreValue(songId, result.difficulty)
	if err != nil {
		return err
	}

	if result.score <= existing {
		// don't replace a better score
		return nil
	}

	timestamp := time.Now().Unix()

	fingerprint, err := fingerprintScore(s.ChartHash, result.profileId, int(result.difficulty), result.score, result.notesHit, result.notesTotal, timestamp)
	if err != nil {
		return err
	}

	if existing == 0 {
		_, err = conn.db.Exec("INSERT INTO Highscores (SongId, ProfileId, Difficulty, Score, NotesHit, TotalNotes, Accuracy, MaxCombo, Timestamp, Fingerprint) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			songId, result.profileId, int(result.difficulty), result.score, result.notesHit, result.notesTotal, result.accuracy, result.maxCombo, timestamp, fingerprint)
	} else {
		_, err = conn.db.Exec("UPDATE Highscores SET ProfileId=?, Score=?, NotesHit=?, TotalNotes=?, Accuracy=?, MaxCombo=?, Timestamp=?, Fingerprint=? WHERE SongId=? AND Difficulty=?",
			result.profileId, result.score, result.notesHit, result.notesTotal, result.accuracy, result.maxCombo, timestamp, fingerprint, songId, int(result.difficulty))
	}

	return err
}

func (conn tkDbConnection) getHighscoreValue(songId int, diff difficulty) (int, error) {
	row := conn.db.QueryRow("SELECT Score FROM Highscores WHERE SongId=? AND Difficulty=?", songId, int(diff))
	if row.Err() != nil {
		return 0, row.Err()
	}
	var score int
	err := row.Scan(&score)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return score, nil
}

// getVerifiedHighscore returns the best stored score for the chart at
// the difficulty, dropping rows whose fingerprint doesn't check out.
func (conn tkDbConnection) getVerifiedHighscore(chartHash string, diff difficulty) (highscore, bool, error) {
	row := conn.db.QueryRow(`SELECT Highscores.ProfileId, Profiles.Name, Score, NotesHit, TotalNotes, Accuracy, MaxCombo, Highscores.Timestamp, Fingerprint
		FROM Highscores
		INNER JOIN Songs ON Highscores.SongId = Songs.Id
		INNER JOIN Profiles ON Highscores.ProfileId = Profiles.Id
		WHERE Songs.ChartHash=? AND Difficulty=?`, chartHash, int(diff))

	var hs highscore
	err := row.Scan(&hs.ProfileId, &hs.ProfileName, &hs.Score, &hs.NotesHit, &hs.TotalNotes, &hs.Accuracy, &hs.MaxCombo, &hs.Timestamp, &hs.Fingerprint)
	if err == sql.ErrNoRows {
		return highscore{}, false, nil
	}
	if err != nil {
		return highscore{}, false, err
	}

	valid, err := verifyScore(chartHash, hs.ProfileId, int(diff), hs.Score, hs.NotesHit, hs.TotalNotes, hs.Timestamp, hs.Fingerprint)
	if err != nil || !valid {
		return highscore{}, false, err
	}

	return hs, true, nil
}

func hashFileByPath(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}

	defer file.Close()

	return hashFile(file)
}

func hashFile(file *os.File) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func fingerprintScore(fileHashHex string, profileId string, diff int, score int, notesHit int, totalNotes int, timestamp int64) (string, error) {
	fh, err := hex.DecodeString(fileHashHex)
	if err != nil {
		return "", err
	}

	scoreHash := sha256.New()
	scoreHash.Write(fh)
	scoreHash.Write([]byte(profileId))

	buff := new(bytes.Buffer)
	for _, v := range []uint32{uint32(diff), uint32(score), uint32(notesHit), uint32(totalNotes)} {
		err = binary.Write(buff, binary.LittleEndian, v)
		if err != nil {
			return "", err
		}
	}

	err = binary.Write(buff, binary.LittleEndian, uint64(timestamp))
	if err != nil {
		return "", err
	}

	scoreHash.Write(buff.Bytes())

	return hex.EncodeToString(scoreHash.Sum(nil)), nil
}

func verifyScore(fileHashHex string, profileId string, diff int, score int, notesHit int, totalNotes int, timestamp int64, expectedFingerprint string) (bool, error) {
	fngr, err := fingerprintScore(fileHashHex, profileId, diff, score, notesHit, totalNotes, timestamp)
	if err != nil {
		return false, err
	}

	return fngr == expectedFingerprint, nil
}
