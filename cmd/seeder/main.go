package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	// Create 4 dummy players to use in results
	dummyPlayers := []ladder.Participant{
		{UserID: "player-1", Name: "Seeder Player A"},
		{UserID: "player-2", Name: "Seeder Player B"},
		{UserID: "player-3", Name: "Seeder Player C"},
		{UserID: "player-4", Name: "Seeder Player D"},
	}

	now := time.Now().Unix()
	for _, p := range dummyPlayers {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO players (id, name, created_at, updated_at)
			VALUES (?, ?, ?, ?)`, p.UserID, p.Name, now, now)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured dummy players exist.")

	// One scheduled league with all dummy players as members
	leagueID := "seed-league"
	scoring, _ := json.Marshal(map[string]int{"win_points": 3, "loss_points": 1})
	_, err = db.Exec(`
		INSERT OR IGNORE INTO leagues (id, name, mode, scoring_json, created_at)
		VALUES (?, ?, 'SCHEDULED', ?, ?)`, leagueID, "Seeded League", string(scoring), now)
	if err != nil {
		log.Fatalf("Failed to insert seed league: %s", err)
	}
	for _, p := range dummyPlayers {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO league_members (league_id, user_id, joined_at)
			VALUES (?, ?, ?)`, leagueID, p.UserID, now)
		if err != nil {
			log.Fatalf("Failed to insert league member %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured seed league exists.")

	const batchSize = 100 // Insert 100 results at a time
	const numResults = 10000

	log.Info("Preparing to insert dummy results...", "total", numResults, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	teamA, _ := json.Marshal([]ladder.Participant{dummyPlayers[0], dummyPlayers[1]})
	teamB, _ := json.Marshal([]ladder.Participant{dummyPlayers[2], dummyPlayers[3]})

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*14) // 14 columns per result

	for i := 0; i < numResults; i++ {
		playedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		winner := ladder.TeamA
		sets := []ladder.SetScore{{TeamA: 6, TeamB: 4}, {TeamA: 6, TeamB: 3}}
		if rand.Intn(2) == 1 {
			winner = ladder.TeamB
			sets = []ladder.SetScore{{TeamA: 4, TeamB: 6}, {TeamA: 3, TeamB: 6}}
		}
		setsBlob, _ := json.Marshal(sets)

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			leagueID,
			string(ladder.MatchTypeCompetitive),
			string(ladder.SourceReservation),
			string(ladder.StatusConfirmed),
			dummyPlayers[0].UserID,
			dummyPlayers[2].UserID,
			winner,
			setsBlob,
			teamA,
			teamB,
			playedAt.Unix(),
			playedAt.Unix(),
			playedAt.Unix(),
		)

		if (i+1)%batchSize == 0 || (i+1) == numResults {
			stmt := fmt.Sprintf(`
				INSERT INTO match_results (id, league_id, match_type, source, status,
					reported_by, confirmed_by, winner_team, sets_json, team_a_json, team_b_json,
					played_at, created_at, updated_at)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*14)
			log.Info("Inserted batch", "completed", i+1, "total", numResults)
		}
	}

	// Seeded results are already settled; keep the pipeline quiet.
	if _, err := tx.Exec(`UPDATE match_results SET processing_status = 'DONE' WHERE league_id = ?`, leagueID); err != nil {
		tx.Rollback()
		log.Fatalf("Failed to mark seeded results processed: %s", err)
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy results.", "duration", duration)
}
