package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/jvossman/gloat/internal/database"
)

const entriesPerUser = 40

type buddy struct {
	id   string
	name string
}

var buddies = []buddy{
	{"buddy-austin", "Austin"},
	{"buddy-justin", "Justin"},
	{"buddy-ivan", "Ivan"},
	{"buddy-jesse", "Jesse"},
	{"buddy-jeff", "Jeff"},
}

type season struct {
	id   string
	slug string
	name string
}

var seasons = []season{
	{"challenge-all", "all", "All Time"},
	{"challenge-spring", "spring-2024", "Spring 2024"},
	{"challenge-summer", "summer-2024", "Summer 2024"},
}

func main() {
	log.Info("Starting database seeder...")
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "gloat.db"
	}
	db, teardown, err := database.InitDB(dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"), "./migrations")
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	for _, b := range buddies {
		_, err := db.Exec(`INSERT OR IGNORE INTO profiles (id, display_name) VALUES (?, ?)`, b.id, b.name)
		if err != nil {
			log.Fatalf("Failed to insert buddy %s: %s", b.name, err)
		}
		// A long-lived dev session per buddy so the CLI can act as them.
		sessionToken := "dev-" + strings.ToLower(b.name)
		_, err = db.Exec(`INSERT OR IGNORE INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
			sessionToken, b.id, time.Now().AddDate(1, 0, 0).Unix())
		if err != nil {
			log.Fatalf("Failed to insert session for %s: %s", b.name, err)
		}
	}
	log.Info("Ensured buddies and dev sessions exist.", "count", len(buddies))

	for _, s := range seasons {
		_, err := db.Exec(`INSERT OR IGNORE INTO challenges (id, slug, name, status) VALUES (?, ?, ?, 'active')`,
			s.id, s.slug, s.name)
		if err != nil {
			log.Fatalf("Failed to insert challenge %s: %s", s.slug, err)
		}
		for _, b := range buddies {
			_, err := db.Exec(`INSERT OR IGNORE INTO challenge_participants (challenge_id, user_id) VALUES (?, ?)`,
				s.id, b.id)
			if err != nil {
				log.Fatalf("Failed to join %s to %s: %s", b.name, s.slug, err)
			}
		}
	}
	log.Info("Ensured challenges and memberships exist.", "count", len(seasons))

	log.Info("Preparing to insert demo entries...", "per_user", entriesPerUser)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, entriesPerUser)
	valueArgs := make([]interface{}, 0, entriesPerUser*7)
	total := 0

	for _, b := range buddies {
		for i := 0; i < entriesPerUser; i++ {
			// Skew the demo data so each buddy has a distinct profile on the
			// board instead of uniform noise.
			percentile := rand.Intn(101)
			isWin := 0
			if rand.Float64() < 0.3+0.1*float64(len(b.name)%3) {
				isWin = 1
			}
			occurred := time.Now().Add(-time.Duration(rand.Intn(90*24)) * time.Hour)
			season := seasons[1+rand.Intn(len(seasons)-1)]

			valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?)")
			valueArgs = append(valueArgs,
				uuid.NewString(),
				season.id,
				b.id,
				occurred.Unix(),
				isWin,
				percentile,
				fmt.Sprintf("demo session %d", i+1),
			)
			total++
		}

		stmt := fmt.Sprintf(`
			INSERT INTO entries (id, challenge_id, user_id, occurred_at, is_win, percentile, notes)
			VALUES %s;`, strings.Join(valueStrings, ","))
		if _, err := tx.Exec(stmt, valueArgs...); err != nil {
			tx.Rollback()
			log.Fatalf("Failed to execute batch insert: %s", err)
		}

		valueStrings = make([]string, 0, entriesPerUser)
		valueArgs = make([]interface{}, 0, entriesPerUser*7)
		log.Info("Inserted entries", "buddy", b.name, "completed", total)
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully seeded demo data.", "entries", total, "duration", duration)
}
