// Seeds the database and the document store with a working baseline: the
// admin credential row, a handful of sample appointments, and the four config
// documents in their expected shapes. Safe to re-run; documents are only
// written when absent.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"

	"github.com/notarly/backoffice/internal/config"
	"github.com/notarly/backoffice/internal/db"
	"github.com/notarly/backoffice/internal/docstore"
	"github.com/notarly/backoffice/internal/schedule"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("seed complete")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, int32(cfg.PgMaxConns))
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	// Admin credential
	username := envOr("ADMIN_USERNAME", "admin")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return errors.New("ADMIN_PASSWORD is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO credentials (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, username, string(hash))
	if err != nil {
		return fmt.Errorf("seed credentials: %w", err)
	}
	fmt.Printf("seeded admin user %q\n", username)

	// Sample appointments
	for i := 0; i < 5; i++ {
		date := gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 1, 0))
		_, err := pool.Exec(ctx, `
			INSERT INTO appointments (appointment_date, appointment_time)
			VALUES ($1, $2)
		`, date.Format("2006-01-02"), fmt.Sprintf("%d:00", 9+gofakeit.Number(0, 7)))
		if err != nil {
			return fmt.Errorf("seed appointments: %w", err)
		}
	}
	fmt.Println("seeded 5 sample appointments")

	// Config documents
	var store docstore.Store
	if cfg.DocumentStore == "fs" {
		store = docstore.NewFSStore(cfg.DocumentDir)
	} else {
		s3Store, err := docstore.NewS3Store(ctx, cfg.StoreTimeout)
		if err != nil {
			return err
		}
		store = s3Store
	}

	hours := schedule.BusinessHoursDocument{
		{"Monday": {"9:00", "10:00", "11:00", "13:00", "14:00"}},
		{"Tuesday": {"9:00", "10:00", "11:00", "13:00", "14:00"}},
		{"Wednesday": {"9:00", "10:00", "11:00", "13:00", "14:00"}},
		{"Thursday": {"9:00", "10:00", "11:00", "13:00", "14:00"}},
		{"Friday": {"9:00", "10:00", "11:00"}},
	}

	seedDocs := map[string]any{
		cfg.BusinessHoursKey: hours,
		cfg.BlockedDatesKey:  schedule.BlockedDatesDocument{{Blocked: []string{}}},
		cfg.BlockedTimesKey:  schedule.BlockedTimeSlotDocument{},
		cfg.PendingKey:       schedule.PendingAppointmentsDocument{},
	}

	for key, doc := range seedDocs {
		if _, _, err := store.Fetch(ctx, cfg.DocumentBucket, key); err == nil {
			fmt.Printf("document %s already present, skipping\n", key)
			continue
		} else if !errors.Is(err, docstore.ErrNotFound) {
			return err
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if _, err := store.Put(ctx, cfg.DocumentBucket, key, data, ""); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
		fmt.Printf("seeded document %s\n", key)
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
