package main

import (
	"log"
	"os"

	"formhive-be/internal/model"
	"formhive-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	models := []interface{}{
		&model.User{},
		&model.Plan{},
		&model.Subscription{},
		&model.SubscriptionHistory{},
		&model.PaymentTransaction{},
		&model.Form{},
		&model.FormSubmission{},
		&model.FormExport{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// Partial index backing the single-open-subscription invariant at
	// the storage level; the service enforces it under the user lock.
	indexSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_one_open_per_user
			ON subscriptions (user_id) WHERE status IN ('pending', 'active');`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_expiry_sweep
			ON subscriptions (end_date) WHERE status = 'active';`,
	}
	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to create index: %v. Continuing...", err)
		}
	}

	log.Println("Migration completed")
}
