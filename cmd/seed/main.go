package main

import (
	"log"
	"os"

	"formhive-be/internal/model"
	"formhive-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
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

	color.Cyan("Seeding plan catalog...")

	plans := []model.Plan{
		{
			Name:                  "Free",
			Slug:                  "free",
			Description:           "Get started with basic forms",
			BillingModel:          "recurring",
			Currency:              "USD",
			MaxForms:              3,
			MaxSubmissionsPerForm: 100,
			MaxExportsPerForm:     1,
			IsDefault:             true,
			IsActive:              true,
			SortOrder:             1,
		},
		{
			Name:                  "Pro",
			Slug:                  "pro",
			Description:           "For growing teams that need more capacity",
			BillingModel:          "recurring",
			PriceMonthly:          19,
			PriceYearly:           190,
			Currency:              "USD",
			MaxForms:              50,
			MaxSubmissionsPerForm: 10000,
			MaxExportsPerForm:     -1,
			IsActive:              true,
			SortOrder:             2,
		},
		{
			Name:                  "Business",
			Slug:                  "business",
			Description:           "Unlimited everything, forever",
			BillingModel:          "lifetime",
			PriceLifetime:         499,
			Currency:              "USD",
			MaxForms:              -1,
			MaxSubmissionsPerForm: -1,
			MaxExportsPerForm:     -1,
			IsActive:              true,
			SortOrder:             3,
		},
	}

	for _, p := range plans {
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&p)
		if res.Error != nil {
			color.Red("Failed to seed plan %s: %v", p.Slug, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			color.Green("Seeded plan: %s", p.Slug)
		} else {
			color.Yellow("Plan already exists: %s", p.Slug)
		}
	}

	color.Cyan("Seeding demo accounts...")

	demoUsers := []struct {
		email    string
		fullName string
		role     string
		password string
	}{
		{"admin@formhive.app", "FormHive Admin", "admin", "admin12345"},
		{"demo@formhive.app", "Demo User", "user", "demo12345"},
	}

	for _, u := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			color.Red("Failed to hash password for %s: %v", u.email, err)
			continue
		}
		user := model.User{
			Id:           uuid.New(),
			Email:        u.email,
			FullName:     u.fullName,
			PasswordHash: string(hash),
			Role:         u.role,
		}
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&user)
		if res.Error != nil {
			color.Red("Failed to seed user %s: %v", u.email, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			color.Green("Seeded user: %s", u.email)
		} else {
			color.Yellow("User already exists: %s", u.email)
		}
	}

	color.Cyan("Seeding completed")
}
