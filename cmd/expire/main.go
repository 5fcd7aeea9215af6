// Expiry sweep. Run from cron; each overdue subscription is expired in
// its own transaction so one bad row never blocks the batch.
package main

import (
	"context"
	"log"
	"time"

	"formhive-be/internal/bootstrap"
	"formhive-be/internal/config"
	"formhive-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	color.Cyan("Running subscription expiry sweep (batch size %d)...", cfg.Billing.ExpireBatchSize)

	expired, err := container.SubscriptionService.ExpireDue(ctx, time.Now(), cfg.Billing.ExpireBatchSize)
	if err != nil {
		color.Red("Expiry sweep failed: %v", err)
		log.Fatal(err)
	}

	color.Green("Expiry sweep completed: %d subscriptions expired", expired)
}
