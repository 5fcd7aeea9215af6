package main

import (
	"context"
	"log"

	"formhive-be/internal/bootstrap"
	"formhive-be/internal/config"
	"formhive-be/internal/server"
	"formhive-be/internal/tracer"
	"formhive-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
