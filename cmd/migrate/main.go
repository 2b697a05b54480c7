package main

import (
	"context"
	"flag"
	"fmt"

	"ms-booking/internal/catalog"
	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/db"
	"ms-booking/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration")
	to := flag.Uint("to", 0, "migrate to this version instead of the latest")
	seed := flag.Bool("seed", false, "insert the demo movies and shows after migrating")
	days := flag.Int("days", 3, "days of demo shows to seed")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewLogger(logger.Options{Level: logger.ParseLevel(cfg.Logging.Level)})
	defer log.Close()

	ctx := context.Background()
	bunDB, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	switch {
	case cfg.Database.Driver == "sqlite":
		if *down || *to > 0 {
			log.Fatal("MIGRATE", "versioned migrations only run against postgres")
		}
		if err := db.CreateSchema(ctx, bunDB); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
		log.Info("MIGRATE", "✅ sqlite schema ready")
	default:
		runner := migrations.NewRunner(bunDB, log)
		if err := runner.Initialize(); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
		switch {
		case *down:
			err = runner.MigrateDown()
		case *to > 0:
			err = runner.MigrateTo(*to)
		default:
			err = runner.MigrateUp()
		}
		if err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
		// Close also closes bunDB.
		if err := runner.Close(); err != nil {
			log.Warn("MIGRATE", err.Error())
		}
		if *seed {
			bunDB, err = db.Open(ctx, cfg.Database, log)
			if err != nil {
				log.Fatal("DATABASE", err.Error())
			}
			defer bunDB.Close()
		}
	}

	if *seed && !*down {
		n, err := catalog.NewService(db.New(bunDB), log).Seed(ctx, catalog.SeedOptions{Days: *days})
		if err != nil {
			log.Fatal("SEED", err.Error())
		}
		log.Info("SEED", fmt.Sprintf("✅ Seeded %d shows", n))
	}
}
