// migrate applies the SQL migrations under migrations/ to DATABASE_URL.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"os"

	"quote-drafter/internal/config"
	"quote-drafter/internal/db"
	"quote-drafter/internal/logging"
	"quote-drafter/migrations"
)

func main() {
	cfg, err := config.Load()
	log := logging.New("info", false)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log = logging.New(cfg.Log.Level, cfg.Log.Pretty)

	url := cfg.Store.DatabaseURL
	if url == "" {
		log.Error().Msg("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, url)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.FS, log); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("migrate")
	}
	log.Info().Msg("migrations applied")
}
