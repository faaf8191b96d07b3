package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"quote-drafter/internal/ai"
	"quote-drafter/internal/blob"
	"quote-drafter/internal/config"
	"quote-drafter/internal/core"
	"quote-drafter/internal/db"
	"quote-drafter/internal/metrics"
	"quote-drafter/internal/render"
	"quote-drafter/internal/store"
	"quote-drafter/migrations"
)

// Build wires the stores, services and external clients selected by cfg.
// The returned close function releases the database pool, if any.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ApplicationService, func(), error) {
	docStore, drafts, closeFn, err := openStores(ctx, cfg.Store, log)
	if err != nil {
		return nil, nil, err
	}

	docs := core.NewDocuments(docStore, log)
	html, err := render.NewHTMLRenderer()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if cfg.AI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; AI features are disabled")
	}

	svc := NewAppService(Dependencies{
		Quotes:    core.NewQuoteService(docs, log, time.Now),
		Directory: core.NewDirectoryService(docs, log),
		Users:     core.NewUserService(docs, log),
		Drafts:    drafts,
		Agent: ai.NewAgent(ai.Config{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			Timeout: cfg.AI.Timeout,
		}, log, metrics.Default()),
		Logos:   ai.NewLogoOptimizer(),
		Storage: blob.NewSupabaseStorage(cfg.Blob.SupabaseURL, cfg.Blob.ServiceRoleKey, cfg.Blob.Bucket),
		PDF:     render.NewPDFGenerator(log, time.Now),
		HTML:    html,
		Log:     log,
		Now:     time.Now,
	})

	created, err := svc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if created {
		log.Info().Str("username", cfg.Admin.Username).Msg("bootstrap admin created")
	}
	return svc, closeFn, nil
}

func openStores(ctx context.Context, cfg config.StoreConfig, log zerolog.Logger) (core.DocumentStore, core.DraftStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx, pool, migrations.FS, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		pg := store.NewPostgresStore(pool, log)
		log.Info().Str("driver", cfg.Driver).Msg("document store ready")
		return pg, pg, pool.Close, nil
	case config.DriverMemory:
		mem := store.NewMemoryStore()
		log.Info().Str("driver", cfg.Driver).Msg("document store ready")
		return mem, mem, func() {}, nil
	case config.DriverFile, "":
		log.Info().Str("driver", config.DriverFile).Str("path", cfg.DataFile).Msg("document store ready")
		return store.NewFileStore(cfg.DataFile, log), store.NewFileDraftStore(cfg.DraftDir), func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
