package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/device"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/interactions"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/locator"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/mapview"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/pill"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/prescription"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/search"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/symptoms"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/config"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/favrepo"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/imagestore"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/llm/gemini"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/searchcache"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/searchrepo"
)

func provideGeminiClient(cfg *config.Config) (*gemini.Client, error) {
	return gemini.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideDeviceConfig(cfg *config.Config) device.Config {
	return device.Config{
		Secret:   cfg.Device.Secret,
		TokenTTL: cfg.Device.TokenTTL,
	}
}

func providePrescriptionService(cfg *config.Config, client *gemini.Client, archive prescription.ImageArchive, logger *slog.Logger) prescription.Service {
	return prescription.NewService(prescription.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	}, client, archive, logger)
}

func provideImageArchive(cfg *config.Config, logger *slog.Logger) prescription.ImageArchive {
	if !cfg.Archive.Enabled {
		logger.Info("image archive disabled, using memory archive")
		return imagestore.NewMemoryArchive()
	}
	archive, err := imagestore.NewS3Archive(
		cfg.Archive.Endpoint,
		cfg.Archive.AccessKey,
		cfg.Archive.SecretKey,
		cfg.Archive.Bucket,
		cfg.Archive.Region,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize s3 archive, using memory archive", "error", err)
		return imagestore.NewMemoryArchive()
	}
	return archive
}

// geminiEmbedder adapts the Gemini client's embedding endpoint to the
// search domain's Embedder.
type geminiEmbedder struct {
	client *gemini.Client
	model  string
}

func (e *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.EmbedContent(ctx, e.model, text)
}

func provideSearchService(cfg *config.Config, repo search.QueryRepository, store search.Store, client *gemini.Client, logger *slog.Logger) search.Service {
	return search.NewService(search.Config{
		Model:               cfg.LLM.Model,
		EmbeddingModel:      cfg.LLM.EmbeddingModel,
		Temperature:         cfg.LLM.Temperature,
		CacheTTL:            cfg.Search.CacheTTL,
		TopTrending:         cfg.Search.TopTrending,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
	}, repo, store, client, &geminiEmbedder{client: client, model: cfg.LLM.EmbeddingModel}, logger)
}

func provideSearchRepository(cfg *config.Config, logger *slog.Logger) search.QueryRepository {
	pool, ok := newPostgresPool(cfg.Search.Postgres, logger)
	if !ok {
		logger.Info("search postgres dsn not set, using memory repository")
		return searchrepo.NewMemoryRepository()
	}
	logger.Info("search postgres repository enabled")
	return searchrepo.NewPostgresRepository(pool)
}

func provideSearchStore(cfg *config.Config, logger *slog.Logger) search.Store {
	if cfg.Search.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg.Search.Redis.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return searchcache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return searchcache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("search valkey store enabled", "addr", cfg.Search.Redis.Addr)
			return searchcache.NewValkeyStore(client, "medsearch")
		}
	}
	return searchcache.NewMemoryStore()
}

func provideFavoriteRepository(cfg *config.Config, logger *slog.Logger) locator.FavoriteRepository {
	pool, ok := newPostgresPool(cfg.Locator.Postgres, logger)
	if !ok {
		logger.Info("locator postgres dsn not set, using memory repository")
		return favrepo.NewMemoryRepository()
	}
	logger.Info("favorite pharmacy postgres repository enabled")
	return favrepo.NewPostgresRepository(pool)
}

func provideLocatorService(cfg *config.Config, client *gemini.Client, favorites locator.FavoriteRepository, logger *slog.Logger) locator.Service {
	return locator.NewService(locator.Config{
		Model:      cfg.LLM.Model,
		MaxResults: cfg.Locator.MaxResults,
	}, client, favorites, logger)
}

func provideInteractionsService(cfg *config.Config, client *gemini.Client, logger *slog.Logger) interactions.Service {
	return interactions.NewService(cfg.LLM.Model, client, logger)
}

func providePillService(cfg *config.Config, client *gemini.Client, logger *slog.Logger) pill.Service {
	return pill.NewService(cfg.LLM.Model, client, logger)
}

func provideSymptomsService(cfg *config.Config, client *gemini.Client, logger *slog.Logger) symptoms.Service {
	return symptoms.NewService(symptoms.Config{
		Model:             cfg.LLM.Model,
		MaxConditions:     cfg.Symptoms.MaxConditions,
		DefaultDisclaimer: cfg.Symptoms.DefaultDisclaimer,
	}, client, logger)
}

// stateMapHandle produces headless widgets; the server reconciles markers
// against them and ships view-state snapshots to clients.
type stateMapHandle struct{}

func (stateMapHandle) NewWidget(cfg mapview.WidgetConfig) (mapview.Widget, error) {
	return mapview.NewStateWidget(cfg), nil
}

func provideMapLoader(cfg *config.Config) *mapview.Loader {
	return mapview.NewLoader(cfg.Locator.MapsAPIKey, func(string) (mapview.Handle, error) {
		return stateMapHandle{}, nil
	})
}

func newPostgresPool(cfg config.PostgresConfig, logger *slog.Logger) (*pgxpool.Pool, bool) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, false
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn", "error", err)
		return nil, false
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool", "error", err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed", "error", err)
		pool.Close()
		return nil, false
	}
	return pool, true
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
