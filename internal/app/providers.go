package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lyre-server/internal/api/server"
	v1routes "lyre-server/internal/api/v1/routes"
	"lyre-server/internal/app/asr"
	"lyre-server/internal/app/auth"
	"lyre-server/internal/app/common"
	"lyre-server/internal/app/jobs"
	"lyre-server/internal/app/repository"
	"lyre-server/internal/app/repository/pg"
	"lyre-server/internal/app/repository/sqlite"
	"lyre-server/internal/app/storage"
	"lyre-server/internal/app/summary"
	"lyre-server/internal/config"
)

// App bundles everything the serve command needs to run and shut down.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   repository.Store
	Manager *jobs.Manager
	Hub     *jobs.Hub
	Server  *server.Server
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := common.NewLogger(cfg.Environment == "development")
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	cleanup := func() { _ = logger.Sync() }
	return logger, cleanup, nil
}

func provideStore(cfg *config.Config) (repository.Store, func(), error) {
	var (
		store repository.Store
		err   error
	)
	switch cfg.DBDriver {
	case "postgres":
		store, err = pg.Open(cfg.PostgresDSN)
	default:
		store, err = sqlite.Open(cfg.SQLitePath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}
	cleanup := func() { _ = store.Close() }
	return store, cleanup, nil
}

func provideASRProvider(cfg *config.Config, logger *zap.Logger) asr.Provider {
	if cfg.UseMockProvider() {
		logger.Warn("ASR_API_KEY not set, using the deterministic mock provider")
		return asr.NewMockProvider(cfg.MockPollsToDone)
	}
	return asr.NewRemoteProvider(cfg.ASRBaseURL, cfg.ASRAPIKey)
}

// provideObjectStore connects to MinIO. With the mock ASR provider the object
// store is optional: local runs without MinIO still work, presign requests
// just answer 503.
func provideObjectStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.ObjectStore, error) {
	store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		if cfg.UseMockProvider() {
			logger.Warn("object storage unavailable, continuing without it", zap.Error(err))
			return nil, nil
		}
		return nil, fmt.Errorf("connect object storage: %w", err)
	}
	return store, nil
}

func provideArchiver(store storage.ObjectStore) *storage.Archiver {
	if store == nil {
		return nil
	}
	return storage.NewArchiver(store)
}

func provideSummarizer(cfg *config.Config) summary.Summarizer {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	return summary.NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.SummaryModel)
}

func provideVerifier(cfg *config.Config) auth.TokenVerifier {
	static := auth.NewStaticVerifier(cfg.DeviceTokens)
	if cfg.RedisAddr != "" {
		return auth.NewRedisVerifier(cfg.RedisAddr, cfg.RedisPassword, static)
	}
	return static
}

func provideHub(logger *zap.Logger) *jobs.Hub {
	return jobs.NewHub(logger)
}

func providePipeline(
	provider asr.Provider,
	store repository.Store,
	archiver *storage.Archiver,
	summarizer summary.Summarizer,
	logger *zap.Logger,
) *jobs.Pipeline {
	return jobs.NewPipeline(provider, store.Transcriptions(), store.Recordings(),
		store.Settings(), archiver, summarizer, logger)
}

func provideManager(
	cfg *config.Config,
	provider asr.Provider,
	store repository.Store,
	pipeline *jobs.Pipeline,
	hub *jobs.Hub,
	logger *zap.Logger,
) (*jobs.Manager, func()) {
	manager := jobs.NewManager(provider, store.Jobs(), store.Recordings(),
		pipeline, hub, cfg.PollInterval, cfg.PollMaxFailures, logger)
	jobs.SetDefault(manager)
	return manager, manager.Stop
}

func provideService(
	provider asr.Provider,
	store repository.Store,
	objectStore storage.ObjectStore,
	manager *jobs.Manager,
	logger *zap.Logger,
) *jobs.Service {
	return jobs.NewService(provider, store.Jobs(), store.Recordings(),
		store.Settings(), objectStore, manager, logger)
}

func provideServerConfig(cfg *config.Config) server.Config {
	return server.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Environment: cfg.Environment,
		AuthEnabled: len(cfg.DeviceTokens) > 0,
	}
}

func provideRouteDeps(
	store repository.Store,
	objectStore storage.ObjectStore,
	service *jobs.Service,
	manager *jobs.Manager,
	hub *jobs.Hub,
	logger *zap.Logger,
) v1routes.Deps {
	return v1routes.Deps{
		Store:       store,
		ObjectStore: objectStore,
		JobService:  service,
		Manager:     manager,
		Hub:         hub,
		Logger:      logger,
	}
}

func provideServer(
	serverCfg server.Config,
	deps v1routes.Deps,
	verifier auth.TokenVerifier,
	logger *zap.Logger,
) *server.Server {
	return server.New(serverCfg, deps, verifier, logger)
}
