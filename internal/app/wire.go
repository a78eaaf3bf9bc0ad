//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"lyre-server/internal/config"
)

// InitializeApp assembles the full server from configuration. The returned
// cleanup stops the job manager, closes the store and flushes the logger.
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		provideLogger,
		provideStore,
		provideASRProvider,
		provideObjectStore,
		provideArchiver,
		provideSummarizer,
		provideVerifier,
		provideHub,
		providePipeline,
		provideManager,
		provideService,
		provideServerConfig,
		provideRouteDeps,
		provideServer,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
