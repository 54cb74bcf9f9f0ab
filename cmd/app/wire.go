//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/bootstrap"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/device"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/session"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/config"
	httpiface "github.com/gauriiiiiiiiiiii/genmeds-api/internal/interface/http"
	"github.com/gauriiiiiiiiiiii/genmeds-api/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideGeminiClient,
		provideDeviceConfig,
		provideImageArchive,
		providePrescriptionService,
		provideSearchRepository,
		provideSearchStore,
		provideSearchService,
		provideFavoriteRepository,
		provideLocatorService,
		provideInteractionsService,
		providePillService,
		provideSymptomsService,
		provideMapLoader,
		device.NewService,
		session.NewManager,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
