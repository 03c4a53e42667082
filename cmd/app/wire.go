//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/quiz-catalog/internal/bootstrap"
	"github.com/yanqian/quiz-catalog/internal/domain/auth"
	"github.com/yanqian/quiz-catalog/internal/domain/bookmark"
	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
	"github.com/yanqian/quiz-catalog/internal/domain/premium"
	"github.com/yanqian/quiz-catalog/internal/infra/cache"
	"github.com/yanqian/quiz-catalog/internal/infra/config"
	httpiface "github.com/yanqian/quiz-catalog/internal/interface/http"
	"github.com/yanqian/quiz-catalog/pkg/logger"
	"github.com/yanqian/quiz-catalog/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideCatalogConfig,
		provideCacheConfig,
		provideAuthConfig,
		provideRegistry,
		wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		provideCacheRecorder,
		metrics.NewHTTPRecorder,
		provideCodec,
		provideCacheBackend,
		cache.NewAside,
		providePostgresPool,
		provideCatalogRepository,
		provideProfileRepository,
		provideProviderStore,
		provideTopicStore,
		provideQuestionStore,
		provideSequencer,
		catalog.NewService,
		provideTopicLookup,
		bookmark.NewService,
		provideIdentityClient,
		auth.NewService,
		provideSubscriptionChecker,
		premium.NewGate,
		provideHealthChecks,
		httpiface.NewHandler,
		httpiface.NewHealthHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
