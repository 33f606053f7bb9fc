package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/application/services/insights"
	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/application/services/loading"
	"github.com/vsinha/timber/pkg/application/services/matching"
	"github.com/vsinha/timber/pkg/infrastructure/ai"
	"github.com/vsinha/timber/pkg/infrastructure/ai/gemini"
	"github.com/vsinha/timber/pkg/infrastructure/config"
	"github.com/vsinha/timber/pkg/infrastructure/events"
	"github.com/vsinha/timber/pkg/infrastructure/kv"
	"github.com/vsinha/timber/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/timber/pkg/infrastructure/repositories/market"
)

// App holds the services a command invocation works with
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    kv.Store
	Repo     *market.Repository
	Events   *events.InMemoryEventStore
	Interp   *interpreter.Interpreter
	Engine   *matching.Engine
	Loading  *loading.Service
	Insights *insights.Service
	Loader   *csv.Loader
}

// NewApp wires the marketplace from cfg. A nil generator selects Gemini when
// an API key is configured and leaves the AI features unavailable otherwise.
func NewApp(ctx context.Context, cfg *config.Config, generator ai.Generator, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if generator == nil && cfg.HasAI() {
		gen, err := gemini.New(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.RequestsPerMin)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		logger.Debug("using Gemini", zap.String("model", gen.Model()))
		generator = gen
	}

	store, err := kv.Open(ctx, kv.Options{
		Backend:     cfg.Store.Backend,
		SQLitePath:  cfg.Store.SQLitePath,
		DynamoTable: cfg.Store.DynamoTable,
		AWSRegion:   cfg.Store.AWSRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	eventStore := events.NewInMemoryEventStore(logger)
	if err := eventStore.Subscribe(events.MarketEventTypes, events.NewLogHandler(logger.Named("events"))); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to subscribe event log: %w", err)
	}

	repo := market.NewRepository(store, logger.Named("repository"))
	interp := interpreter.New(generator, cfg.GetAITimeout(), logger.Named("ai"))

	engine := matching.NewEngine(repo, interp, eventStore, matching.Options{
		CommissionRate:    decimal.NewNullDecimal(cfg.GetCommissionRate()),
		FallbackUnitPrice: cfg.GetFallbackUnitPrice(),
	}, logger.Named("matching"))

	planner := loading.NewService(
		repo, repo,
		loading.NewSequencer(cfg.Loading.TruckCapacity),
		loading.NewRouteAdvisor(interp, logger.Named("route")),
		eventStore,
		logger.Named("loading"),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Repo:     repo,
		Events:   eventStore,
		Interp:   interp,
		Engine:   engine,
		Loading:  planner,
		Insights: insights.NewService(repo, repo, interp, logger.Named("insights")),
		Loader:   csv.NewLoader(),
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}
