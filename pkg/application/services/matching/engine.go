// Package matching maintains demand and stock records and runs the
// AI-assisted suggest and confirm workflow.
package matching

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/domain/repositories"
	"github.com/vsinha/timber/pkg/infrastructure/events"
)

// Options tunes an Engine. Zero values select the defaults; a CommissionRate
// that is Valid is used as given, zero included.
type Options struct {
	CommissionRate    decimal.NullDecimal
	FallbackUnitPrice decimal.Decimal
	Now               func() time.Time
	NewID             func() string
}

// Engine is the match lifecycle service
type Engine struct {
	repo       repositories.MarketRepository
	interp     *interpreter.Interpreter
	publisher  events.Publisher
	commission *Commission
	now        func() time.Time
	newID      func() string
	logger     *zap.Logger
}

// NewEngine creates a match engine. interp and publisher may be nil.
func NewEngine(repo repositories.MarketRepository, interp *interpreter.Interpreter, publisher events.Publisher, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Engine{
		repo:       repo,
		interp:     interp,
		publisher:  publisher,
		commission: NewCommission(opts.CommissionRate, opts.FallbackUnitPrice, logger),
		now:        opts.Now,
		newID:      opts.NewID,
		logger:     logger,
	}
}

// Commission returns the engine's commission calculator
func (e *Engine) Commission() *Commission {
	return e.commission
}

// publish emits events after a successful commit. Failures are logged, never returned.
func (e *Engine) publish(evts ...events.Event) {
	if e.publisher == nil {
		return
	}
	for _, evt := range evts {
		if err := e.publisher.AppendEvent(evt.StreamID(), evt); err != nil {
			e.logger.Warn("failed to publish event",
				zap.String("type", evt.Type()),
				zap.String("stream", evt.StreamID()),
				zap.Error(err))
		}
	}
}
