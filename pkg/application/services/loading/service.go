package loading

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/domain/repositories"
	"github.com/vsinha/timber/pkg/infrastructure/events"
)

// BuildOptions controls a single plan request
type BuildOptions struct {
	// AllowMock fills up with demo matches when fewer than two real ones exist
	AllowMock bool
	// SkipRoute leaves the deterministic route without asking the AI
	SkipRoute bool
}

// Service builds loading plans from the unbilled confirmed matches
type Service struct {
	matches   repositories.MatchRepository
	companies repositories.CompanyRepository
	sequencer *Sequencer
	advisor   *RouteAdvisor
	publisher events.Publisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a loading plan service. advisor and publisher may be nil.
func NewService(matches repositories.MatchRepository, companies repositories.CompanyRepository, sequencer *Sequencer, advisor *RouteAdvisor, publisher events.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sequencer == nil {
		sequencer = NewSequencer(DefaultCapacity)
	}
	return &Service{
		matches:   matches,
		companies: companies,
		sequencer: sequencer,
		advisor:   advisor,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// BuildPlan sequences the unbilled matches and, when possible, lets the AI
// reorder the route. A failed route request keeps the deterministic plan and
// is reported in plan.Diagnostics.
func (s *Service) BuildPlan(ctx context.Context, opts BuildOptions) (*entities.LoadingPlan, error) {
	matches, err := s.matches.GetUnbilledMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	companies, err := s.companies.GetCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}

	var diagnostics []string
	if usable := len(selectMatches(matches)); opts.AllowMock && usable < 2 {
		mocks, mockCompanies := MockMatches(2-usable, s.now())
		matches = append(matches, mocks...)
		companies = append(companies, mockCompanies...)
		diagnostics = append(diagnostics, fmt.Sprintf("Demo data: %d mock matches were added because only %d real matches exist.", len(mocks), usable))
		s.logger.Info("using mock matches for loading plan", zap.Int("real", usable), zap.Int("mock", len(mocks)))
	}

	plan, err := s.sequencer.Sequence(matches, NewDirectory(companies))
	if err != nil {
		return nil, err
	}
	plan.Diagnostics = append(diagnostics, plan.Diagnostics...)

	if !opts.SkipRoute {
		plan = s.advise(ctx, plan)
	}

	s.logger.Info("loading plan built",
		zap.Int("items", len(plan.Items)),
		zap.Float64("total_volume", plan.TotalVolume),
		zap.Float64("capacity_used", plan.CapacityUsed))
	if s.publisher != nil {
		evt := events.NewLoadingPlanGenerated(plan)
		if err := s.publisher.AppendEvent(evt.StreamID(), evt); err != nil {
			s.logger.Warn("failed to publish event", zap.String("type", evt.Type()), zap.Error(err))
		}
	}
	return plan, nil
}

func (s *Service) advise(ctx context.Context, plan *entities.LoadingPlan) *entities.LoadingPlan {
	var err error
	var advised *entities.LoadingPlan
	if s.advisor == nil {
		err = interpreter.ErrAIUnavailable
	} else {
		advised, err = s.advisor.Advise(ctx, plan)
	}
	if err != nil {
		s.logger.Warn("route advice unavailable, keeping default route", zap.Error(err))
		plan.Diagnostics = append(plan.Diagnostics, "Route narrative unavailable: "+interpreter.UserMessage(err))
		return plan
	}
	return advised
}
