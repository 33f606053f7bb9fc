// Package insights answers prose questions about a demand or a stock listing.
package insights

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/domain/repositories"
	"github.com/vsinha/timber/pkg/infrastructure/ai"
)

// Topic selects the kind of advice
type Topic int

const (
	// TopicSustainability gives sustainability tips for a stock listing
	TopicSustainability Topic = iota
	// TopicChecklist gives an order checklist for a demand
	TopicChecklist
)

// String method for Topic enum
func (t Topic) String() string {
	switch t {
	case TopicSustainability:
		return "sustainability tips"
	case TopicChecklist:
		return "order checklist"
	default:
		return "unknown"
	}
}

// ParseTopic reads a topic name as used on the command line
func ParseTopic(s string) (Topic, error) {
	switch s {
	case "sustainability", "stock":
		return TopicSustainability, nil
	case "checklist", "demand":
		return TopicChecklist, nil
	default:
		return 0, fmt.Errorf("%w: unknown topic %q (valid: sustainability, checklist)", entities.ErrInvalidInput, s)
	}
}

// Service produces AI tips as plain line lists
type Service struct {
	demands repositories.DemandRepository
	stock   repositories.StockRepository
	interp  *interpreter.Interpreter
	logger  *zap.Logger
}

// NewService creates an insights service
func NewService(demands repositories.DemandRepository, stock repositories.StockRepository, interp *interpreter.Interpreter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{demands: demands, stock: stock, interp: interp, logger: logger}
}

// Tips returns the advice lines for the record subjectID. An empty list is a valid answer.
func (s *Service) Tips(ctx context.Context, topic Topic, subjectID string) ([]string, error) {
	if !s.interp.Available() {
		return nil, interpreter.ErrAIUnavailable
	}

	var prompt string
	switch topic {
	case TopicSustainability:
		stock, err := s.stock.GetStockItem(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		prompt = fmt.Sprintf(`Give short sustainability tips for selling and transporting this timber stock.
Product: %s, diameter %g-%gcm, length %gm, %d pieces (%.3f m3). Certification: %s.
Answer with one tip per line, each line starting with "- ".`,
			stock.Product, stock.DiameterFrom, stock.DiameterTo, stock.Length, stock.Quantity, stock.CubicVolume, orNone(stock.Sustainability))
	case TopicChecklist:
		demand, err := s.demands.GetDemand(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		prompt = fmt.Sprintf(`Write a checklist a buyer should go through before ordering this timber.
Product: %s, diameter %g-%gcm, length %gm, %d pieces (%.3f m3). Notes: %s.
Answer with one item per line, each line starting with "- ".`,
			demand.Product, demand.DiameterFrom, demand.DiameterTo, demand.Length, demand.Quantity, demand.CubicVolume, orNone(demand.Notes))
	default:
		return nil, fmt.Errorf("%w: unknown topic %d", entities.ErrInvalidInput, topic)
	}

	text, err := s.interp.Generate(ctx, topic.String(), prompt, ai.Options{})
	if err != nil {
		return nil, err
	}

	tips := interpreter.ParseLineList(text, interpreter.DefaultLinePrefix)
	s.logger.Debug("tips received", zap.Stringer("topic", topic), zap.String("subject", subjectID), zap.Int("count", len(tips)))
	return tips, nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
