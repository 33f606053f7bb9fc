package matching

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/infrastructure/ai"
)

// FeatureSuggest names the match suggestion request in errors, logs and the in-flight guard
const FeatureSuggest = "match suggestions"

// suggestionWire is the loosely typed element of the suggestion array
type suggestionWire struct {
	DemandID        interpreter.Text   `json:"demandId"`
	StockID         interpreter.Text   `json:"stockId"`
	Reason          interpreter.Text   `json:"reason"`
	MatchStrength   interpreter.Text   `json:"matchStrength"`
	SimilarityScore interpreter.Number `json:"similarityScore"`
}

// SuggestMatches asks the AI to pair open demands with available stock.
// Suggestions that are incomplete, refer to records outside the pool or
// repeat a pair are dropped and counted in the batch.
func (e *Engine) SuggestMatches(ctx context.Context) (interpreter.Batch[entities.MatchSuggestion], error) {
	var none interpreter.Batch[entities.MatchSuggestion]

	if !e.interp.Available() {
		return none, interpreter.ErrAIUnavailable
	}

	demands, err := e.OpenDemands(ctx)
	if err != nil {
		return none, fmt.Errorf("failed to load demands: %w", err)
	}
	stock, err := e.AvailableStock(ctx)
	if err != nil {
		return none, fmt.Errorf("failed to load stock: %w", err)
	}
	if len(demands) == 0 || len(stock) == 0 {
		return none, fmt.Errorf("%d open demands, %d available stock: %w", len(demands), len(stock), entities.ErrNothingToMatch)
	}

	text, err := e.interp.Generate(ctx, FeatureSuggest, buildSuggestPrompt(demands, stock), ai.Options{StructuredOutput: true})
	if err != nil {
		return none, err
	}

	decoded, err := interpreter.ParseArray[suggestionWire](FeatureSuggest, text)
	if err != nil {
		e.logger.Warn("could not parse match suggestions", zap.Error(err))
		return none, err
	}

	openDemand := make(map[string]bool, len(demands))
	for _, d := range demands {
		openDemand[d.ID] = true
	}
	openStock := make(map[string]bool, len(stock))
	for _, s := range stock {
		openStock[s.ID] = true
	}
	seen := make(map[string]bool, len(decoded.Items))

	valid := decoded.Keep(func(w suggestionWire) bool {
		demandID, stockID := w.DemandID.String(), w.StockID.String()
		if demandID == "" || stockID == "" || w.Reason == "" {
			return false
		}
		if !openDemand[demandID] || !openStock[stockID] {
			return false
		}
		key := entities.PairKey(demandID, stockID)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
	if err := interpreter.RequireSome(FeatureSuggest, valid); err != nil {
		e.logger.Warn("all match suggestions were invalid", zap.Int("dropped", valid.Dropped))
		return none, err
	}

	batch := interpreter.Batch[entities.MatchSuggestion]{
		Items:   make([]entities.MatchSuggestion, 0, len(valid.Items)),
		Dropped: valid.Dropped,
	}
	for _, w := range valid.Items {
		batch.Items = append(batch.Items, entities.MatchSuggestion{
			DemandID:        w.DemandID.String(),
			StockID:         w.StockID.String(),
			Reason:          w.Reason.String(),
			MatchStrength:   entities.ParseMatchStrength(w.MatchStrength.String()),
			SimilarityScore: w.SimilarityScore.InRange(0, 1, entities.DefaultSimilarityScore),
		})
	}

	if batch.Dropped > 0 {
		e.logger.Warn("dropped invalid match suggestions", zap.Int("dropped", batch.Dropped), zap.Int("kept", len(batch.Items)))
	}
	e.logger.Info("match suggestions received", zap.Int("count", len(batch.Items)))
	return batch, nil
}
