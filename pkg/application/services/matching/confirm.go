package matching

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/domain/repositories"
	"github.com/vsinha/timber/pkg/infrastructure/events"
)

// Confirm turns a suggestion into a ConfirmedMatch. The demand moves to
// PROCESSING, the stock to RESERVED and the match is stored, all in one commit.
func (e *Engine) Confirm(ctx context.Context, suggestion entities.MatchSuggestion) (*entities.ConfirmedMatch, error) {
	if suggestion.DemandID == "" || suggestion.StockID == "" {
		return nil, fmt.Errorf("%w: suggestion must name a demand and a stock", entities.ErrInvalidInput)
	}

	var match *entities.ConfirmedMatch
	var published []events.Event

	err := e.repo.WithLock(ctx, []string{suggestion.DemandID, suggestion.StockID}, func(tx repositories.MarketTx) error {
		demand, err := tx.Demand(suggestion.DemandID)
		if err != nil {
			return err
		}
		stock, err := tx.Stock(suggestion.StockID)
		if err != nil {
			return err
		}

		if tx.HasPair(demand.ID, stock.ID) {
			return fmt.Errorf("demand %s and stock %s: %w", demand.ID, stock.ID, entities.ErrAlreadyMatched)
		}
		if demand.Status != entities.DemandReceived {
			return fmt.Errorf("demand %s is %s: %w", demand.ID, demand.Status, entities.ErrAlreadyMatched)
		}
		if stock.Status != entities.StockAvailable {
			return fmt.Errorf("stock %s is %s: %w", stock.ID, stock.Status, entities.ErrAlreadyMatched)
		}

		amount, basis := e.commission.Compute(stock)

		if err := demand.TransitionTo(entities.DemandProcessing); err != nil {
			return err
		}
		if err := stock.TransitionTo(entities.StockReserved); err != nil {
			return err
		}

		match, err = entities.NewConfirmedMatch(e.newID(), demand, stock, e.commission.Rate, amount, e.now())
		if err != nil {
			return err
		}
		match.Reason = suggestion.Reason

		tx.PutDemand(demand)
		tx.PutStock(stock)
		tx.PutMatch(match)

		published = []events.Event{
			events.NewMatchConfirmed(match),
			events.NewDemandStatusChanged(demand.ID, entities.DemandReceived, entities.DemandProcessing),
			events.NewStockStatusChanged(stock.ID, entities.StockAvailable, entities.StockReserved),
		}
		e.logger.Debug("commission computed",
			zap.String("stock_id", stock.ID),
			zap.String("basis", basis.String()),
			zap.String("amount", amount.StringFixed(2)))
		return nil
	})
	if err != nil {
		if errors.Is(err, entities.ErrAlreadyMatched) || errors.Is(err, entities.ErrNotFound) {
			e.logger.Info("confirm rejected",
				zap.String("demand_id", suggestion.DemandID),
				zap.String("stock_id", suggestion.StockID),
				zap.Error(err))
		}
		return nil, err
	}

	e.logger.Info("match confirmed",
		zap.String("match_id", match.ID),
		zap.String("demand_id", match.Demand.ID),
		zap.String("stock_id", match.Stock.ID),
		zap.String("commission", match.CommissionAmount.StringFixed(2)))
	e.publish(published...)
	return match, nil
}

// CompleteDemand marks a PROCESSING demand as COMPLETED
func (e *Engine) CompleteDemand(ctx context.Context, demandID string) error {
	return e.transitionDemand(ctx, demandID, entities.DemandCompleted)
}

// CancelDemand withdraws a RECEIVED demand
func (e *Engine) CancelDemand(ctx context.Context, demandID string) error {
	return e.transitionDemand(ctx, demandID, entities.DemandCancelled)
}

func (e *Engine) transitionDemand(ctx context.Context, demandID string, next entities.DemandStatus) error {
	var from entities.DemandStatus
	err := e.repo.WithLock(ctx, []string{demandID}, func(tx repositories.MarketTx) error {
		demand, err := tx.Demand(demandID)
		if err != nil {
			return err
		}
		from = demand.Status
		if err := demand.TransitionTo(next); err != nil {
			return err
		}
		tx.PutDemand(demand)
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("demand status changed", zap.String("demand_id", demandID), zap.Stringer("from", from), zap.Stringer("to", next))
	e.publish(events.NewDemandStatusChanged(demandID, from, next))
	return nil
}

// MarkStockSold marks a RESERVED stock listing as SOLD
func (e *Engine) MarkStockSold(ctx context.Context, stockID string) error {
	err := e.repo.WithLock(ctx, []string{stockID}, func(tx repositories.MarketTx) error {
		stock, err := tx.Stock(stockID)
		if err != nil {
			return err
		}
		if err := stock.TransitionTo(entities.StockSold); err != nil {
			return err
		}
		tx.PutStock(stock)
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("stock sold", zap.String("stock_id", stockID))
	e.publish(events.NewStockStatusChanged(stockID, entities.StockReserved, entities.StockSold))
	return nil
}

// MarkBilled flags a confirmed match as billed. Billing twice is an invalid transition.
func (e *Engine) MarkBilled(ctx context.Context, matchID string) error {
	err := e.repo.WithLock(ctx, []string{matchID}, func(tx repositories.MarketTx) error {
		match, err := tx.Match(matchID)
		if err != nil {
			return err
		}
		if match.Billed {
			return fmt.Errorf("match %s: %w: already billed", matchID, entities.ErrInvalidTransition)
		}
		match.Billed = true
		tx.PutMatch(match)
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("match billed", zap.String("match_id", matchID))
	e.publish(events.NewMatchBilled(matchID))
	return nil
}

// Matches returns every confirmed match
func (e *Engine) Matches(ctx context.Context) ([]*entities.ConfirmedMatch, error) {
	return e.repo.GetMatches(ctx)
}

// UnbilledMatches returns the confirmed matches awaiting billing, the input to load sequencing
func (e *Engine) UnbilledMatches(ctx context.Context) ([]*entities.ConfirmedMatch, error) {
	return e.repo.GetUnbilledMatches(ctx)
}
