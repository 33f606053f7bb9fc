package matching

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/infrastructure/events"
)

// DemandInput is a customer's demand submission
type DemandInput struct {
	CompanyID string
	Spec      entities.TimberSpec
	Notes     string
}

// StockInput is a manufacturer's stock upload
type StockInput struct {
	CompanyID      string
	Spec           entities.TimberSpec
	Price          string
	Sustainability string
}

// SubmitDemand validates and stores a new demand in RECEIVED status
func (e *Engine) SubmitDemand(ctx context.Context, input DemandInput) (*entities.DemandRecord, error) {
	demand, err := entities.NewDemandRecord(e.newID(), input.CompanyID, input.Spec, e.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err)
	}
	demand.Notes = input.Notes

	if err := e.repo.SaveDemand(ctx, demand); err != nil {
		return nil, fmt.Errorf("failed to save demand: %w", err)
	}

	e.logger.Info("demand submitted",
		zap.String("demand_id", demand.ID),
		zap.String("product", demand.Product),
		zap.Float64("volume", demand.CubicVolume))
	e.publish(events.NewDemandSubmitted(demand))
	return demand, nil
}

// UploadStock validates and stores a new stock listing in AVAILABLE status
func (e *Engine) UploadStock(ctx context.Context, input StockInput) (*entities.StockRecord, error) {
	stock, err := entities.NewStockRecord(e.newID(), input.CompanyID, input.Spec, input.Price, input.Sustainability, e.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err)
	}

	if err := e.repo.SaveStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("failed to save stock: %w", err)
	}

	if _, ok := ParsePrice(stock.Price); !ok {
		e.logger.Warn("stock price not recognised", zap.String("stock_id", stock.ID), zap.String("price", stock.Price))
	}
	e.logger.Info("stock uploaded",
		zap.String("stock_id", stock.ID),
		zap.String("product", stock.Product),
		zap.Float64("volume", stock.CubicVolume))
	e.publish(events.NewStockUploaded(stock))
	return stock, nil
}

// OpenDemands returns the demands still in the pairing pool
func (e *Engine) OpenDemands(ctx context.Context) ([]*entities.DemandRecord, error) {
	demands, err := e.repo.GetDemands(ctx)
	if err != nil {
		return nil, err
	}
	open := make([]*entities.DemandRecord, 0, len(demands))
	for _, d := range demands {
		if d.Status == entities.DemandReceived {
			open = append(open, d)
		}
	}
	return open, nil
}

// AvailableStock returns the stock listings still in the pairing pool
func (e *Engine) AvailableStock(ctx context.Context) ([]*entities.StockRecord, error) {
	stock, err := e.repo.GetStock(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]*entities.StockRecord, 0, len(stock))
	for _, s := range stock {
		if s.Status == entities.StockAvailable {
			available = append(available, s)
		}
	}
	return available, nil
}
