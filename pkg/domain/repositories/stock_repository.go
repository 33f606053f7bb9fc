package repositories

import (
	"context"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// StockRepository provides access to stock listings
type StockRepository interface {
	GetStock(ctx context.Context) ([]*entities.StockRecord, error)
	GetStockItem(ctx context.Context, id string) (*entities.StockRecord, error)
	SaveStock(ctx context.Context, stock *entities.StockRecord) error
	LoadStock(ctx context.Context, stock []*entities.StockRecord) error
}
