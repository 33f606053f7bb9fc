package repositories

import (
	"context"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// MarketTx is the view of the marketplace inside a WithLock callback.
// Getters return copies; Put* stages a change that is committed only when
// the callback returns nil.
type MarketTx interface {
	Demand(id string) (*entities.DemandRecord, error)
	Stock(id string) (*entities.StockRecord, error)
	Match(id string) (*entities.ConfirmedMatch, error)
	HasPair(demandID, stockID string) bool

	PutDemand(demand *entities.DemandRecord)
	PutStock(stock *entities.StockRecord)
	PutMatch(match *entities.ConfirmedMatch)
}

// MarketRepository is the transactional boundary over demands, stock and matches.
//
// WithLock serialises callers that share any of entityIDs and commits every
// staged change in one atomic write, or none of them if fn returns an error.
type MarketRepository interface {
	DemandRepository
	StockRepository
	MatchRepository
	CompanyRepository

	WithLock(ctx context.Context, entityIDs []string, fn func(tx MarketTx) error) error
}
