package market

import (
	"fmt"

	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/domain/repositories"
)

// marketTx reads from the snapshot taken when the locks were acquired and
// stages writes until commit.
type marketTx struct {
	demands map[string]*entities.DemandRecord
	stock   map[string]*entities.StockRecord
	matches map[string]*entities.ConfirmedMatch
	pairs   map[string]bool

	stagedDemands []*entities.DemandRecord
	stagedStock   []*entities.StockRecord
	stagedMatches []*entities.ConfirmedMatch
}

var _ repositories.MarketTx = (*marketTx)(nil)

func newMarketTx(demands []*entities.DemandRecord, stock []*entities.StockRecord, matches []*entities.ConfirmedMatch) *marketTx {
	tx := &marketTx{
		demands: make(map[string]*entities.DemandRecord, len(demands)),
		stock:   make(map[string]*entities.StockRecord, len(stock)),
		matches: make(map[string]*entities.ConfirmedMatch, len(matches)),
		pairs:   make(map[string]bool, len(matches)),
	}
	for _, d := range demands {
		tx.demands[d.ID] = d
	}
	for _, s := range stock {
		tx.stock[s.ID] = s
	}
	for _, m := range matches {
		tx.matches[m.ID] = m
		tx.pairs[m.Pair()] = true
	}
	return tx
}

func (tx *marketTx) Demand(id string) (*entities.DemandRecord, error) {
	d, ok := tx.demands[id]
	if !ok {
		return nil, fmt.Errorf("demand %s: %w", id, entities.ErrNotFound)
	}
	return d.Clone(), nil
}

func (tx *marketTx) Stock(id string) (*entities.StockRecord, error) {
	s, ok := tx.stock[id]
	if !ok {
		return nil, fmt.Errorf("stock %s: %w", id, entities.ErrNotFound)
	}
	return s.Clone(), nil
}

func (tx *marketTx) Match(id string) (*entities.ConfirmedMatch, error) {
	m, ok := tx.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, entities.ErrNotFound)
	}
	return m.Clone(), nil
}

func (tx *marketTx) HasPair(demandID, stockID string) bool {
	return tx.pairs[entities.PairKey(demandID, stockID)]
}

func (tx *marketTx) PutDemand(demand *entities.DemandRecord) {
	c := demand.Clone()
	tx.demands[c.ID] = c
	tx.stagedDemands = upsert(tx.stagedDemands, c, func(d *entities.DemandRecord) string { return d.ID })
}

func (tx *marketTx) PutStock(stock *entities.StockRecord) {
	c := stock.Clone()
	tx.stock[c.ID] = c
	tx.stagedStock = upsert(tx.stagedStock, c, func(s *entities.StockRecord) string { return s.ID })
}

func (tx *marketTx) PutMatch(match *entities.ConfirmedMatch) {
	c := match.Clone()
	tx.matches[c.ID] = c
	tx.pairs[c.Pair()] = true
	tx.stagedMatches = upsert(tx.stagedMatches, c, func(m *entities.ConfirmedMatch) string { return m.ID })
}

func (tx *marketTx) empty() bool {
	return len(tx.stagedDemands) == 0 && len(tx.stagedStock) == 0 && len(tx.stagedMatches) == 0
}

func upsert[T any](items []*T, item *T, id func(*T) string) []*T {
	for i, existing := range items {
		if id(existing) == id(item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}
