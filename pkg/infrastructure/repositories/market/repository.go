// Package market stores the marketplace collections as whole JSON blobs in a
// kv.Store and provides the locked transaction boundary used for matching.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/domain/repositories"
	"github.com/vsinha/timber/pkg/infrastructure/kv"
)

// Collection keys inside the kv store
const (
	KeyDemands   = "demands"
	KeyStock     = "stock"
	KeyMatches   = "matches"
	KeyCompanies = "companies"
)

// Repository implements repositories.MarketRepository on top of a kv.Store.
//
// Entity locks serialise callers touching the same ids. Commits re-read the
// current blobs and merge the staged records by id under commitMutex, so
// callers holding disjoint locks never overwrite each other's changes.
type Repository struct {
	store       kv.Store
	locks       *keyedLocker
	commitMutex sync.Mutex
	logger      *zap.Logger
}

// NewRepository creates a repository over store
func NewRepository(store kv.Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		store:  store,
		locks:  newKeyedLocker(),
		logger: logger,
	}
}

// Verify interface compliance
var _ repositories.MarketRepository = (*Repository)(nil)

func loadCollection[T any](ctx context.Context, store kv.Store, key string) ([]*T, error) {
	blob, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found || blob == "" {
		return []*T{}, nil
	}

	var items []*T
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return items, nil
}

func encodeCollection[T any](key string, items []*T) (string, error) {
	if items == nil {
		items = []*T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return string(data), nil
}

// GetDemands returns all demand records
func (r *Repository) GetDemands(ctx context.Context) ([]*entities.DemandRecord, error) {
	return loadCollection[entities.DemandRecord](ctx, r.store, KeyDemands)
}

// GetDemand returns the demand with the given id
func (r *Repository) GetDemand(ctx context.Context, id string) (*entities.DemandRecord, error) {
	demands, err := r.GetDemands(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range demands {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("demand %s: %w", id, entities.ErrNotFound)
}

// SaveDemand inserts or replaces a demand record
func (r *Repository) SaveDemand(ctx context.Context, demand *entities.DemandRecord) error {
	return r.WithLock(ctx, []string{demand.ID}, func(tx repositories.MarketTx) error {
		tx.PutDemand(demand)
		return nil
	})
}

// LoadDemands inserts or replaces a batch of demand records
func (r *Repository) LoadDemands(ctx context.Context, demands []*entities.DemandRecord) error {
	ids := make([]string, len(demands))
	for i, d := range demands {
		ids[i] = d.ID
	}
	return r.WithLock(ctx, ids, func(tx repositories.MarketTx) error {
		for _, d := range demands {
			tx.PutDemand(d)
		}
		return nil
	})
}

// GetStock returns all stock listings
func (r *Repository) GetStock(ctx context.Context) ([]*entities.StockRecord, error) {
	return loadCollection[entities.StockRecord](ctx, r.store, KeyStock)
}

// GetStockItem returns the stock listing with the given id
func (r *Repository) GetStockItem(ctx context.Context, id string) (*entities.StockRecord, error) {
	stock, err := r.GetStock(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range stock {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("stock %s: %w", id, entities.ErrNotFound)
}

// SaveStock inserts or replaces a stock listing
func (r *Repository) SaveStock(ctx context.Context, stock *entities.StockRecord) error {
	return r.WithLock(ctx, []string{stock.ID}, func(tx repositories.MarketTx) error {
		tx.PutStock(stock)
		return nil
	})
}

// LoadStock inserts or replaces a batch of stock listings
func (r *Repository) LoadStock(ctx context.Context, stock []*entities.StockRecord) error {
	ids := make([]string, len(stock))
	for i, s := range stock {
		ids[i] = s.ID
	}
	return r.WithLock(ctx, ids, func(tx repositories.MarketTx) error {
		for _, s := range stock {
			tx.PutStock(s)
		}
		return nil
	})
}

// GetMatches returns all confirmed matches in confirmation order
func (r *Repository) GetMatches(ctx context.Context) ([]*entities.ConfirmedMatch, error) {
	return loadCollection[entities.ConfirmedMatch](ctx, r.store, KeyMatches)
}

// GetMatch returns the confirmed match with the given id
func (r *Repository) GetMatch(ctx context.Context, id string) (*entities.ConfirmedMatch, error) {
	matches, err := r.GetMatches(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("match %s: %w", id, entities.ErrNotFound)
}

// GetUnbilledMatches returns confirmed matches not yet billed
func (r *Repository) GetUnbilledMatches(ctx context.Context) ([]*entities.ConfirmedMatch, error) {
	matches, err := r.GetMatches(ctx)
	if err != nil {
		return nil, err
	}
	unbilled := make([]*entities.ConfirmedMatch, 0, len(matches))
	for _, m := range matches {
		if !m.Billed {
			unbilled = append(unbilled, m)
		}
	}
	return unbilled, nil
}

// GetCompanies returns the company directory
func (r *Repository) GetCompanies(ctx context.Context) ([]*entities.Company, error) {
	return loadCollection[entities.Company](ctx, r.store, KeyCompanies)
}

// GetCompany returns the company with the given id
func (r *Repository) GetCompany(ctx context.Context, id string) (*entities.Company, error) {
	companies, err := r.GetCompanies(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("company %s: %w", id, entities.ErrNotFound)
}

// LoadCompanies inserts or replaces directory entries
func (r *Repository) LoadCompanies(ctx context.Context, companies []*entities.Company) error {
	r.commitMutex.Lock()
	defer r.commitMutex.Unlock()

	current, err := r.GetCompanies(ctx)
	if err != nil {
		return err
	}
	merged := mergeByID(current, companies, func(c *entities.Company) string { return c.ID })

	blob, err := encodeCollection(KeyCompanies, merged)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, KeyCompanies, blob)
}

// WithLock runs fn with exclusive access to entityIDs and commits its staged changes atomically
func (r *Repository) WithLock(ctx context.Context, entityIDs []string, fn func(tx repositories.MarketTx) error) error {
	release, err := r.locks.lock(ctx, entityIDs)
	if err != nil {
		return fmt.Errorf("failed to lock %v: %w", entityIDs, err)
	}
	defer release()

	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}
	if tx.empty() {
		return nil
	}
	return r.commit(ctx, tx)
}

func (r *Repository) begin(ctx context.Context) (*marketTx, error) {
	demands, err := r.GetDemands(ctx)
	if err != nil {
		return nil, err
	}
	stock, err := r.GetStock(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := r.GetMatches(ctx)
	if err != nil {
		return nil, err
	}
	return newMarketTx(demands, stock, matches), nil
}

func (r *Repository) commit(ctx context.Context, tx *marketTx) error {
	r.commitMutex.Lock()
	defer r.commitMutex.Unlock()

	entries := make(map[string]string, 3)

	if len(tx.stagedDemands) > 0 {
		current, err := r.GetDemands(ctx)
		if err != nil {
			return err
		}
		merged := mergeByID(current, tx.stagedDemands, func(d *entities.DemandRecord) string { return d.ID })
		if entries[KeyDemands], err = encodeCollection(KeyDemands, merged); err != nil {
			return err
		}
	}
	if len(tx.stagedStock) > 0 {
		current, err := r.GetStock(ctx)
		if err != nil {
			return err
		}
		merged := mergeByID(current, tx.stagedStock, func(s *entities.StockRecord) string { return s.ID })
		if entries[KeyStock], err = encodeCollection(KeyStock, merged); err != nil {
			return err
		}
	}
	if len(tx.stagedMatches) > 0 {
		current, err := r.GetMatches(ctx)
		if err != nil {
			return err
		}
		merged := mergeByID(current, tx.stagedMatches, func(m *entities.ConfirmedMatch) string { return m.ID })
		if entries[KeyMatches], err = encodeCollection(KeyMatches, merged); err != nil {
			return err
		}
	}

	if err := r.store.SetMany(ctx, entries); err != nil {
		r.logger.Error("market commit failed", zap.Int("collections", len(entries)), zap.Error(err))
		return fmt.Errorf("failed to commit market changes: %w", err)
	}
	r.logger.Debug("market commit",
		zap.Int("demands", len(tx.stagedDemands)),
		zap.Int("stock", len(tx.stagedStock)),
		zap.Int("matches", len(tx.stagedMatches)))
	return nil
}

// mergeByID replaces items of current that share an id with staged ones and appends the rest
func mergeByID[T any](current, staged []*T, id func(*T) string) []*T {
	index := make(map[string]int, len(current))
	for i, item := range current {
		index[id(item)] = i
	}
	merged := current
	for _, item := range staged {
		if i, ok := index[id(item)]; ok {
			merged[i] = item
			continue
		}
		index[id(item)] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
