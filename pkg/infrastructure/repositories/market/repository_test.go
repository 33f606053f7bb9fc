package market

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/domain/repositories"
	"github.com/vsinha/timber/pkg/infrastructure/kv"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func testSpec() entities.TimberSpec {
	return entities.TimberSpec{Product: "Oak", DiameterFrom: 20, DiameterTo: 30, Length: 4, Quantity: 10}
}

func seedRepository(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()
	repo := NewRepository(kv.NewMemory(), nil)

	d1, err := entities.NewDemandRecord("D1", "C1", testSpec(), testTime)
	require.NoError(t, err)
	d2, err := entities.NewDemandRecord("D2", "C2", testSpec(), testTime)
	require.NoError(t, err)
	require.NoError(t, repo.LoadDemands(ctx, []*entities.DemandRecord{d1, d2}))

	s1, err := entities.NewStockRecord("S1", "M1", testSpec(), "20 EUR/unit", "FSC", testTime)
	require.NoError(t, err)
	s2, err := entities.NewStockRecord("S2", "M2", testSpec(), "150 EUR/m3", "", testTime)
	require.NoError(t, err)
	require.NoError(t, repo.LoadStock(ctx, []*entities.StockRecord{s1, s2}))

	return repo
}

// confirm performs the same steps the match engine does inside one transaction
func confirm(ctx context.Context, repo *Repository, matchID, demandID, stockID string) error {
	return repo.WithLock(ctx, []string{demandID, stockID}, func(tx repositories.MarketTx) error {
		if tx.HasPair(demandID, stockID) {
			return entities.ErrAlreadyMatched
		}
		demand, err := tx.Demand(demandID)
		if err != nil {
			return err
		}
		stock, err := tx.Stock(stockID)
		if err != nil {
			return err
		}
		if err := demand.TransitionTo(entities.DemandProcessing); err != nil {
			return err
		}
		if err := stock.TransitionTo(entities.StockReserved); err != nil {
			return err
		}
		match, err := entities.NewConfirmedMatch(matchID, demand, stock, entities.DefaultCommissionRate, decimal.NewFromInt(100), testTime)
		if err != nil {
			return err
		}
		tx.PutDemand(demand)
		tx.PutStock(stock)
		tx.PutMatch(match)
		return nil
	})
}

func TestRepository_GettersAndNotFound(t *testing.T) {
	ctx := context.Background()
	repo := seedRepository(t)

	demands, err := repo.GetDemands(ctx)
	require.NoError(t, err)
	assert.Len(t, demands, 2)

	d, err := repo.GetDemand(ctx, "D2")
	require.NoError(t, err)
	assert.Equal(t, "C2", d.CompanyID)

	_, err = repo.GetDemand(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)
	_, err = repo.GetStockItem(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)
	_, err = repo.GetMatch(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	matches, err := repo.GetMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRepository_SaveReplacesByID(t *testing.T) {
	ctx := context.Background()
	repo := seedRepository(t)

	d, err := repo.GetDemand(ctx, "D1")
	require.NoError(t, err)
	d.Notes = "urgent"
	require.NoError(t, repo.SaveDemand(ctx, d))

	demands, err := repo.GetDemands(ctx)
	require.NoError(t, err)
	require.Len(t, demands, 2)
	assert.Equal(t, "D1", demands[0].ID)
	assert.Equal(t, "urgent", demands[0].Notes)
}

func TestRepository_ConfirmCommitsAllChanges(t *testing.T) {
	ctx := context.Background()
	repo := seedRepository(t)

	require.NoError(t, confirm(ctx, repo, "M1", "D1", "S1"))

	d, err := repo.GetDemand(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, entities.DemandProcessing, d.Status)

	s, err := repo.GetStockItem(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, entities.StockReserved, s.Status)

	m, err := repo.GetMatch(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, "D1", m.Demand.ID)
	assert.Equal(t, entities.DemandProcessing, m.Demand.Status)
	assert.True(t, m.CommissionAmount.Equal(decimal.NewFromInt(100)))

	unbilled, err := repo.GetUnbilledMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, unbilled, 1)
}

func TestRepository_FailedCallbackCommitsNothing(t *testing.T) {
	ctx := context.Background()
	repo := seedRepository(t)
	boom := errors.New("boom")

	err := repo.WithLock(ctx, []string{"D1", "S1"}, func(tx repositories.MarketTx) error {
		d, err := tx.Demand("D1")
		require.NoError(t, err)
		require.NoError(t, d.TransitionTo(entities.DemandProcessing))
		tx.PutDemand(d)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	d, err := repo.GetDemand(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, entities.DemandReceived, d.Status)
}

func TestRepository_TxGettersReturnCopies(t *testing.T) {
	ctx := context.Background()
	repo := seedRepository(t)

	err := repo.WithLock(ctx, []string{"D1"}, func(tx repositories.MarketTx) error {
		d, err := tx.Demand("D1")
		require.NoError(t, err)
		d.Notes = "changed without put"

		again, err := tx.Demand("D1")
		require.NoError(t, err)
		assert.Empty(t, again.Notes)
		return nil
	})
	require.NoError(t, err)
}

func TestRepository_DuplicatePairRejected(t *testing.T) {
	ctx := context.Background()
	repo := seedRepository(t)

	require.NoError(t, confirm(ctx, repo, "M1", "D1", "S1"))
	err := confirm(ctx, repo, "M2", "D1", "S1")
	assert.ErrorIs(t, err, entities.ErrAlreadyMatched)

	matches, err := repo.GetMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRepository_ConcurrentConfirmsOfSamePair(t *testing.T) {
	ctx := context.Background()
	repo := seedRepository(t)

	var successes, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		id := fmt.Sprintf("M%d", i)
		g.Go(func() error {
			err := confirm(ctx, repo, id, "D1", "S1")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, entities.ErrAlreadyMatched), errors.Is(err, entities.ErrInvalidTransition):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(15), rejected.Load())

	matches, err := repo.GetMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRepository_DisjointConfirmsKeepBothChanges(t *testing.T) {
	ctx := context.Background()
	repo := seedRepository(t)

	var g errgroup.Group
	g.Go(func() error { return confirm(ctx, repo, "M1", "D1", "S1") })
	g.Go(func() error { return confirm(ctx, repo, "M2", "D2", "S2") })
	require.NoError(t, g.Wait())

	matches, err := repo.GetMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	for _, id := range []string{"D1", "D2"} {
		d, err := repo.GetDemand(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entities.DemandProcessing, d.Status, id)
	}
	for _, id := range []string{"S1", "S2"} {
		s, err := repo.GetStockItem(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entities.StockReserved, s.Status, id)
	}
}

func TestRepository_WithLockHonoursContext(t *testing.T) {
	repo := seedRepository(t)
	held := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = repo.WithLock(context.Background(), []string{"D1"}, func(tx repositories.MarketTx) error {
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := repo.WithLock(ctx, []string{"D1"}, func(tx repositories.MarketTx) error {
		t.Fatal("callback must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(done)
	// The lock becomes available again once the holder finishes
	require.Eventually(t, func() bool {
		return repo.WithLock(context.Background(), []string{"D1"}, func(repositories.MarketTx) error { return nil }) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestRepository_LoadCompanies(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kv.NewMemory(), nil)

	c1, err := entities.NewCompany("C1", "Nordholz", entities.RoleCustomer, entities.Address{City: "Hamburg"})
	require.NoError(t, err)
	c2, err := entities.NewCompany("M1", "Sawmill Ost", entities.RoleManufacturer, entities.Address{City: "Leipzig"})
	require.NoError(t, err)
	require.NoError(t, repo.LoadCompanies(ctx, []*entities.Company{c1, c2}))

	renamed := *c1
	renamed.Name = "Nordholz GmbH"
	require.NoError(t, repo.LoadCompanies(ctx, []*entities.Company{&renamed}))

	companies, err := repo.GetCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)

	got, err := repo.GetCompany(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Nordholz GmbH", got.Name)
}

func TestRepository_SQLiteBackend(t *testing.T) {
	ctx := context.Background()
	store, err := kv.NewSQLite(t.TempDir() + "/timber.db")
	require.NoError(t, err)
	defer store.Close()

	repo := NewRepository(store, nil)
	d, err := entities.NewDemandRecord("D1", "C1", testSpec(), testTime)
	require.NoError(t, err)
	require.NoError(t, repo.SaveDemand(ctx, d))

	got, err := repo.GetDemand(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, "Oak", got.Product)
	assert.Equal(t, entities.DemandReceived, got.Status)
}
