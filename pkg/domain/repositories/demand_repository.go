package repositories

import (
	"context"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// DemandRepository provides access to demand records
type DemandRepository interface {
	GetDemands(ctx context.Context) ([]*entities.DemandRecord, error)
	GetDemand(ctx context.Context, id string) (*entities.DemandRecord, error)
	SaveDemand(ctx context.Context, demand *entities.DemandRecord) error
	LoadDemands(ctx context.Context, demands []*entities.DemandRecord) error
}
