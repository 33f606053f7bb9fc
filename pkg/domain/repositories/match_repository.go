package repositories

import (
	"context"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// MatchRepository provides read access to confirmed matches.
// Matches are only written through MarketRepository.WithLock.
type MatchRepository interface {
	GetMatches(ctx context.Context) ([]*entities.ConfirmedMatch, error)
	GetMatch(ctx context.Context, id string) (*entities.ConfirmedMatch, error)
	GetUnbilledMatches(ctx context.Context) ([]*entities.ConfirmedMatch, error)
}

// CompanyRepository provides access to the company directory
type CompanyRepository interface {
	GetCompanies(ctx context.Context) ([]*entities.Company, error)
	GetCompany(ctx context.Context, id string) (*entities.Company, error)
	LoadCompanies(ctx context.Context, companies []*entities.Company) error
}
