package testing

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/domain/repositories"
)

// ScenarioDate is the submission date used by every scenario record
var ScenarioDate = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

// MarketScenario is a small, consistent marketplace for tests
type MarketScenario struct {
	Companies []*entities.Company
	Demands   []*entities.DemandRecord
	Stock     []*entities.StockRecord
}

func mustCreateCompany(id, name string, role entities.CompanyRole, city string) *entities.Company {
	company, err := entities.NewCompany(id, name, role, entities.Address{City: city, Country: "DE"})
	if err != nil {
		panic(fmt.Sprintf("Failed to create company %s: %v", id, err))
	}
	return company
}

func mustCreateDemand(id, companyID string, spec entities.TimberSpec) *entities.DemandRecord {
	demand, err := entities.NewDemandRecord(id, companyID, spec, ScenarioDate)
	if err != nil {
		panic(fmt.Sprintf("Failed to create demand %s: %v", id, err))
	}
	return demand
}

func mustCreateStock(id, companyID string, spec entities.TimberSpec, price, sustainability string) *entities.StockRecord {
	stock, err := entities.NewStockRecord(id, companyID, spec, price, sustainability, ScenarioDate)
	if err != nil {
		panic(fmt.Sprintf("Failed to create stock %s: %v", id, err))
	}
	return stock
}

func spec(product string, from, to, length float64, qty entities.Quantity) entities.TimberSpec {
	return entities.TimberSpec{Product: product, DiameterFrom: from, DiameterTo: to, Length: length, Quantity: qty}
}

// BuildSawmillScenario builds two sawmills, three customers and one
// demand per customer, with a fitting stock listing for each demand.
func BuildSawmillScenario() *MarketScenario {
	return &MarketScenario{
		Companies: []*entities.Company{
			mustCreateCompany("M1", "Sawmill North", entities.RoleManufacturer, "Hamburg"),
			mustCreateCompany("M2", "Sawmill South", entities.RoleManufacturer, "Munich"),
			mustCreateCompany("C1", "Joinery Berlin", entities.RoleCustomer, "Berlin"),
			mustCreateCompany("C2", "Carpentry Leipzig", entities.RoleCustomer, "Leipzig"),
			mustCreateCompany("C3", "Roofing Dresden", entities.RoleCustomer, "Dresden"),
		},
		Demands: []*entities.DemandRecord{
			mustCreateDemand("D1", "C1", spec("Oak", 20, 30, 4, 10)),
			mustCreateDemand("D2", "C2", spec("Spruce", 15, 20, 5, 40)),
			mustCreateDemand("D3", "C3", spec("Larch", 20, 25, 6, 20)),
		},
		Stock: []*entities.StockRecord{
			mustCreateStock("S1", "M1", spec("Oak", 20, 30, 4, 100), "20 EUR/unit", "FSC"),
			mustCreateStock("S2", "M1", spec("Spruce", 15, 20, 5, 60), "95 EUR/m3", "PEFC"),
			mustCreateStock("S3", "M2", spec("Larch", 20, 25, 6, 30), "on request", ""),
		},
	}
}

// SeedMarket stores the scenario in repo
func SeedMarket(ctx context.Context, repo repositories.MarketRepository, scenario *MarketScenario) error {
	if err := repo.LoadCompanies(ctx, scenario.Companies); err != nil {
		return fmt.Errorf("failed to seed companies: %w", err)
	}
	if err := repo.LoadDemands(ctx, scenario.Demands); err != nil {
		return fmt.Errorf("failed to seed demands: %w", err)
	}
	if err := repo.LoadStock(ctx, scenario.Stock); err != nil {
		return fmt.Errorf("failed to seed stock: %w", err)
	}
	return nil
}
