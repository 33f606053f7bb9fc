package loading

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// mockProducts cycles through the demo consignments
var mockProducts = []struct {
	product  string
	from, to float64
	length   float64
	quantity entities.Quantity
}{
	{"Oak", 30, 40, 4, 20},
	{"Spruce", 20, 25, 5, 40},
	{"Beech", 25, 35, 3, 15},
	{"Larch", 20, 30, 6, 25},
}

// MockMatches builds n demo matches and their companies. It is used only to
// demonstrate a plan when fewer than two real matches exist.
func MockMatches(n int, now time.Time) ([]*entities.ConfirmedMatch, []*entities.Company) {
	companies := []*entities.Company{
		{ID: "mock-mfr-1", Name: "Demo Sawmill North", Role: entities.RoleManufacturer, Address: entities.Address{City: "Hamburg", Country: "DE"}},
		{ID: "mock-mfr-2", Name: "Demo Sawmill South", Role: entities.RoleManufacturer, Address: entities.Address{City: "Munich", Country: "DE"}},
	}

	matches := make([]*entities.ConfirmedMatch, 0, n)
	for i := 0; i < n; i++ {
		p := mockProducts[i%len(mockProducts)]
		spec := entities.TimberSpec{
			Product:      p.product,
			DiameterFrom: p.from,
			DiameterTo:   p.to,
			Length:       p.length,
			Quantity:     p.quantity,
		}.WithVolume()

		customer := &entities.Company{
			ID:      fmt.Sprintf("mock-cust-%d", i+1),
			Name:    fmt.Sprintf("Demo Joinery %d", i+1),
			Role:    entities.RoleCustomer,
			Address: entities.Address{City: "Berlin", Country: "DE"},
		}
		companies = append(companies, customer)
		manufacturer := companies[i%2]

		matches = append(matches, &entities.ConfirmedMatch{
			ID: fmt.Sprintf("mock-match-%d", i+1),
			Demand: &entities.DemandRecord{
				ID:          fmt.Sprintf("mock-demand-%d", i+1),
				TimberSpec:  spec,
				Status:      entities.DemandProcessing,
				CompanyID:   customer.ID,
				SubmittedAt: now,
			},
			Stock: &entities.StockRecord{
				ID:         fmt.Sprintf("mock-stock-%d", i+1),
				TimberSpec: spec,
				Price:      "100 EUR/m3",
				Status:     entities.StockReserved,
				CompanyID:  manufacturer.ID,
				UploadedAt: now,
			},
			Reason:           "demo data",
			CommissionRate:   entities.DefaultCommissionRate,
			CommissionAmount: decimal.Zero,
			MatchDate:        now.Add(time.Duration(i) * time.Minute),
		})
	}
	return matches, companies
}
