package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// MarketValidator checks imported marketplace data for referential integrity
type MarketValidator struct{}

// NewMarketValidator creates a new market validator
func NewMarketValidator() *MarketValidator {
	return &MarketValidator{}
}

// ValidationResult contains the results of a validation run.
// Errors block an import, warnings are reported only.
type ValidationResult struct {
	DuplicateIDs     []string
	UnknownCompanies []string
	RoleMismatches   []string
	Errors           []string
	Warnings         []string
}

// IsValid reports whether the data has no errors
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateImport checks that IDs are unique within each collection and that
// demands and stock point at companies of the right role. Companies missing
// from the directory only produce warnings; plans then show the raw IDs.
func (v *MarketValidator) ValidateImport(companies []*entities.Company, demands []*entities.DemandRecord, stock []*entities.StockRecord) *ValidationResult {
	result := &ValidationResult{
		DuplicateIDs:     make([]string, 0),
		UnknownCompanies: make([]string, 0),
		RoleMismatches:   make([]string, 0),
		Errors:           make([]string, 0),
		Warnings:         make([]string, 0),
	}

	directory := make(map[string]entities.CompanyRole, len(companies))
	companyIDs := make([]string, len(companies))
	for i, c := range companies {
		directory[c.ID] = c.Role
		companyIDs[i] = c.ID
	}

	demandIDs := make([]string, len(demands))
	for i, d := range demands {
		demandIDs[i] = d.ID
	}
	stockIDs := make([]string, len(stock))
	for i, s := range stock {
		stockIDs[i] = s.ID
	}

	v.checkDuplicates(result, "company", companyIDs)
	v.checkDuplicates(result, "demand", demandIDs)
	v.checkDuplicates(result, "stock", stockIDs)

	unknown := make(map[string]bool)
	for _, d := range demands {
		v.checkReference(result, unknown, directory, "demand", d.ID, d.CompanyID, entities.RoleCustomer)
	}
	for _, s := range stock {
		v.checkReference(result, unknown, directory, "stock", s.ID, s.CompanyID, entities.RoleManufacturer)
	}

	if len(result.UnknownCompanies) > 0 {
		sort.Strings(result.UnknownCompanies)
		result.Warnings = append(result.Warnings, fmt.Sprintf("Companies not in directory: %v", result.UnknownCompanies))
	}

	return result
}

func (v *MarketValidator) checkDuplicates(result *ValidationResult, kind string, ids []string) {
	seen := make(map[string]bool, len(ids))
	var duplicates []string
	for _, id := range ids {
		if seen[id] {
			duplicates = append(duplicates, id)
		} else {
			seen[id] = true
		}
	}

	if len(duplicates) > 0 {
		result.DuplicateIDs = append(result.DuplicateIDs, duplicates...)
		result.Errors = append(result.Errors, fmt.Sprintf("Duplicate %s IDs found: %v", kind, duplicates))
	}
}

func (v *MarketValidator) checkReference(result *ValidationResult, unknown map[string]bool, directory map[string]entities.CompanyRole, kind, id, companyID string, want entities.CompanyRole) {
	role, ok := directory[companyID]
	if !ok {
		if !unknown[companyID] {
			unknown[companyID] = true
			result.UnknownCompanies = append(result.UnknownCompanies, companyID)
		}
		return
	}
	if role != want {
		result.RoleMismatches = append(result.RoleMismatches, id)
		result.Errors = append(result.Errors, fmt.Sprintf("%s %s belongs to %s %s, expected a %s", kind, id, role, companyID, want))
	}
}
