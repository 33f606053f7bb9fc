package entities

import "fmt"

// CompanyRole distinguishes buyers from producers in the directory
type CompanyRole string

const (
	RoleCustomer     CompanyRole = "customer"
	RoleManufacturer CompanyRole = "manufacturer"
)

// Address is a postal address with optional coordinates
type Address struct {
	Street  string   `json:"street,omitempty"`
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Long    *float64 `json:"long,omitempty"`
}

// String renders the address on one line
func (a Address) String() string {
	switch {
	case a.Street != "" && a.City != "":
		return fmt.Sprintf("%s, %s", a.Street, a.City)
	case a.City != "":
		return a.City
	default:
		return a.Street
	}
}

// Company is a directory entry for a marketplace participant
type Company struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Role    CompanyRole `json:"role"`
	Address Address     `json:"address"`
}

// NewCompany creates a validated Company
func NewCompany(id, name string, role CompanyRole, address Address) (*Company, error) {
	if id == "" {
		return nil, fmt.Errorf("company id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("company name cannot be empty")
	}
	if role != RoleCustomer && role != RoleManufacturer {
		return nil, fmt.Errorf("unknown company role %q", role)
	}

	return &Company{ID: id, Name: name, Role: role, Address: address}, nil
}
