package loading

import "github.com/vsinha/timber/pkg/domain/entities"

// Directory resolves company ids to names and addresses
type Directory map[string]*entities.Company

// NewDirectory indexes companies by id
func NewDirectory(companies []*entities.Company) Directory {
	dir := make(Directory, len(companies))
	for _, c := range companies {
		if c != nil {
			dir[c.ID] = c
		}
	}
	return dir
}

// Name returns the company name, or the id when the company is unknown
func (d Directory) Name(companyID string) string {
	if c, ok := d[companyID]; ok && c.Name != "" {
		return c.Name
	}
	return companyID
}

// Address returns the one-line company address, or "" when unknown
func (d Directory) Address(companyID string) string {
	if c, ok := d[companyID]; ok {
		return c.Address.String()
	}
	return ""
}
