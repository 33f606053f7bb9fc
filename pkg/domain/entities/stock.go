package entities

import (
	"fmt"
	"time"
)

// StockStatus represents the lifecycle state of a stock listing
type StockStatus int

const (
	StockAvailable StockStatus = iota
	StockReserved
	StockSold
)

var stockStatusNames = map[StockStatus]string{
	StockAvailable: "AVAILABLE",
	StockReserved:  "RESERVED",
	StockSold:      "SOLD",
}

// String method for StockStatus enum
func (s StockStatus) String() string {
	if name, ok := stockStatusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText encodes the status by name
func (s StockStatus) MarshalText() ([]byte, error) {
	if _, ok := stockStatusNames[s]; !ok {
		return nil, fmt.Errorf("unknown stock status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *StockStatus) UnmarshalText(text []byte) error {
	for status, name := range stockStatusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown stock status %q", string(text))
}

// CanTransitionTo reports whether next is a legal successor of s.
// AVAILABLE -> RESERVED -> SOLD.
func (s StockStatus) CanTransitionTo(next StockStatus) bool {
	switch s {
	case StockAvailable:
		return next == StockReserved
	case StockReserved:
		return next == StockSold
	default:
		return false
	}
}

// StockRecord is a manufacturer's inventory listing
type StockRecord struct {
	ID string `json:"id"`
	TimberSpec
	Price          string      `json:"price"`
	Sustainability string      `json:"sustainability,omitempty"`
	Status         StockStatus `json:"status"`
	CompanyID      string      `json:"companyId"`
	UploadedAt     time.Time   `json:"uploadedAt"`
}

// NewStockRecord creates a validated StockRecord in AVAILABLE status
func NewStockRecord(id, companyID string, spec TimberSpec, price, sustainability string, uploadedAt time.Time) (*StockRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("stock id cannot be empty")
	}
	if companyID == "" {
		return nil, fmt.Errorf("company id cannot be empty")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &StockRecord{
		ID:             id,
		TimberSpec:     spec.WithVolume(),
		Price:          price,
		Sustainability: sustainability,
		Status:         StockAvailable,
		CompanyID:      companyID,
		UploadedAt:     uploadedAt,
	}, nil
}

// TransitionTo moves the listing to next, rejecting illegal transitions
func (s *StockRecord) TransitionTo(next StockStatus) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("stock %s: %w: %s -> %s", s.ID, ErrInvalidTransition, s.Status, next)
	}
	s.Status = next
	return nil
}

// Clone returns a deep copy of the record
func (s *StockRecord) Clone() *StockRecord {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
