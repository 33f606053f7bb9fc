package entities

import (
	"fmt"
	"time"
)

// DemandStatus represents the lifecycle state of a demand
type DemandStatus int

const (
	DemandReceived DemandStatus = iota
	DemandProcessing
	DemandCompleted
	DemandCancelled
)

var demandStatusNames = map[DemandStatus]string{
	DemandReceived:   "RECEIVED",
	DemandProcessing: "PROCESSING",
	DemandCompleted:  "COMPLETED",
	DemandCancelled:  "CANCELLED",
}

// String method for DemandStatus enum
func (s DemandStatus) String() string {
	if name, ok := demandStatusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText encodes the status by name
func (s DemandStatus) MarshalText() ([]byte, error) {
	if _, ok := demandStatusNames[s]; !ok {
		return nil, fmt.Errorf("unknown demand status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *DemandStatus) UnmarshalText(text []byte) error {
	for status, name := range demandStatusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown demand status %q", string(text))
}

// CanTransitionTo reports whether next is a legal successor of s.
// RECEIVED -> PROCESSING -> COMPLETED, RECEIVED -> CANCELLED.
func (s DemandStatus) CanTransitionTo(next DemandStatus) bool {
	switch s {
	case DemandReceived:
		return next == DemandProcessing || next == DemandCancelled
	case DemandProcessing:
		return next == DemandCompleted
	default:
		return false
	}
}

// DemandRecord is a customer's request for a timber product
type DemandRecord struct {
	ID string `json:"id"`
	TimberSpec
	Status      DemandStatus `json:"status"`
	CompanyID   string       `json:"companyId"`
	Notes       string       `json:"notes,omitempty"`
	SubmittedAt time.Time    `json:"submittedAt"`
}

// NewDemandRecord creates a validated DemandRecord in RECEIVED status
func NewDemandRecord(id, companyID string, spec TimberSpec, submittedAt time.Time) (*DemandRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("demand id cannot be empty")
	}
	if companyID == "" {
		return nil, fmt.Errorf("company id cannot be empty")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &DemandRecord{
		ID:          id,
		TimberSpec:  spec.WithVolume(),
		Status:      DemandReceived,
		CompanyID:   companyID,
		SubmittedAt: submittedAt,
	}, nil
}

// TransitionTo moves the demand to next, rejecting illegal transitions
func (d *DemandRecord) TransitionTo(next DemandStatus) error {
	if !d.Status.CanTransitionTo(next) {
		return fmt.Errorf("demand %s: %w: %s -> %s", d.ID, ErrInvalidTransition, d.Status, next)
	}
	d.Status = next
	return nil
}

// Clone returns a deep copy of the record
func (d *DemandRecord) Clone() *DemandRecord {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
