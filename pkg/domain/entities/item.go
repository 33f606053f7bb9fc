package entities

import (
	"fmt"
	"math"
)

// Quantity represents an integer piece count
type Quantity int64

// TimberSpec describes a timber product by its log dimensions.
// Diameters are in centimetres, length in metres.
type TimberSpec struct {
	Product      string   `json:"product"`
	DiameterFrom float64  `json:"diameterFrom"`
	DiameterTo   float64  `json:"diameterTo"`
	Length       float64  `json:"length"`
	Quantity     Quantity `json:"quantity"`
	CubicVolume  float64  `json:"cubicVolume"`
}

// Validate checks the dimensional invariants of the spec
func (s TimberSpec) Validate() error {
	if s.Product == "" {
		return fmt.Errorf("product cannot be empty")
	}
	if s.DiameterFrom <= 0 || s.DiameterTo <= 0 {
		return fmt.Errorf("diameters must be positive, got %g-%g", s.DiameterFrom, s.DiameterTo)
	}
	if s.DiameterFrom > s.DiameterTo {
		return fmt.Errorf("diameter range is inverted: %g > %g", s.DiameterFrom, s.DiameterTo)
	}
	if s.Length <= 0 {
		return fmt.Errorf("length must be positive, got %g", s.Length)
	}
	if s.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", s.Quantity)
	}
	return nil
}

// WithVolume returns a copy of the spec with CubicVolume recomputed
func (s TimberSpec) WithVolume() TimberSpec {
	s.CubicVolume = CubicVolume(s.DiameterFrom, s.DiameterTo, s.Length, s.Quantity)
	return s
}

// CubicVolume returns the volume in m³ of quantity logs whose diameter ranges
// from diameterFrom to diameterTo (cm) and of the given length (m).
// Incomplete or inconsistent input yields 0 so the value can be shown while a
// form is still being filled in.
func CubicVolume(diameterFrom, diameterTo, length float64, quantity Quantity) float64 {
	if diameterFrom <= 0 || diameterTo <= 0 || length <= 0 || quantity <= 0 {
		return 0
	}
	if diameterFrom > diameterTo {
		return 0
	}

	radius := (diameterFrom + diameterTo) / 4 / 100
	volume := math.Pi * radius * radius * length * float64(quantity)
	return math.Round(volume*1000) / 1000
}
