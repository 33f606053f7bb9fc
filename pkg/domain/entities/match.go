package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MatchStrength is the AI's qualitative confidence in a pairing
type MatchStrength string

const (
	StrengthHigh   MatchStrength = "High"
	StrengthMedium MatchStrength = "Medium"
	StrengthLow    MatchStrength = "Low"
)

// ParseMatchStrength normalises s, falling back to Medium for anything unrecognised
func ParseMatchStrength(s string) MatchStrength {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return StrengthHigh
	case "low":
		return StrengthLow
	default:
		return StrengthMedium
	}
}

// DefaultSimilarityScore is used when the AI omits the score or returns one outside [0,1]
const DefaultSimilarityScore = 0.5

// DefaultCommissionRate is the platform fee applied to a confirmed match
var DefaultCommissionRate = decimal.RequireFromString("0.05")

// MatchSuggestion is an AI-proposed pairing of a demand with a stock listing.
// Suggestions are never persisted.
type MatchSuggestion struct {
	DemandID        string        `json:"demandId"`
	StockID         string        `json:"stockId"`
	Reason          string        `json:"reason"`
	MatchStrength   MatchStrength `json:"matchStrength"`
	SimilarityScore float64       `json:"similarityScore"`
}

// PairKey identifies the demand/stock pair of a suggestion or match
func PairKey(demandID, stockID string) string {
	return fmt.Sprintf("%s|%s", demandID, stockID)
}

// ConfirmedMatch is the immutable record of a confirmed pairing.
// Demand and Stock are snapshots taken at confirmation time.
type ConfirmedMatch struct {
	ID               string          `json:"id"`
	Demand           *DemandRecord   `json:"demand"`
	Stock            *StockRecord    `json:"stock"`
	Reason           string          `json:"reason,omitempty"`
	CommissionRate   decimal.Decimal `json:"commissionRate"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	MatchDate        time.Time       `json:"matchDate"`
	Billed           bool            `json:"billed"`
}

// NewConfirmedMatch snapshots demand and stock into a new match record
func NewConfirmedMatch(id string, demand *DemandRecord, stock *StockRecord, rate, amount decimal.Decimal, matchDate time.Time) (*ConfirmedMatch, error) {
	if id == "" {
		return nil, fmt.Errorf("match id cannot be empty")
	}
	if demand == nil || stock == nil {
		return nil, fmt.Errorf("match requires both demand and stock")
	}

	return &ConfirmedMatch{
		ID:               id,
		Demand:           demand.Clone(),
		Stock:            stock.Clone(),
		CommissionRate:   rate,
		CommissionAmount: amount,
		MatchDate:        matchDate,
	}, nil
}

// Pair returns the demand/stock pair key of the match
func (m *ConfirmedMatch) Pair() string {
	return PairKey(m.Demand.ID, m.Stock.ID)
}

// Clone returns a deep copy of the match
func (m *ConfirmedMatch) Clone() *ConfirmedMatch {
	if m == nil {
		return nil
	}
	c := *m
	c.Demand = m.Demand.Clone()
	c.Stock = m.Stock.Clone()
	return &c
}
