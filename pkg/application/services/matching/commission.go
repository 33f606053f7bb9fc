package matching

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// DefaultFallbackUnitPrice is the per-m3 price assumed when a stock price cannot be read
var DefaultFallbackUnitPrice = decimal.NewFromInt(2)

// pricePattern matches "<number> <currency>/<unit>", e.g. "120 EUR/m3" or "20,5 €/pcs".
// Group 1 is an amount with comma thousands separators ("1,200" or "12,500.50"),
// group 2 a plain amount whose comma, if any, is the decimal mark.
var pricePattern = regexp.MustCompile(`^(?:([1-9][0-9]{0,2}(?:,[0-9]{3})+(?:\.[0-9]+)?)|([0-9]+(?:[.,][0-9]+)?))\s*([A-Za-z€$£]{1,4})\s*/\s*([A-Za-z0-9³]+)$`)

var volumeUnits = map[string]bool{"m3": true, "m³": true, "cbm": true}

var pieceUnits = map[string]bool{"unit": true, "units": true, "pc": true, "pcs": true, "piece": true, "pieces": true}

// PriceBasis records how a commission was derived
type PriceBasis int

const (
	BasisVolume PriceBasis = iota
	BasisPiece
	BasisFallback
)

// String method for PriceBasis enum
func (b PriceBasis) String() string {
	switch b {
	case BasisVolume:
		return "volume"
	case BasisPiece:
		return "piece"
	default:
		return "fallback"
	}
}

// Price is a parsed stock price
type Price struct {
	Amount   decimal.Decimal
	Currency string
	Unit     string
	Basis    PriceBasis
}

// ParsePrice reads a "<number> <currency>/<unit>" price. ok is false when the
// text does not match or the unit is neither a volume nor a piece unit.
func ParsePrice(text string) (Price, bool) {
	m := pricePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Price{}, false
	}

	number := strings.Replace(m[2], ",", ".", 1)
	if m[1] != "" {
		number = strings.ReplaceAll(m[1], ",", "")
	}
	amount, err := decimal.NewFromString(number)
	if err != nil {
		return Price{}, false
	}

	unit := strings.ToLower(m[4])
	price := Price{Amount: amount, Currency: m[3], Unit: unit}
	switch {
	case volumeUnits[unit]:
		price.Basis = BasisVolume
	case pieceUnits[unit]:
		price.Basis = BasisPiece
	default:
		return Price{}, false
	}
	return price, true
}

// Commission computes the platform fee for a confirmed match
type Commission struct {
	Rate              decimal.Decimal
	FallbackUnitPrice decimal.Decimal
	logger            *zap.Logger
}

// NewCommission creates a calculator. An unset rate selects DefaultCommissionRate;
// a set rate of zero waives the commission. A zero fallback price selects the default.
func NewCommission(rate decimal.NullDecimal, fallbackUnitPrice decimal.Decimal, logger *zap.Logger) *Commission {
	if !rate.Valid {
		rate = decimal.NewNullDecimal(entities.DefaultCommissionRate)
	}
	if fallbackUnitPrice.IsZero() {
		fallbackUnitPrice = DefaultFallbackUnitPrice
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Commission{Rate: rate.Decimal, FallbackUnitPrice: fallbackUnitPrice, logger: logger}
}

// Compute returns the commission for stock rounded to 2 decimal places, and how it was derived
func (c *Commission) Compute(stock *entities.StockRecord) (decimal.Decimal, PriceBasis) {
	volume := stock.CubicVolume
	if volume <= 0 {
		volume = entities.CubicVolume(stock.DiameterFrom, stock.DiameterTo, stock.Length, stock.Quantity)
	}

	price, ok := ParsePrice(stock.Price)
	if !ok {
		base := decimal.NewFromInt(1)
		if volume > 0 {
			base = decimal.NewFromFloat(volume)
		}
		c.logger.Warn("stock price not recognised, using fallback commission",
			zap.String("stock_id", stock.ID),
			zap.String("price", stock.Price),
			zap.String("fallback_unit_price", c.FallbackUnitPrice.String()))
		return base.Mul(c.FallbackUnitPrice).Mul(c.Rate).Round(2), BasisFallback
	}

	var gross decimal.Decimal
	switch price.Basis {
	case BasisVolume:
		gross = price.Amount.Mul(decimal.NewFromFloat(volume))
	default:
		gross = price.Amount.Mul(decimal.NewFromInt(int64(stock.Quantity)))
	}
	return gross.Mul(c.Rate).Round(2), price.Basis
}
