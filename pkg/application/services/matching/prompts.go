package matching

import (
	"fmt"
	"strings"

	"github.com/vsinha/timber/pkg/domain/entities"
)

const suggestInstructions = `You are a timber trading assistant. Pair customer demands with manufacturer stock.
A good match has the same or a compatible product, an overlapping diameter range, a similar length
and enough quantity. Only use the ids listed below. Each demand and each stock may appear at most once.

Respond with a JSON array only. Each element must have:
  "demandId": string, "stockId": string, "reason": short explanation,
  "matchStrength": "High" | "Medium" | "Low", "similarityScore": number between 0 and 1.
Return [] if nothing fits.`

func buildSuggestPrompt(demands []*entities.DemandRecord, stock []*entities.StockRecord) string {
	var b strings.Builder
	b.WriteString(suggestInstructions)

	b.WriteString("\n\nDemands:\n")
	for _, d := range demands {
		fmt.Fprintf(&b, "- id=%s product=%q diameter=%g-%gcm length=%gm quantity=%d volume=%.3fm3",
			d.ID, d.Product, d.DiameterFrom, d.DiameterTo, d.Length, d.Quantity, d.CubicVolume)
		if d.Notes != "" {
			fmt.Fprintf(&b, " notes=%q", d.Notes)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nStock:\n")
	for _, s := range stock {
		fmt.Fprintf(&b, "- id=%s product=%q diameter=%g-%gcm length=%gm quantity=%d volume=%.3fm3 price=%q",
			s.ID, s.Product, s.DiameterFrom, s.DiameterTo, s.Length, s.Quantity, s.CubicVolume, s.Price)
		if s.Sustainability != "" {
			fmt.Fprintf(&b, " sustainability=%q", s.Sustainability)
		}
		b.WriteString("\n")
	}

	return b.String()
}
