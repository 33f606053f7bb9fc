package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Out       io.Writer
}

func (c Config) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// ValidateFormat rejects formats the renderers do not support
func ValidateFormat(format string) error {
	switch format {
	case "text", "json", "svg":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Suggestions renders a validated batch of match suggestions
func Suggestions(batch interpreter.Batch[entities.MatchSuggestion], config Config) error {
	if config.Format == "json" {
		return writeJSON("suggestions.json", map[string]any{
			"suggestions": batch.Items,
			"dropped":     batch.Dropped,
		}, config)
	}

	w := config.writer()
	fmt.Fprintf(w, "🤝 Match Suggestions\n")
	fmt.Fprintf(w, "====================\n\n")

	if len(batch.Items) == 0 {
		fmt.Fprintf(w, "No suitable matches found.\n")
	} else {
		fmt.Fprintf(w, "%-12s %-12s %-8s %-6s %s\n", "Demand", "Stock", "Strength", "Score", "Reason")
		fmt.Fprintf(w, "%-12s %-12s %-8s %-6s %s\n", "------------", "------------", "--------", "------", "------")
		for _, s := range batch.Items {
			fmt.Fprintf(w, "%-12s %-12s %-8s %-6.2f %s\n", s.DemandID, s.StockID, s.MatchStrength, s.SimilarityScore, s.Reason)
		}
	}

	if batch.Dropped > 0 {
		fmt.Fprintf(w, "\n⚠️  %d suggestion(s) were incomplete and skipped\n", batch.Dropped)
	}
	return nil
}

// Matches renders confirmed matches with their commission
func Matches(matches []*entities.ConfirmedMatch, config Config) error {
	if config.Format == "json" {
		return writeJSON("matches.json", matches, config)
	}

	w := config.writer()
	fmt.Fprintf(w, "📋 Confirmed Matches: %d\n\n", len(matches))
	if len(matches) == 0 {
		return nil
	}

	fmt.Fprintf(w, "%-12s %-12s %-12s %-12s %-10s %-6s\n", "Match", "Demand", "Stock", "Date", "Commission", "Billed")
	fmt.Fprintf(w, "%-12s %-12s %-12s %-12s %-10s %-6s\n", "------------", "------------", "------------", "------------", "----------", "------")
	for _, m := range matches {
		fmt.Fprintf(w, "%-12s %-12s %-12s %-12s %-10s %-6t\n",
			shortID(m.ID), m.Demand.ID, m.Stock.ID, m.MatchDate.Format("2006-01-02"), m.CommissionAmount.StringFixed(2), m.Billed)
	}
	return nil
}

// Match renders a single confirmed match
func Match(match *entities.ConfirmedMatch, config Config) error {
	if config.Format == "json" {
		return writeJSON("match.json", match, config)
	}

	w := config.writer()
	fmt.Fprintf(w, "✅ Match %s confirmed\n", match.ID)
	fmt.Fprintf(w, "  Demand: %s (%s)\n", match.Demand.ID, match.Demand.Product)
	fmt.Fprintf(w, "  Stock: %s (%s, %s)\n", match.Stock.ID, match.Stock.Product, match.Stock.Price)
	fmt.Fprintf(w, "  Commission: %s at rate %s\n", match.CommissionAmount.StringFixed(2), match.CommissionRate.String())
	return nil
}

// Demands renders demand records
func Demands(demands []*entities.DemandRecord, config Config) error {
	if config.Format == "json" {
		return writeJSON("demands.json", demands, config)
	}

	w := config.writer()
	fmt.Fprintf(w, "%-12s %-12s %-16s %-10s %-6s %-8s %-8s %-10s\n", "Demand", "Company", "Product", "Diameter", "Length", "Qty", "Volume", "Status")
	for _, d := range demands {
		fmt.Fprintf(w, "%-12s %-12s %-16s %-10s %-6g %-8d %-8.3f %-10s\n",
			d.ID, d.CompanyID, d.Product, diameter(d.TimberSpec), d.Length, d.Quantity, d.CubicVolume, d.Status)
	}
	return nil
}

// Stock renders stock listings
func Stock(stock []*entities.StockRecord, config Config) error {
	if config.Format == "json" {
		return writeJSON("stock.json", stock, config)
	}

	w := config.writer()
	fmt.Fprintf(w, "%-12s %-12s %-16s %-10s %-6s %-8s %-8s %-14s %-10s\n", "Stock", "Company", "Product", "Diameter", "Length", "Qty", "Volume", "Price", "Status")
	for _, s := range stock {
		fmt.Fprintf(w, "%-12s %-12s %-16s %-10s %-6g %-8d %-8.3f %-14s %-10s\n",
			s.ID, s.CompanyID, s.Product, diameter(s.TimberSpec), s.Length, s.Quantity, s.CubicVolume, s.Price, s.Status)
	}
	return nil
}

// Plan renders a loading plan as text, JSON or an SVG truck diagram
func Plan(plan *entities.LoadingPlan, config Config) error {
	switch config.Format {
	case "json":
		return writeJSON("loading_plan.json", plan, config)
	case "svg":
		return writeFile("loading_plan.svg", []byte(NewTruckDiagram().GenerateSVG(plan)), config)
	}

	w := config.writer()
	fmt.Fprintf(w, "🚚 Loading Plan\n")
	fmt.Fprintf(w, "===============\n\n")
	fmt.Fprintf(w, "%s\n\n", plan.PlanDetails)
	fmt.Fprintf(w, "Capacity: %.1f m³  Loaded: %.3f m³  Used: %.1f%%\n", plan.Capacity, plan.TotalVolume, plan.CapacityUsed)
	fmt.Fprintf(w, "%s\n\n", TruckBar(plan, 60))

	fmt.Fprintf(w, "%-4s %-24s %-8s %-7s %-20s %-20s\n", "Pos", "Item", "Volume", "Width", "Origin", "Destination")
	fmt.Fprintf(w, "%-4s %-24s %-8s %-7s %-20s %-20s\n", "----", "------------------------", "--------", "-------", "--------------------", "--------------------")
	for _, item := range plan.Items {
		fmt.Fprintf(w, "%-4d %-24s %-8.3f %-6.2f%% %-20s %-20s\n",
			item.LoadPosition, item.Name, item.Volume, item.WidthPercent, item.Origin, item.Destination)
	}
	fmt.Fprintln(w)

	if len(plan.Waypoints) > 0 {
		fmt.Fprintf(w, "📍 Route:\n")
		for _, wp := range plan.Waypoints {
			fmt.Fprintf(w, "  %d. %s (%s)\n", wp.Order, wp.Name, wp.Type)
		}
		fmt.Fprintln(w)
	}

	if plan.OptimizedRouteDescription != "" {
		fmt.Fprintf(w, "%s\n\n", plan.OptimizedRouteDescription)
	}

	for _, d := range plan.Diagnostics {
		fmt.Fprintf(w, "⚠️  %s\n", d)
	}
	return nil
}

// Tips renders an AI-generated tip list
func Tips(title string, tips []string, config Config) error {
	if config.Format == "json" {
		return writeJSON("tips.json", map[string]any{"title": title, "tips": tips}, config)
	}

	w := config.writer()
	fmt.Fprintf(w, "💡 %s\n", title)
	for _, tip := range tips {
		fmt.Fprintf(w, "  - %s\n", tip)
	}
	return nil
}

// Failure renders an error as the message shown to marketplace users.
// Verbose output includes the failure class and the underlying error.
func Failure(err error, config Config) {
	w := config.writer()
	fmt.Fprintf(w, "❌ %s\n", interpreter.UserMessage(err))
	if config.Verbose {
		fmt.Fprintf(w, "   [%s] %v\n", interpreter.Classify(err), err)
	}
}

// TruckBar draws the truck bed as a one-line bar, rear on the left.
// Each item gets a segment proportional to its width percentage.
func TruckBar(plan *entities.LoadingPlan, width int) string {
	var b strings.Builder
	b.WriteString("[")
	used := 0
	for i, item := range plan.Items {
		cells := int(item.WidthPercent * float64(width) / 100)
		if cells == 0 && item.WidthPercent > 0 {
			cells = 1
		}
		if used+cells > width {
			cells = width - used
		}
		glyph := string(rune('1' + i%9))
		b.WriteString(strings.Repeat(glyph, cells))
		used += cells
	}
	b.WriteString(strings.Repeat(".", width-used))
	b.WriteString("]")
	return b.String()
}

func diameter(spec entities.TimberSpec) string {
	return fmt.Sprintf("%g-%g", spec.DiameterFrom, spec.DiameterTo)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeJSON prints v to the configured writer, or saves it when an output directory is set
func writeJSON(name string, v any, config Config) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}
	return writeFile(name, jsonData, config)
}

func writeFile(name string, data []byte, config Config) error {
	if config.OutputDir == "" {
		_, err := config.writer().Write(data)
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 Results saved to: %s\n", filename)
	}
	return nil
}
