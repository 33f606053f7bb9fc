package loading

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/infrastructure/ai"
)

// FeatureRoute names the route request in errors, logs and the in-flight guard
const FeatureRoute = "route optimisation"

type routeWire struct {
	OptimizedRouteDescription interpreter.Text `json:"optimizedRouteDescription"`
	Waypoints                 []waypointWire   `json:"waypoints"`
}

type waypointWire struct {
	CompanyID interpreter.Text   `json:"companyId"`
	Name      interpreter.Text   `json:"name"`
	Type      interpreter.Text   `json:"type"`
	Order     interpreter.Number `json:"order"`
}

// RouteAdvisor asks the AI for a route narrative and a stop order
type RouteAdvisor struct {
	interp *interpreter.Interpreter
	logger *zap.Logger
}

// NewRouteAdvisor creates an advisor
func NewRouteAdvisor(interp *interpreter.Interpreter, logger *zap.Logger) *RouteAdvisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteAdvisor{interp: interp, logger: logger}
}

// Available reports whether an AI generator is configured
func (a *RouteAdvisor) Available() bool {
	return a != nil && a.interp.Available()
}

// Advise returns a copy of plan reordered along the AI's route. Waypoints
// naming unknown stops are dropped; stops the AI left out are appended in
// their original order. The narrative is copied as returned.
func (a *RouteAdvisor) Advise(ctx context.Context, plan *entities.LoadingPlan) (*entities.LoadingPlan, error) {
	if !a.Available() {
		return nil, interpreter.ErrAIUnavailable
	}

	text, err := a.interp.Generate(ctx, FeatureRoute, buildRoutePrompt(plan), ai.Options{StructuredOutput: true})
	if err != nil {
		return nil, err
	}

	route, err := interpreter.ParseObject(FeatureRoute, text, func(r routeWire) error {
		if len(r.Waypoints) == 0 {
			return fmt.Errorf("route has no waypoints")
		}
		return nil
	})
	if err != nil {
		a.logger.Warn("could not parse route", zap.Error(err))
		return nil, err
	}

	waypoints, dropped, err := resolveWaypoints(plan, route.Waypoints)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		a.logger.Warn("dropped invalid waypoints", zap.Int("dropped", dropped))
	}

	advised := clonePlan(plan)
	applyRoute(advised, waypoints)
	advised.OptimizedRouteDescription = route.OptimizedRouteDescription.String()
	return advised, nil
}

// resolveWaypoints maps the AI's waypoints onto the plan's stops, by company
// id when the waypoint carries a known one and by name otherwise. A name shared
// by several stops resolves to the first of them not yet on the route.
// It fails with a ValidationError when none of them name a known stop.
func resolveWaypoints(plan *entities.LoadingPlan, wires []waypointWire) ([]entities.Waypoint, int, error) {
	type stopKey struct {
		companyID string
		kind      entities.WaypointType
	}
	type nameKey struct {
		name string
		kind entities.WaypointType
	}
	stops := make(map[stopKey]entities.Stop)
	byName := make(map[nameKey][]stopKey)
	for _, group := range [][]entities.Stop{plan.Pickups, plan.Dropoffs} {
		for _, s := range group {
			key := stopKey{s.CompanyID, s.Type}
			stops[key] = s
			nk := nameKey{strings.ToLower(s.Name), s.Type}
			byName[nk] = append(byName[nk], key)
		}
	}

	seen := make(map[stopKey]bool)
	resolve := func(w waypointWire) (stopKey, bool) {
		kind := entities.WaypointType(strings.ToLower(w.Type.String()))
		if id := w.CompanyID.String(); id != "" {
			key := stopKey{id, kind}
			if _, ok := stops[key]; ok {
				return key, !seen[key]
			}
		}
		for _, key := range byName[nameKey{strings.ToLower(w.Name.String()), kind}] {
			if !seen[key] {
				return key, true
			}
		}
		return stopKey{}, false
	}

	var keys []stopKey
	batch := interpreter.ValidateItems(wires, func(w waypointWire) bool {
		key, ok := resolve(w)
		if ok {
			seen[key] = true
			keys = append(keys, key)
		}
		return ok
	})
	if err := interpreter.RequireSome(FeatureRoute, batch); err != nil {
		return nil, batch.Dropped, err
	}

	type ranked struct {
		wp   entities.Waypoint
		rank float64
	}
	rankedStops := make([]ranked, 0, len(batch.Items))
	for i, w := range batch.Items {
		stop := stops[keys[i]]
		rank := float64(i)
		if w.Order.Valid {
			rank = w.Order.Value
		}
		rankedStops = append(rankedStops, ranked{
			wp:   entities.Waypoint{CompanyID: stop.CompanyID, Name: stop.Name, Type: stop.Type},
			rank: rank,
		})
	}
	sort.SliceStable(rankedStops, func(i, j int) bool { return rankedStops[i].rank < rankedStops[j].rank })

	waypoints := make([]entities.Waypoint, 0, len(plan.Pickups)+len(plan.Dropoffs))
	for _, r := range rankedStops {
		waypoints = append(waypoints, r.wp)
	}
	for _, wp := range defaultWaypoints(plan) {
		if !seen[stopKey{wp.CompanyID, wp.Type}] {
			waypoints = append(waypoints, wp)
		}
	}
	return waypoints, batch.Dropped, nil
}

func buildRoutePrompt(plan *entities.LoadingPlan) string {
	var b strings.Builder
	b.WriteString(`You plan the route of one timber truck. Collect every consignment at its pickup
and deliver it to its drop-off. Suggest a sensible stop order and describe the route in a few sentences.

Respond with a JSON object only:
  {"optimizedRouteDescription": string,
   "waypoints": [{"companyId": id as listed, "name": stop name exactly as listed, "type": "pickup" | "dropoff", "order": integer starting at 0}]}
`)

	b.WriteString("\nPickups:\n")
	for _, s := range plan.Pickups {
		writeStop(&b, s)
	}
	b.WriteString("\nDrop-offs:\n")
	for _, s := range plan.Dropoffs {
		writeStop(&b, s)
	}
	fmt.Fprintf(&b, "\nLoad: %.3f m3 on a %g m3 truck.\n", plan.TotalVolume, plan.Capacity)
	return b.String()
}

func writeStop(b *strings.Builder, s entities.Stop) {
	fmt.Fprintf(b, "- %s [id=%s]", s.Name, s.CompanyID)
	if s.Address != "" {
		fmt.Fprintf(b, " (%s)", s.Address)
	}
	fmt.Fprintf(b, ": %d consignments\n", len(s.MatchIDs))
}
