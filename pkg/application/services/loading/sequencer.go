// Package loading turns confirmed matches into a loading plan for one truck.
package loading

import (
	"fmt"
	"math"
	"sort"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// DefaultCapacity is the rated truck capacity in m3
const DefaultCapacity = 25.0

// Sequencer builds the deterministic part of a loading plan
type Sequencer struct {
	capacity float64
}

// NewSequencer creates a sequencer for a truck of the given capacity in m3
func NewSequencer(capacity float64) *Sequencer {
	if capacity < 0 {
		capacity = 0
	}
	return &Sequencer{capacity: capacity}
}

// Capacity returns the rated capacity in m3
func (s *Sequencer) Capacity() float64 {
	return s.capacity
}

// Sequence groups matches into pickups and drop-offs and orders the load
// so that the first drop-off is loaded last. Billed and repeated matches are
// ignored; fewer than two remaining matches is ErrInsufficientData.
func (s *Sequencer) Sequence(matches []*entities.ConfirmedMatch, dir Directory) (*entities.LoadingPlan, error) {
	selected := selectMatches(matches)
	if len(selected) < 2 {
		return nil, fmt.Errorf("%d usable matches: %w", len(selected), entities.ErrInsufficientData)
	}

	plan := &entities.LoadingPlan{Capacity: s.capacity}

	pickupIndex := make(map[string]int)
	dropoffIndex := make(map[string]int)

	for _, m := range selected {
		manufacturer := m.Stock.CompanyID
		i, ok := pickupIndex[manufacturer]
		if !ok {
			i = len(plan.Pickups)
			pickupIndex[manufacturer] = i
			plan.Pickups = append(plan.Pickups, entities.Stop{
				CompanyID: manufacturer,
				Name:      dir.Name(manufacturer),
				Address:   dir.Address(manufacturer),
				Type:      entities.WaypointPickup,
			})
		}
		plan.Pickups[i].MatchIDs = append(plan.Pickups[i].MatchIDs, m.ID)

		customer := m.Demand.CompanyID
		j, ok := dropoffIndex[customer]
		if !ok {
			j = len(plan.Dropoffs)
			dropoffIndex[customer] = j
			plan.Dropoffs = append(plan.Dropoffs, entities.Stop{
				CompanyID: customer,
				Name:      dir.Name(customer),
				Address:   dir.Address(customer),
				Type:      entities.WaypointDropoff,
			})
		}
		plan.Dropoffs[j].MatchIDs = append(plan.Dropoffs[j].MatchIDs, m.ID)

		plan.Items = append(plan.Items, entities.LoadingPlanItem{
			Name:         itemName(m),
			Volume:       itemVolume(m),
			Destination:  plan.Dropoffs[j].Name,
			Origin:       plan.Pickups[i].Name,
			DropOffOrder: j + 1,
			MatchID:      m.ID,
			DemandID:     m.Demand.ID,
			StockID:      m.Stock.ID,
		})
	}

	orderItems(plan)
	allocate(plan)
	plan.Waypoints = defaultWaypoints(plan)
	plan.PlanDetails = planDetails(plan)

	if plan.Capacity > 0 && plan.TotalVolume > plan.Capacity {
		plan.Diagnostics = append(plan.Diagnostics,
			fmt.Sprintf("Load of %.3f m3 exceeds the truck capacity of %g m3.", plan.TotalVolume, plan.Capacity))
	}

	return plan, nil
}

// selectMatches drops nil, billed and repeated matches and orders the rest by match date
func selectMatches(matches []*entities.ConfirmedMatch) []*entities.ConfirmedMatch {
	seen := make(map[string]bool, len(matches))
	selected := make([]*entities.ConfirmedMatch, 0, len(matches))
	for _, m := range matches {
		if m == nil || m.Demand == nil || m.Stock == nil || m.Billed || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		selected = append(selected, m)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].MatchDate.Before(selected[j].MatchDate)
	})
	return selected
}

func itemName(m *entities.ConfirmedMatch) string {
	return fmt.Sprintf("%s %g-%gcm x %gm (%d pcs)",
		m.Stock.Product, m.Stock.DiameterFrom, m.Stock.DiameterTo, m.Stock.Length, m.Demand.Quantity)
}

// itemVolume is the demanded volume, falling back to the stock volume
func itemVolume(m *entities.ConfirmedMatch) float64 {
	if m.Demand.CubicVolume > 0 {
		return m.Demand.CubicVolume
	}
	if v := entities.CubicVolume(m.Demand.DiameterFrom, m.Demand.DiameterTo, m.Demand.Length, m.Demand.Quantity); v > 0 {
		return v
	}
	return m.Stock.CubicVolume
}

// orderItems sorts by descending drop-off order and numbers the load positions
func orderItems(plan *entities.LoadingPlan) {
	sort.SliceStable(plan.Items, func(i, j int) bool {
		return plan.Items[i].DropOffOrder > plan.Items[j].DropOffOrder
	})
	for i := range plan.Items {
		plan.Items[i].LoadPosition = i + 1
	}
}

// allocate sets each item's width as its share of the larger of the load and the capacity
func allocate(plan *entities.LoadingPlan) {
	var total float64
	for _, item := range plan.Items {
		total += item.Volume
	}
	plan.TotalVolume = math.Round(total*1000) / 1000

	basis := math.Max(total, plan.Capacity)
	for i := range plan.Items {
		if basis <= 0 {
			plan.Items[i].WidthPercent = 0
			continue
		}
		plan.Items[i].WidthPercent = math.Floor(plan.Items[i].Volume*100/basis*100) / 100
	}

	plan.CapacityUsed = 0
	if plan.Capacity > 0 {
		plan.CapacityUsed = math.Round(total*100/plan.Capacity*10) / 10
	}
}

func defaultWaypoints(plan *entities.LoadingPlan) []entities.Waypoint {
	waypoints := make([]entities.Waypoint, 0, len(plan.Pickups)+len(plan.Dropoffs))
	for _, stop := range plan.Pickups {
		waypoints = append(waypoints, entities.Waypoint{CompanyID: stop.CompanyID, Name: stop.Name, Type: entities.WaypointPickup, Order: len(waypoints)})
	}
	for _, stop := range plan.Dropoffs {
		waypoints = append(waypoints, entities.Waypoint{CompanyID: stop.CompanyID, Name: stop.Name, Type: entities.WaypointDropoff, Order: len(waypoints)})
	}
	return waypoints
}

func planDetails(plan *entities.LoadingPlan) string {
	return fmt.Sprintf("%d consignments from %d pickups to %d drop-offs, %.3f m3 loaded (%.1f%% of %g m3)",
		len(plan.Items), len(plan.Pickups), len(plan.Dropoffs), plan.TotalVolume, plan.CapacityUsed, plan.Capacity)
}

// applyRoute reorders the plan along waypoints, which must name every stop
// of the plan exactly once. Stops are identified by company, not display name.
// Drop-off orders and the load order follow the route.
func applyRoute(plan *entities.LoadingPlan, waypoints []entities.Waypoint) {
	dropoffRank := make(map[string]int, len(plan.Dropoffs))
	pickupRank := make(map[string]int, len(plan.Pickups))
	for _, wp := range waypoints {
		switch wp.Type {
		case entities.WaypointDropoff:
			dropoffRank[wp.CompanyID] = len(dropoffRank) + 1
		case entities.WaypointPickup:
			pickupRank[wp.CompanyID] = len(pickupRank)
		}
	}

	sort.SliceStable(plan.Dropoffs, func(i, j int) bool {
		return dropoffRank[plan.Dropoffs[i].CompanyID] < dropoffRank[plan.Dropoffs[j].CompanyID]
	})
	sort.SliceStable(plan.Pickups, func(i, j int) bool {
		return pickupRank[plan.Pickups[i].CompanyID] < pickupRank[plan.Pickups[j].CompanyID]
	})

	matchRank := make(map[string]int, len(plan.Items))
	for _, stop := range plan.Dropoffs {
		for _, id := range stop.MatchIDs {
			matchRank[id] = dropoffRank[stop.CompanyID]
		}
	}
	for i := range plan.Items {
		plan.Items[i].DropOffOrder = matchRank[plan.Items[i].MatchID]
	}
	orderItems(plan)

	plan.Waypoints = make([]entities.Waypoint, len(waypoints))
	for i, wp := range waypoints {
		wp.Order = i
		plan.Waypoints[i] = wp
	}
}

// clonePlan copies plan deeply enough for applyRoute to work on the copy
func clonePlan(plan *entities.LoadingPlan) *entities.LoadingPlan {
	c := *plan
	c.Items = append([]entities.LoadingPlanItem(nil), plan.Items...)
	c.Pickups = append([]entities.Stop(nil), plan.Pickups...)
	c.Dropoffs = append([]entities.Stop(nil), plan.Dropoffs...)
	c.Waypoints = append([]entities.Waypoint(nil), plan.Waypoints...)
	c.Diagnostics = append([]string(nil), plan.Diagnostics...)
	return &c
}
