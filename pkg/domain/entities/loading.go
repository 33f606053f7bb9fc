package entities

// WaypointType marks a stop as a pickup or a drop-off
type WaypointType string

const (
	WaypointPickup  WaypointType = "pickup"
	WaypointDropoff WaypointType = "dropoff"
)

// Waypoint is a stop on a generated route
type Waypoint struct {
	CompanyID string       `json:"companyId"`
	Name      string       `json:"name"`
	Type      WaypointType `json:"type"`
	Order     int          `json:"order"`
}

// LoadingPlanItem is one matched consignment placed on the truck.
// Items with a higher DropOffOrder are unloaded later and therefore loaded first.
type LoadingPlanItem struct {
	Name         string  `json:"name"`
	Volume       float64 `json:"volume"`
	Destination  string  `json:"destination"`
	Origin       string  `json:"origin"`
	DropOffOrder int     `json:"dropOffOrder"`
	LoadPosition int     `json:"loadPosition"`
	WidthPercent float64 `json:"widthPercent"`
	MatchID      string  `json:"matchId"`
	DemandID     string  `json:"demandId"`
	StockID      string  `json:"stockId"`
}

// Stop groups the consignments collected or delivered at one company
type Stop struct {
	CompanyID string       `json:"companyId"`
	Name      string       `json:"name"`
	Address   string       `json:"address,omitempty"`
	Type      WaypointType `json:"type"`
	MatchIDs  []string     `json:"matchIds"`
}

// LoadingPlan is the ordered allocation of matched items into one vehicle
type LoadingPlan struct {
	PlanDetails               string            `json:"planDetails"`
	Items                     []LoadingPlanItem `json:"items"`
	Pickups                   []Stop            `json:"pickups"`
	Dropoffs                  []Stop            `json:"dropoffs"`
	Capacity                  float64           `json:"capacity"`
	TotalVolume               float64           `json:"totalVolume"`
	CapacityUsed              float64           `json:"capacityUsed"`
	Waypoints                 []Waypoint        `json:"waypoints"`
	OptimizedRouteDescription string            `json:"optimizedRouteDescription,omitempty"`
	Diagnostics               []string          `json:"diagnostics,omitempty"`
}

// TotalWidthPercent sums the width allocated to all items
func (p *LoadingPlan) TotalWidthPercent() float64 {
	var total float64
	for _, item := range p.Items {
		total += item.WidthPercent
	}
	return total
}
