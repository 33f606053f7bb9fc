package events

import (
	"github.com/vsinha/timber/pkg/domain/entities"
)

const (
	DemandSubmittedEvent     = "demand.submitted"
	DemandStatusChangedEvent = "demand.status_changed"

	StockUploadedEvent      = "stock.uploaded"
	StockStatusChangedEvent = "stock.status_changed"

	MatchConfirmedEvent = "match.confirmed"
	MatchBilledEvent    = "match.billed"

	LoadingPlanGeneratedEvent = "loading_plan.generated"
)

type DemandSubmitted struct {
	Demand entities.DemandRecord `json:"demand"`
}

type DemandStatusChanged struct {
	DemandID string                `json:"demand_id"`
	From     entities.DemandStatus `json:"from"`
	To       entities.DemandStatus `json:"to"`
}

type StockUploaded struct {
	Stock entities.StockRecord `json:"stock"`
}

type StockStatusChanged struct {
	StockID string               `json:"stock_id"`
	From    entities.StockStatus `json:"from"`
	To      entities.StockStatus `json:"to"`
}

type MatchConfirmed struct {
	Match entities.ConfirmedMatch `json:"match"`
}

type MatchBilled struct {
	MatchID string `json:"match_id"`
}

type LoadingPlanGenerated struct {
	MatchIDs     []string `json:"match_ids"`
	TotalVolume  float64  `json:"total_volume"`
	CapacityUsed float64  `json:"capacity_used"`
}

func NewDemandStatusChanged(demandID string, from, to entities.DemandStatus) Event {
	return NewEvent(DemandStatusChangedEvent, "demand-"+demandID, DemandStatusChanged{
		DemandID: demandID,
		From:     from,
		To:       to,
	})
}

func NewStockStatusChanged(stockID string, from, to entities.StockStatus) Event {
	return NewEvent(StockStatusChangedEvent, "stock-"+stockID, StockStatusChanged{
		StockID: stockID,
		From:    from,
		To:      to,
	})
}

func NewMatchConfirmed(match *entities.ConfirmedMatch) Event {
	return NewEvent(MatchConfirmedEvent, "match-"+match.ID, MatchConfirmed{Match: *match.Clone()})
}

func NewDemandSubmitted(demand *entities.DemandRecord) Event {
	return NewEvent(DemandSubmittedEvent, "demand-"+demand.ID, DemandSubmitted{Demand: *demand.Clone()})
}

func NewStockUploaded(stock *entities.StockRecord) Event {
	return NewEvent(StockUploadedEvent, "stock-"+stock.ID, StockUploaded{Stock: *stock.Clone()})
}

func NewMatchBilled(matchID string) Event {
	return NewEvent(MatchBilledEvent, "match-"+matchID, MatchBilled{MatchID: matchID})
}

func NewLoadingPlanGenerated(plan *entities.LoadingPlan) Event {
	matchIDs := make([]string, 0, len(plan.Items))
	for _, item := range plan.Items {
		matchIDs = append(matchIDs, item.MatchID)
	}
	return NewEvent(LoadingPlanGeneratedEvent, "loading-plan", LoadingPlanGenerated{
		MatchIDs:     matchIDs,
		TotalVolume:  plan.TotalVolume,
		CapacityUsed: plan.CapacityUsed,
	})
}
