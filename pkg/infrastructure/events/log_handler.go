package events

import "go.uber.org/zap"

// MarketEventTypes lists every event the marketplace services publish
var MarketEventTypes = []string{
	DemandSubmittedEvent,
	DemandStatusChangedEvent,
	StockUploadedEvent,
	StockStatusChangedEvent,
	MatchConfirmedEvent,
	MatchBilledEvent,
	LoadingPlanGeneratedEvent,
}

// LogHandler writes every event it receives to a zap logger
type LogHandler struct {
	logger *zap.Logger
}

func NewLogHandler(logger *zap.Logger) *LogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHandler{logger: logger}
}

// Verify interface compliance
var _ EventHandler = (*LogHandler)(nil)

func (h *LogHandler) Handle(event Event) error {
	h.logger.Info("event",
		zap.String("type", event.Type()),
		zap.String("stream", event.StreamID()),
		zap.Int("version", event.Version()),
		zap.Any("data", event.Data()))
	return nil
}

func (h *LogHandler) CanHandle(eventType string) bool {
	return true
}
