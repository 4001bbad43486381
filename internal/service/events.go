package service

// EventPublisher pushes domain events (deal moved, lead converted) to
// connected realtime clients. Implementations must not block the caller.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// Realtime event names.
const (
	EventDealMoved     = "deal.moved"
	EventLeadConverted = "lead.converted"
)
