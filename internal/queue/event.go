// Package queue defines message payloads exchanged over the message
// broker, plus the background consumer. Events reference entities by
// their external public ids only.
package queue

// OfferCreatedEvent is published after a ticket offer is committed. It
// carries enough for downstream consumers to log or trigger analytics
// without querying the primary database.
type OfferCreatedEvent struct {
	OfferID     string `json:"offer_id"`
	ShowID      string `json:"show_id"`
	TenantID    uint64 `json:"tenant_id,omitempty"` // zero when created under admin scope
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	TicketCount int64  `json:"ticket_count"`
	CreatedAt   string `json:"created_at"`
}

// OfferUpdatedEvent is published after an offer edit is committed.
type OfferUpdatedEvent struct {
	OfferID     string `json:"offer_id"`
	ShowID      string `json:"show_id"`
	TenantID    uint64 `json:"tenant_id,omitempty"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	TicketCount int64  `json:"ticket_count"`
	UpdatedAt   string `json:"updated_at"`
}
