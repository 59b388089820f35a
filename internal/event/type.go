package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	QuoteEventsQueue string = "quote_events"
	ClaimEventsQueue string = "claim_events"
)

const (
	QuoteEventGenerated = "QUOTES_GENERATED"
	QuoteEventAccepted  = "QUOTE_ACCEPTED"
)

// QuoteEvent is consumed by the notification service (to email the customer)
// and by the payment service (keyed off QUOTE_ACCEPTED).
type QuoteEvent struct {
	EventType     string     `json:"event_type"`
	ApplicationID uuid.UUID  `json:"application_id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	QuoteID       *uuid.UUID `json:"quote_id,omitempty"`
	QuoteNumber   string     `json:"quote_number,omitempty"`
	TotalQuotes   int        `json:"total_quotes,omitempty"`
	TotalPremium  *float64   `json:"total_premium,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// ClaimEvent is emitted on every claim status change. The disbursement
// consumer acts on new_status == SETTLED.
type ClaimEvent struct {
	EventType   string    `json:"event_type"`
	ClaimID     uuid.UUID `json:"claim_id"`
	ClaimNumber string    `json:"claim_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	ChangedBy   string    `json:"changed_by"`
	Reason      string    `json:"reason,omitempty"`
	Amount      *float64  `json:"amount,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
