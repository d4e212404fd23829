package gateway

import (
	"encoding/json"
	"fmt"

	"storefront/internal/domain"
)

// Outcome is the closed set of payment results this system handles. Routing
// happens over this enum, not over raw type strings, so an unhandled outcome
// is an explicit OutcomeUnknown rather than a silent default branch.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeCompleted
	OutcomeExpired
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeExpired:
		return "expired"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	eventSessionCompleted = "checkout.session.completed"
	eventSessionExpired   = "checkout.session.expired"
	eventPaymentFailed    = "payment.failed"
)

// Event is a verified, parsed payment notification. EventID is the
// provider's idempotency key; the same event may be delivered more than once.
type Event struct {
	EventID         string
	Type            string
	Outcome         Outcome
	SessionID       string
	PaymentIntentID string
	OrderID         string
	UserID          string
	ShippingAddress *domain.Address
}

type wireEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SessionID       string            `json:"sessionId"`
		PaymentIntentID string            `json:"paymentIntentId"`
		Metadata        map[string]string `json:"metadata"`
		ShippingAddress *domain.Address   `json:"shippingAddress"`
	} `json:"data"`
}

// ParseEvent decodes a raw webhook payload. The payload must already have
// passed signature verification.
func ParseEvent(payload []byte) (*Event, error) {
	var we wireEvent
	if err := json.Unmarshal(payload, &we); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if we.ID == "" || we.Type == "" {
		return nil, fmt.Errorf("event missing id or type")
	}

	ev := &Event{
		EventID:         we.ID,
		Type:            we.Type,
		Outcome:         outcomeFromType(we.Type),
		SessionID:       we.Data.SessionID,
		PaymentIntentID: we.Data.PaymentIntentID,
		OrderID:         we.Data.Metadata["orderId"],
		UserID:          we.Data.Metadata["userId"],
		ShippingAddress: we.Data.ShippingAddress,
	}
	return ev, nil
}

func outcomeFromType(t string) Outcome {
	switch t {
	case eventSessionCompleted:
		return OutcomeCompleted
	case eventSessionExpired:
		return OutcomeExpired
	case eventPaymentFailed:
		return OutcomeFailed
	default:
		return OutcomeUnknown
	}
}
