package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {
			"sessionId": "sess_1",
			"paymentIntentId": "pi_1",
			"metadata": {"orderId": "o1", "userId": "u1"},
			"shippingAddress": {"city": "Riga", "country": "LV"}
		}
	}`)

	ev, err := ParseEvent(payload)
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, ev.Outcome)
	require.Equal(t, "o1", ev.OrderID)
	require.Equal(t, "u1", ev.UserID)
	require.Equal(t, "sess_1", ev.SessionID)
	require.Equal(t, "pi_1", ev.PaymentIntentID)
	require.NotNil(t, ev.ShippingAddress)
	require.Equal(t, "Riga", ev.ShippingAddress.City)
}

func TestParseEventOutcomes(t *testing.T) {
	cases := map[string]Outcome{
		"checkout.session.completed": OutcomeCompleted,
		"checkout.session.expired":   OutcomeExpired,
		"payment.failed":             OutcomeFailed,
		"customer.updated":           OutcomeUnknown,
	}
	for eventType, want := range cases {
		ev, err := ParseEvent([]byte(`{"id":"evt_1","type":"` + eventType + `"}`))
		require.NoError(t, err)
		require.Equal(t, want, ev.Outcome, eventType)
	}
}

func TestParseEventRejectsMissingFields(t *testing.T) {
	_, err := ParseEvent([]byte(`{"type":"payment.failed"}`))
	require.Error(t, err)

	_, err = ParseEvent([]byte(`not json`))
	require.Error(t, err)
}
