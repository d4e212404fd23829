// Package gateway talks to the hosted payment provider: it creates checkout
// sessions and verifies the signed asynchronous events the provider posts
// back to the webhook endpoint.
package gateway

import "context"

// SessionLine is one itemized amount on the hosted payment page. Amounts are
// passed per line, not as a lump sum, so the provider's display is itemized.
type SessionLine struct {
	Name            string `json:"name"`
	UnitAmountCents int64  `json:"unitAmountCents"`
	Quantity        int    `json:"quantity"`
}

type CreateSessionInput struct {
	Lines      []SessionLine     `json:"lines"`
	Currency   string            `json:"currency"`
	SuccessURL string            `json:"successUrl"`
	CancelURL  string            `json:"cancelUrl"`
	// Metadata is echoed back on webhook events so the reconciler can
	// recover the order without a separate lookup table.
	Metadata map[string]string `json:"metadata"`
}

type Session struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirectUrl"`
}

type Client interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error)
}
