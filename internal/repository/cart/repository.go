package cart

import (
	"context"
	"encoding/json"
)

// Envelope is the versioned persistence format for a cart. The payload schema
// may change between versions; the service layer migrates old envelopes
// forward on read instead of patching optional fields ad hoc.
type Envelope struct {
	Version int             `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

type Repository interface {
	Get(ctx context.Context, userID string) (*Envelope, error)
	Save(ctx context.Context, userID string, env Envelope) error
	Delete(ctx context.Context, userID string) error
}
