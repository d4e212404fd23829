package cart

import (
	"encoding/json"
	"fmt"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

// CurrentVersion is the envelope schema version written on every save.
// Version 1 predates the per-line tier attribute.
const CurrentVersion = 2

type payloadV2 struct {
	Lines []domain.CartLine `json:"lines"`
}

type payloadV1 struct {
	Lines []struct {
		ProductID      string `json:"productId"`
		Name           string `json:"name"`
		UnitPriceCents int64  `json:"unitPriceCents"`
		Quantity       int    `json:"quantity"`
	} `json:"lines"`
}

// decodeEnvelope migrates a persisted envelope forward version by version
// and returns the current-schema lines. Unknown future versions fail rather
// than being guessed at.
func decodeEnvelope(env cartrepo.Envelope) ([]domain.CartLine, error) {
	payload := env.Payload
	version := env.Version

	if version == 1 {
		migrated, err := migrateV1toV2(payload)
		if err != nil {
			return nil, err
		}
		payload = migrated
		version = 2
	}

	if version != CurrentVersion {
		return nil, fmt.Errorf("unsupported cart envelope version %d", env.Version)
	}

	var p payloadV2
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode cart payload: %w", err)
	}
	return p.Lines, nil
}

func migrateV1toV2(payload []byte) ([]byte, error) {
	var old payloadV1
	if err := json.Unmarshal(payload, &old); err != nil {
		return nil, fmt.Errorf("decode v1 cart payload: %w", err)
	}
	next := payloadV2{Lines: make([]domain.CartLine, 0, len(old.Lines))}
	for _, l := range old.Lines {
		next.Lines = append(next.Lines, domain.CartLine{
			ProductID:      l.ProductID,
			Name:           l.Name,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
			Tier:           "standard",
		})
	}
	return json.Marshal(next)
}

func encodeEnvelope(lines []domain.CartLine) (cartrepo.Envelope, error) {
	payload, err := json.Marshal(payloadV2{Lines: lines})
	if err != nil {
		return cartrepo.Envelope{}, fmt.Errorf("encode cart payload: %w", err)
	}
	return cartrepo.Envelope{Version: CurrentVersion, Payload: payload}, nil
}
