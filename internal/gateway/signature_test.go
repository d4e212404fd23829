package gateway

import (
	"testing"
	"time"

	"storefront/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()

	header := Sign("secret", payload, now)
	require.NoError(t, VerifySignature("secret", payload, header, now))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	header := Sign("secret", payload, now)

	err := VerifySignature("secret", []byte(`{"id":"evt_2"}`), header, now)
	require.ErrorIs(t, err, domain.ErrBadSignature)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := Sign("secret", payload, now)

	require.ErrorIs(t, VerifySignature("other", payload, header, now), domain.ErrBadSignature)
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	signedAt := time.Now().Add(-SignatureTolerance - time.Minute)
	header := Sign("secret", payload, signedAt)

	require.ErrorIs(t, VerifySignature("secret", payload, header, time.Now()), domain.ErrBadSignature)
}

func TestVerifyRejectsMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "t=123", "v1=abc", "garbage"} {
		require.ErrorIs(t, VerifySignature("secret", []byte(`{}`), header, time.Now()), domain.ErrBadSignature, "header %q", header)
	}
}
