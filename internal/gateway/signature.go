package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
)

// SignatureTolerance bounds how old a signed timestamp may be before the
// payload is rejected as a possible replay.
const SignatureTolerance = 5 * time.Minute

// Sign produces a signature header for a payload: "t=<unix>,v1=<hex>",
// where v1 is HMAC-SHA256 over "<unix>.<payload>". Used by tests and the
// local gateway simulator.
func Sign(secret string, payload []byte, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", ts, computeHMAC(secret, ts, payload))
}

// VerifySignature checks the header against the raw payload. Every event
// must pass here before any state is read or written; failures surface as
// domain.ErrBadSignature and the event never reaches the state machine.
func VerifySignature(secret string, payload []byte, header string, now time.Time) error {
	ts, sig, err := parseHeader(header)
	if err != nil {
		return err
	}

	at, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", domain.ErrBadSignature)
	}
	age := now.Sub(time.Unix(at, 0))
	if age > SignatureTolerance || age < -SignatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrBadSignature)
	}

	expected := computeHMAC(secret, ts, payload)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return domain.ErrBadSignature
	}
	return nil
}

func parseHeader(header string) (ts, sig string, err error) {
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sig = v
		}
	}
	if ts == "" || sig == "" {
		return "", "", fmt.Errorf("%w: malformed header", domain.ErrBadSignature)
	}
	return ts, sig, nil
}

func computeHMAC(secret, ts string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
