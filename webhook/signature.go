package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the request header carrying the event signature
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance is the maximum accepted age of a signed payload
const DefaultTolerance = 5 * time.Minute

const signatureScheme = "v1"

var (
	// ErrInvalidSignature is returned when no signature in the header matches
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrTimestampOutsideTolerance is returned for stale or future-dated payloads
	ErrTimestampOutsideTolerance = errors.New("webhook timestamp outside tolerance")
)

// ComputeSignature returns the hex HMAC-SHA256 of "<unix ts>.<payload>"
func ComputeSignature(timestamp time.Time, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignPayload builds a signature header value for payload
func SignPayload(timestamp time.Time, payload []byte, secret string) string {
	return fmt.Sprintf("t=%d,%s=%s", timestamp.Unix(), signatureScheme, ComputeSignature(timestamp, payload, secret))
}

// VerifySignature checks header against payload. Any v1 signature in the
// header may match; a tolerance of zero disables the timestamp check.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		age := now.Sub(timestamp)
		if age > tolerance || age < -tolerance {
			return fmt.Errorf("%w: signed %s ago", ErrTimestampOutsideTolerance, age.Round(time.Second))
		}
	}

	expected, _ := hex.DecodeString(ComputeSignature(timestamp, payload, secret))
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func parseSignatureHeader(header string) (time.Time, [][]byte, error) {
	if header == "" {
		return time.Time{}, nil, fmt.Errorf("%w: header is empty", ErrInvalidSignature)
	}

	var timestamp time.Time
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			secs, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return time.Time{}, nil, fmt.Errorf("%w: invalid timestamp", ErrInvalidSignature)
			}
			timestamp = time.Unix(secs, 0)
		case signatureScheme:
			sig, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp.IsZero() {
		return time.Time{}, nil, fmt.Errorf("%w: missing timestamp", ErrInvalidSignature)
	}
	if len(signatures) == 0 {
		return time.Time{}, nil, fmt.Errorf("%w: no %s signatures", ErrInvalidSignature, signatureScheme)
	}
	return timestamp, signatures, nil
}
