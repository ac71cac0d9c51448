package http

import (
	"fmt"
	"regexp"

	"github.com/paykit-sdk/paykit"
)

// Intent ID prefixes
const (
	PaymentIntentPrefix = "pi"
	SetupIntentPrefix   = "seti"
)

// clientSecretRegex matches <prefix>_<id>_secret_<secret> and captures the
// intent ID and its prefix.
var clientSecretRegex = regexp.MustCompile(`^((pi|seti)_[A-Za-z0-9]+)_secret_[A-Za-z0-9]+$`)

// ParseClientSecret validates a client secret and extracts the intent ID.
// The secret must belong to an intent of the given prefix.
func ParseClientSecret(clientSecret, prefix string) (string, error) {
	if clientSecret == "" {
		return "", fmt.Errorf("%w: client secret is empty", paykit.ErrInvalidClientSecret)
	}

	match := clientSecretRegex.FindStringSubmatch(clientSecret)
	if match == nil {
		return "", fmt.Errorf("%w: malformed client secret", paykit.ErrInvalidClientSecret)
	}
	if match[2] != prefix {
		return "", fmt.Errorf("%w: expected a %s_ secret, got %s_", paykit.ErrInvalidClientSecret, prefix, match[2])
	}

	return match[1], nil
}
