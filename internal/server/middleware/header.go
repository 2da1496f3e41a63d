package middleware

import (
	"errors"
	"net/http"
	"strings"
)

// CredentialConfig selects where a credential is read from.
type CredentialConfig struct {
	// Headers are checked in order.
	Headers []string
	// RequireBearer applies to the Authorization header only.
	RequireBearer bool
}

var (
	ErrCredentialMissing = errors.New("credential not found in any of the supported headers")
	ErrBearerRequired    = errors.New("Authorization header must start with 'Bearer '")
	ErrCredentialEmpty   = errors.New("credential is empty")
)

var bearerConfig = &CredentialConfig{
	Headers:       []string{"Authorization"},
	RequireBearer: true,
}

var analyticsTokenConfig = &CredentialConfig{
	Headers: []string{"X-Analytics-Token", "X-Dv-Token"},
}

// ExtractCredential returns the first non-empty credential among the configured headers.
func ExtractCredential(r *http.Request, config *CredentialConfig) (string, error) {
	var lastError error

	for _, headerName := range config.Headers {
		headerValue := r.Header.Get(headerName)
		if headerValue == "" {
			continue
		}

		value := headerValue

		if strings.EqualFold(headerName, "authorization") && config.RequireBearer {
			if !strings.HasPrefix(headerValue, "Bearer ") {
				lastError = ErrBearerRequired
				continue
			}

			value = strings.TrimPrefix(headerValue, "Bearer ")
		}

		if strings.TrimSpace(value) == "" {
			lastError = ErrCredentialEmpty
			continue
		}

		return strings.TrimSpace(value), nil
	}

	if lastError != nil {
		return "", lastError
	}

	return "", ErrCredentialMissing
}
