package httpclient

import (
	"net/http"
)

// IsHTTPStatusCodeRetryable reports whether a status is worth retrying: 429 and 5xx.
func IsHTTPStatusCodeRetryable(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}

	return statusCode >= 500
}

// BlockedHeaders are stripped from caller supplied headers; credentials go through AuthConfig.
var BlockedHeaders = map[string]bool{
	"Content-Length":    true,
	"Transfer-Encoding": true,
	"Accept-Encoding":   true,
	"Authorization":     true,
	"Api-Key":           true,
	"X-Api-Key":         true,
}
