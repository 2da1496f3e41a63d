package httpclient

import (
	"net/http"
	"net/url"
)

const (
	AuthTypeBearer = "bearer"
	AuthTypeAPIKey = "api_key"
)

type Request struct {
	Method  string
	URL     string
	Query   url.Values
	Headers http.Header
	Body    []byte
	Auth    *AuthConfig
}

type AuthConfig struct {
	// Type is bearer or api_key.
	Type      string `json:"type"`
	APIKey    string `json:"api_key,omitempty"`
	HeaderKey string `json:"header_key,omitempty"`
}

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Request    *Request
}
