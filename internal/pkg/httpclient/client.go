package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/looplj/datavault/internal/log"
)

const defaultUserAgent = "datavault/1.0"

type Config struct {
	Timeout   time.Duration `conf:"timeout" yaml:"timeout" json:"timeout"`
	UserAgent string        `conf:"user_agent" yaml:"user_agent" json:"user_agent"`
}

// HttpClient sends JSON requests and turns non-2xx/3xx replies into *Error.
type HttpClient struct {
	client    *http.Client
	userAgent string
}

// NewHttpClient creates a client with pooled keep-alive connections.
func NewHttpClient(cfg Config) *HttpClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HttpClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
	}
}

// NewHttpClientWithClient wraps an existing http.Client, mostly for tests.
func NewHttpClientWithClient(client *http.Client) *HttpClient {
	return &HttpClient{
		client: client,
	}
}

// Do executes the request and reads the full response body.
func (hc *HttpClient) Do(ctx context.Context, request *Request) (*Response, error) {
	rawReq, err := hc.buildHttpRequest(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}

	started := time.Now()

	rawResp, err := hc.client.Do(rawReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	defer func() {
		err := rawResp.Body.Close()
		if err != nil {
			log.Warn(ctx, "failed to close HTTP response body", log.Cause(err))
		}
	}()

	body, err := io.ReadAll(rawResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if log.DebugEnabled(ctx) {
		log.Debug(ctx, "HTTP request done",
			log.String("method", rawReq.Method),
			log.String("url", rawReq.URL.Redacted()),
			log.Int("status_code", rawResp.StatusCode),
			log.Duration("elapsed", time.Since(started)),
			log.String("body", string(body)))
	}

	if rawResp.StatusCode >= 400 {
		return nil, &Error{
			Method:     rawReq.Method,
			URL:        rawReq.URL.Redacted(),
			StatusCode: rawResp.StatusCode,
			Status:     rawResp.Status,
			Body:       body,
		}
	}

	return &Response{
		StatusCode: rawResp.StatusCode,
		Headers:    rawResp.Header,
		Body:       body,
		Request:    request,
	}, nil
}

func (hc *HttpClient) buildHttpRequest(ctx context.Context, request *Request) (*http.Request, error) {
	var body io.Reader
	if len(request.Body) > 0 {
		body = bytes.NewReader(request.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, request.Method, request.URL, body)
	if err != nil {
		return nil, err
	}

	httpReq.Header = request.Headers.Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}

	for k := range BlockedHeaders {
		httpReq.Header.Del(k)
	}

	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", hc.agent())
	}

	httpReq.Header.Set("Accept", "application/json")

	if len(request.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if request.Auth != nil {
		if err := applyAuth(httpReq.Header, request.Auth); err != nil {
			return nil, fmt.Errorf("failed to apply authentication: %w", err)
		}
	}

	if len(request.Query) > 0 {
		if httpReq.URL.RawQuery != "" {
			httpReq.URL.RawQuery += "&"
		}

		httpReq.URL.RawQuery += request.Query.Encode()
	}

	return httpReq, nil
}

func (hc *HttpClient) agent() string {
	if hc.userAgent != "" {
		return hc.userAgent
	}

	return defaultUserAgent
}

func applyAuth(headers http.Header, auth *AuthConfig) error {
	switch auth.Type {
	case AuthTypeBearer:
		if auth.APIKey == "" {
			return fmt.Errorf("bearer token is required")
		}

		headers.Set("Authorization", "Bearer "+auth.APIKey)
	case AuthTypeAPIKey:
		if auth.HeaderKey == "" {
			return fmt.Errorf("header key is required")
		}

		headers.Set(auth.HeaderKey, auth.APIKey)
	default:
		return fmt.Errorf("unsupported auth type: %s", auth.Type)
	}

	return nil
}
