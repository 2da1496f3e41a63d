package httpclient

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpClientDo(t *testing.T) {
	var got *http.Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewHttpClient(Config{Timeout: time.Second})

	resp, err := client.Do(t.Context(), &Request{
		Method:  http.MethodGet,
		URL:     srv.URL + "/datasets/1/access?x=1",
		Query:   url.Values{"identity": []string{"alice"}},
		Headers: http.Header{"Authorization": []string{"leaked"}, "X-Custom": []string{"v"}},
		Auth:    &AuthConfig{Type: AuthTypeBearer, APIKey: "secret"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))

	require.NotNil(t, got)
	assert.Equal(t, "/datasets/1/access", got.URL.Path)
	assert.Equal(t, "1", got.URL.Query().Get("x"))
	assert.Equal(t, "alice", got.URL.Query().Get("identity"))
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	assert.Equal(t, "v", got.Header.Get("X-Custom"))
	assert.Equal(t, defaultUserAgent, got.Header.Get("User-Agent"))
}

func TestHttpClientDoErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHttpClient(Config{}).Do(t.Context(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.True(t, IsNotFoundErr(err))

	var httpErr *Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, string(httpErr.Body), "nope")
}

func TestHttpClientDoTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewHttpClient(Config{Timeout: 20 * time.Millisecond}).Do(t.Context(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
}

func TestApplyAuth(t *testing.T) {
	tests := []struct {
		name    string
		auth    AuthConfig
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", auth: AuthConfig{Type: AuthTypeBearer, APIKey: "k"}, header: "Authorization", want: "Bearer k"},
		{name: "api key", auth: AuthConfig{Type: AuthTypeAPIKey, APIKey: "k", HeaderKey: "X-Oracle-Key"}, header: "X-Oracle-Key", want: "k"},
		{name: "bearer without key", auth: AuthConfig{Type: AuthTypeBearer}, wantErr: true},
		{name: "api key without header", auth: AuthConfig{Type: AuthTypeAPIKey, APIKey: "k"}, wantErr: true},
		{name: "unknown", auth: AuthConfig{Type: "basic"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}

			err := applyAuth(h, &tt.auth)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Get(tt.header))
		})
	}
}
