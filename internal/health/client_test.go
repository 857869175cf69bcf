package health

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/noteshq/notesctl/internal/apperrors"
	"github.com/noteshq/notesctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	baseURL, err := url.Parse(serverURL)
	require.NoError(t, err)
	client, err := NewClient(WithAPIConfig(config.APIConfig{BaseURL: baseURL}))
	require.NoError(t, err)
	return client
}

func TestStatus(t *testing.T) {
	var gotQuery string
	var gotAuthorization string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuthorization = r.Header.Get("Authorization")
		if r.URL.Query().Get("checks") == "1" {
			fmt.Fprint(w, `{"status":"ok","db":"ok","hostname":"api-1","app":"notes"}`)
			return
		}
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()
	ctx := context.Background()
	client := newTestClient(t, srv.URL)

	status, err := client.Status(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
	assert.Empty(t, gotAuthorization)
	assert.True(t, status.OK())
	assert.Empty(t, status.DB)

	status, err = client.Status(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "checks=1", gotQuery)
	assert.Equal(t, "ok", status.DB)
	assert.Equal(t, "api-1", status.Hostname)
}

func TestStatusServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	_, err := client.Status(context.Background(), false)
	requestErr := &apperrors.RequestError{}
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, http.StatusServiceUnavailable, requestErr.Status)
}

func TestStatusNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := newTestClient(t, srv.URL)

	_, err := client.Status(context.Background(), false)
	networkErr := &apperrors.NetworkError{}
	require.ErrorAs(t, err, &networkErr)
}
