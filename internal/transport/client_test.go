package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/errors"
)

func TestNew_Defaults(t *testing.T) {
	c := New("")
	assert.Equal(t, constants.ArchiveURL, c.BaseURL())
	assert.Equal(t, DefaultHTTPTimeout, c.http.Timeout)
	assert.Equal(t, constants.UserAgent, c.userAgent)

	c = New("http://example.test/api", WithTimeout(3*time.Second), WithUserAgent("test-agent"))
	assert.Equal(t, 3*time.Second, c.http.Timeout)
	assert.Equal(t, "test-agent", c.userAgent)
}

func TestTableURL(t *testing.T) {
	c := New(constants.ArchiveURL)
	got, err := c.TableURL(constants.StellarTable)
	require.NoError(t, err)
	assert.Equal(t, constants.ArchiveURL+"?select=%2A&table=q1_q17_dr24_stellar", got)

	c = New("http://example.test/api?format=csv")
	got, err = c.TableURL("cumulative")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/api?format=csv&select=%2A&table=cumulative", got)

	_, err = New("://bad").TableURL("cumulative")
	assert.Error(t, err)
}

func TestFetchTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "cumulative", r.URL.Query().Get("table"))
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, constants.UserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("kepid,kepoi_name\n1,K00001.01\n"))
	}))
	defer server.Close()

	body, err := New(server.URL).FetchTable(context.Background(), "cumulative")
	require.NoError(t, err)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "kepid,kepoi_name\n1,K00001.01\n", string(data))
}

func TestFetchTable_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", unavailable: true},
		{name: "bad gateway", status: http.StatusBadGateway, unavailable: true},
		{name: "bad request", status: http.StatusBadRequest, body: "ERROR<br>no such table"},
		{name: "not found", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(server.URL).FetchTable(context.Background(), "nope")
			require.Error(t, err)

			var apiErr *errors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.unavailable, errors.Is(err, errors.ErrArchiveUnavailable))
			if tt.body != "" {
				assert.Equal(t, tt.body, apiErr.Message)
			}
		})
	}
}

func TestFetchTable_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url).FetchTable(context.Background(), "cumulative")
	require.Error(t, err)
	var apiErr *errors.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.StatusCode)
}

func TestFetchTable_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(server.URL).FetchTable(ctx, "cumulative")
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
}
