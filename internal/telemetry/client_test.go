package telemetry_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetch(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDocument))
	}))
	defer srv.Close()

	c, err := telemetry.NewClient(srv.URL)
	require.NoError(t, err)

	s, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s.GeneratedKw, 1e-9)
	assert.Equal(t, "solartag/1", gotUA)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClientFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := telemetry.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrFetch, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "429")
}

func TestClientFetchDataError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"consumed": 1}`))
	}))
	defer srv.Close()

	c, err := telemetry.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrData, errors.CodeOf(err))
}

func TestClientFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := telemetry.NewClient(srv.URL, telemetry.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrFetch, errors.CodeOf(err))
}

func TestNewClientValidation(t *testing.T) {
	for _, endpoint := range []string{"", "ftp://example.com/x", "http://", "://bad"} {
		_, err := telemetry.NewClient(endpoint)
		require.Error(t, err, endpoint)
		assert.Equal(t, errors.ErrInvalidConfig, errors.CodeOf(err), endpoint)
	}

	_, err := telemetry.NewClient("https://example.com/solar.json", telemetry.WithTimeout(0))
	require.Error(t, err)
}

func TestCheckLink(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c, err := telemetry.NewClient(srv.URL)
	require.NoError(t, err)
	require.NoError(t, c.CheckLink(context.Background()))
}

func TestCheckLinkDown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c, err := telemetry.NewClient("http://"+addr+"/solar.json", telemetry.WithLinkTimeout(time.Second))
	require.NoError(t, err)

	err = c.CheckLink(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrLink, errors.CodeOf(err))
}
