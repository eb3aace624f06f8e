package provider

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/proxipy/internal/config"
	"github.com/proxipy/internal/filter"
	"github.com/proxipy/internal/providertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordRegex = regexp.MustCompile(`^http://(\d{1,3}\.){3}\d{1,3}:\d{1,5}$`)

func newFetcher(t *testing.T, endpoint string) *Fetcher {
	t.Helper()
	cfg := config.Default().Provider
	cfg.Endpoint = endpoint
	cfg.ConnectTimeoutMs = 500
	cfg.ReadTimeoutMs = 300
	p, err := NewFetcher(cfg)
	require.NoError(t, err)
	return p
}

func mustFilter(t *testing.T, opts filter.Options) filter.Filter {
	t.Helper()
	f, err := filter.Validate(opts)
	require.NoError(t, err)
	return f
}

func TestClassifyPreservesOrder(t *testing.T) {
	records, err := Classify(http.StatusOK, "1.2.3.4:8080 5.6.7.8:3128", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://1.2.3.4:8080", "http://5.6.7.8:3128"}, records)

	for _, r := range records {
		assert.Regexp(t, recordRegex, r)
	}
}

func TestClassifySplitsOnAnyWhitespace(t *testing.T) {
	records, err := Classify(http.StatusOK, "\n10.0.0.1:80\r\n10.0.0.2:81\t10.0.0.3:82\n", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://10.0.0.1:80", "http://10.0.0.2:81", "http://10.0.0.3:82"}, records)
}

func TestClassifyMarkers(t *testing.T) {
	_, err := Classify(http.StatusOK, "No proxy", 1)
	assert.ErrorIs(t, err, ErrNoProxyFound)

	_, err = Classify(http.StatusOK, "No proxy\n", 1)
	assert.ErrorIs(t, err, ErrNoProxyFound)

	_, err = Classify(http.StatusOK, "You reached the limit, see #premium for more", 1)
	assert.ErrorIs(t, err, ErrTemporaryBlocked)

	// The blocked marker wins over a non-200 status.
	_, err = Classify(http.StatusTooManyRequests, "#premium", 1)
	assert.ErrorIs(t, err, ErrTemporaryBlocked)
}

func TestClassifyFailures(t *testing.T) {
	_, err := Classify(http.StatusOK, "", 1)
	assert.ErrorIs(t, err, ErrNoProxyFound)

	_, err = Classify(http.StatusOK, "1.2.3.4:8080", 2)
	assert.ErrorIs(t, err, ErrNoProxyFound)

	_, err = Classify(http.StatusOK, "<html>down</html>", 1)
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	_, err = Classify(http.StatusBadGateway, "1.2.3.4:8080", 1)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestClassifyTruncatesToLimit(t *testing.T) {
	records, err := Classify(http.StatusOK, "1.1.1.1:1 2.2.2.2:2 3.3.3.3:3", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://1.1.1.1:1", "http://2.2.2.2:2"}, records)
}

func TestFetchSendsQuery(t *testing.T) {
	srv := providertest.New("1.2.3.4:8080")
	defer srv.Close()

	p := newFetcher(t, srv.Endpoint())
	port := 8080
	records, err := p.Fetch(context.Background(), mustFilter(t, filter.Options{Country: "us", Port: &port}))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://1.2.3.4:8080"}, records)

	queries := srv.Queries()
	require.Len(t, queries, 1)
	q := queries[0]
	assert.Equal(t, "http", q.Get("type"))
	assert.Equal(t, "true", q.Get("https"))
	assert.Equal(t, "60", q.Get("last_check"))
	assert.Equal(t, "1", q.Get("limit"))
	assert.Equal(t, "US", q.Get("country"))
	assert.Equal(t, "8080", q.Get("port"))
	assert.Equal(t, "txt", q.Get("format"))
}

func TestFetchNoProxy(t *testing.T) {
	srv := providertest.New("No proxy")
	defer srv.Close()

	_, err := newFetcher(t, srv.Endpoint()).Fetch(context.Background(), mustFilter(t, filter.Options{}))
	assert.ErrorIs(t, err, ErrNoProxyFound)
}

func TestFetchConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = newFetcher(t, "http://"+addr+providertest.Path).Fetch(context.Background(), mustFilter(t, filter.Options{}))
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestFetchReadTimeout(t *testing.T) {
	srv := providertest.New("1.2.3.4:8080")
	defer srv.Close()
	srv.SetDelay(2 * time.Second)

	start := time.Now()
	_, err := newFetcher(t, srv.Endpoint()).Fetch(context.Background(), mustFilter(t, filter.Options{}))
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetchCancelled(t *testing.T) {
	srv := providertest.New("1.2.3.4:8080")
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newFetcher(t, srv.Endpoint()).Fetch(ctx, mustFilter(t, filter.Options{}))
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchRequestBuildFailure(t *testing.T) {
	srv := providertest.New("1.2.3.4:8080")
	defer srv.Close()

	var ctx context.Context // nil context makes request construction fail
	_, err := newFetcher(t, srv.Endpoint()).Fetch(ctx, mustFilter(t, filter.Options{}))
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Zero(t, srv.Requests())
}
