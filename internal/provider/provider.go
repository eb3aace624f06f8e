package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/proxipy/internal/config"
	"github.com/proxipy/internal/filter"
)

const (
	// BlockedMarker appears in the body when the free tier is rate limited.
	BlockedMarker = "#premium"
	// NoProxyBody is the whole body sent when nothing matches the filter.
	NoProxyBody = "No proxy"

	Scheme = "http://"
)

var (
	ErrServiceUnavailable = errors.New("cannot connect to proxy service")
	ErrTemporaryBlocked   = errors.New("proxy service temporarily blocked: too many requests")
	ErrNoProxyFound       = errors.New("no proxy matches the filters")
)

var tokenRegex = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}:\d{1,5}$`)

type Fetcher struct {
	endpoint  *url.URL
	userAgent string
	maxBody   int64
	client    *http.Client
}

func NewFetcher(cfg config.ProviderConfig) (*Fetcher, error) {
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout(),
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReadTimeout(),
		MaxIdleConns:          2,
		MaxIdleConnsPerHost:   1,
	}

	return &Fetcher{
		endpoint:  endpoint,
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.ConnectTimeout() + cfg.ReadTimeout(),
		},
	}, nil
}

// URL returns the full request URL for f.
func (p *Fetcher) URL(f filter.Filter) string {
	u := *p.endpoint
	u.RawQuery = f.Query().Encode()
	return u.String()
}

// Fetch performs one GET against the provider and returns the proxy records
// in the order the provider listed them.
func (p *Fetcher) Fetch(ctx context.Context, f filter.Filter) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(f), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrServiceUnavailable, err)
	}

	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrServiceUnavailable, err)
	}

	return Classify(resp.StatusCode, string(body), f.Limit)
}

// Classify interprets a provider response. On success it returns exactly
// limit records.
func Classify(status int, body string, limit int) ([]string, error) {
	if strings.Contains(body, BlockedMarker) {
		return nil, ErrTemporaryBlocked
	}

	trimmed := strings.TrimSpace(body)
	if trimmed == NoProxyBody {
		return nil, ErrNoProxyFound
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrServiceUnavailable, status)
	}

	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty response", ErrNoProxyFound)
	}

	records, err := parseRecords(trimmed)
	if err != nil {
		return nil, err
	}

	if len(records) < limit {
		return nil, fmt.Errorf("%w: got %d of %d proxies", ErrNoProxyFound, len(records), limit)
	}

	return records[:limit], nil
}

func parseRecords(body string) ([]string, error) {
	tokens := strings.Fields(body)
	records := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if !tokenRegex.MatchString(token) {
			return nil, fmt.Errorf("%w: unexpected token %q", ErrServiceUnavailable, token)
		}
		records = append(records, Scheme+token)
	}

	return records, nil
}
