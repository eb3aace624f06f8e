// Package proxipy fetches free proxies from pubproxy.com.
//
//	res, err := proxipy.Get(ctx, proxipy.WithCountry("US"), proxipy.WithPort(8080))
//	if err != nil {
//		return err
//	}
//	client := &http.Client{Transport: &http.Transport{Proxy: res.First().ProxyFunc()}}
package proxipy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/proxipy/internal/config"
	"github.com/proxipy/internal/filter"
	"github.com/proxipy/internal/logging"
	"github.com/proxipy/internal/metrics"
	"github.com/proxipy/internal/provider"
	log "github.com/sirupsen/logrus"
)

const (
	modeSync  = "sync"
	modeAsync = "async"
)

// Config configures a Client. See DefaultConfig and DecodeConfig.
type Config = config.Config

// DefaultConfig returns the stock configuration: the public pubproxy.com
// endpoint, a 5s connect and 6s read timeout, info level text logs.
func DefaultConfig() Config {
	return config.Default()
}

// DecodeConfig reads a JSON configuration, filling defaults for missing fields.
func DecodeConfig(r io.Reader) (Config, error) {
	return config.Decode(r)
}

// Client queries the provider. It is safe for concurrent use.
type Client struct {
	fetcher    *provider.Fetcher
	logger     log.FieldLogger
	metrics    *metrics.Collector
	dispatcher *logging.Dispatcher
}

// ClientOption customizes a Client built by New.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger     log.FieldLogger
	registerer prometheus.Registerer
}

// WithLogger routes log lines to logger instead of one built from the config.
func WithLogger(logger log.FieldLogger) ClientOption {
	return func(o *clientOptions) { o.logger = logger }
}

// WithRegisterer registers the client metrics with reg.
func WithRegisterer(reg prometheus.Registerer) ClientOption {
	return func(o *clientOptions) { o.registerer = reg }
}

// New builds a Client from cfg. Call Close when done with it.
func New(cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		logger, err := logging.New(cfg.Logging, nil)
		if err != nil {
			return nil, err
		}
		o.logger = logger
	}

	fetcher, err := provider.NewFetcher(cfg.Provider)
	if err != nil {
		return nil, err
	}

	return &Client{
		fetcher:    fetcher,
		logger:     o.logger,
		metrics:    metrics.NewCollector(cfg.Metrics.Namespace, o.registerer),
		dispatcher: logging.NewDispatcher(cfg.Logging.AsyncQueueSize),
	}, nil
}

// Get validates the filters, queries the provider once and blocks until the
// response is classified.
func (c *Client) Get(ctx context.Context, opts ...Option) (Result, error) {
	return c.fetch(ctx, modeSync, runInline, opts)
}

// Outcome is the single value delivered by GetAsync.
type Outcome struct {
	Result Result
	Err    error
}

// GetAsync returns immediately. The channel yields one Outcome and is then
// closed. Log lines are written by a background worker and are complete by
// the time the Outcome is sent. Cancel ctx to abandon the request.
func (c *Client) GetAsync(ctx context.Context, opts ...Option) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := c.fetch(ctx, modeAsync, c.dispatcher.Submit, opts)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

// Close waits for queued log lines to be written.
func (c *Client) Close() {
	c.dispatcher.Close()
}

// emitFunc runs or schedules one log call and returns a channel closed once
// the call has been written.
type emitFunc func(func()) <-chan struct{}

func runInline(fn func()) <-chan struct{} {
	fn()
	done := make(chan struct{})
	close(done)
	return done
}

func (c *Client) fetch(ctx context.Context, mode string, submit emitFunc, opts []Option) (Result, error) {
	var pending []<-chan struct{}
	emit := func(fn func()) {
		pending = append(pending, submit(fn))
	}
	// Log lines must be written before the outcome reaches the caller.
	defer func() {
		for _, done := range pending {
			<-done
		}
	}()

	var raw filter.Options
	for _, opt := range opts {
		opt(&raw)
	}

	f, err := filter.Validate(raw)
	if err != nil {
		c.metrics.RecordFetch(mode, metrics.ResultInvalid)
		return Result{}, err
	}

	params := f.Query().Encode()
	emit(func() {
		c.logger.Debugf("Making request to proxy service with params %s", params)
	})

	start := time.Now()
	records, err := c.fetcher.Fetch(ctx, f)
	c.metrics.RecordFetchDuration(mode, time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordFetch(mode, resultLabel(err))
		emit(func() {
			c.logger.WithField("params", params).Debugf("Proxy request failed: %v", err)
		})
		return Result{}, err
	}

	c.metrics.RecordFetch(mode, metrics.ResultOK)
	c.metrics.RecordProxiesReturned(f.Type, len(records))

	res := newResult(records, f.Limit, f.Type)
	emit(func() {
		if res.Single() {
			c.logger.Infof("Got proxy %s", records[0])
		} else {
			c.logger.Infof("Got proxy %v", records)
		}
	})

	return res, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrTemporaryBlocked):
		return metrics.ResultBlocked
	case errors.Is(err, ErrNoProxyFound):
		return metrics.ResultNoProxy
	default:
		return metrics.ResultUnavailable
	}
}

var (
	defaultOnce   sync.Once
	defaultClient *Client
	defaultErr    error
)

// Default returns the shared client used by the package level functions.
func Default() (*Client, error) {
	defaultOnce.Do(func() {
		defaultClient, defaultErr = New(DefaultConfig())
	})
	return defaultClient, defaultErr
}

// Get fetches proxies with the shared default client.
func Get(ctx context.Context, opts ...Option) (Result, error) {
	c, err := Default()
	if err != nil {
		return Result{}, err
	}
	return c.Get(ctx, opts...)
}

// GetAsync is the non-blocking form of Get.
func GetAsync(ctx context.Context, opts ...Option) <-chan Outcome {
	c, err := Default()
	if err != nil {
		out := make(chan Outcome, 1)
		out <- Outcome{Err: err}
		close(out)
		return out
	}
	return c.GetAsync(ctx, opts...)
}
