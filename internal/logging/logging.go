package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/proxipy/internal/config"
	"github.com/sirupsen/logrus"
)

// New builds a logger from cfg. A nil out writes to stderr.
func New(cfg config.LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "02/01 03:04:05",
		})
	}

	return logger, nil
}

// Dispatcher runs log calls on a single background worker so callers never
// wait on the sink. Calls run in submission order.
type Dispatcher struct {
	queue chan func()
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(queueSize int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for fn := range d.queue {
		fn()
	}
}

// Submit hands fn to the worker and returns a channel closed once fn has
// run. When the queue is full or the dispatcher is closed, fn runs on the
// calling goroutine instead of being dropped.
func (d *Dispatcher) Submit(fn func()) <-chan struct{} {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		task()
		return done
	}

	select {
	case d.queue <- task:
	default:
		task()
	}
	return done
}

// Close stops accepting work and waits for queued calls to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}
