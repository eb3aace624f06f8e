// Package providertest runs an in-process stand-in for the pubproxy.com API.
package providertest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const Path = "/api/proxy"

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	status  int
	body    string
	delay   time.Duration
	queries []url.Values
}

// New starts a fake provider answering every request with body.
func New(body string) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{status: http.StatusOK, body: body}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET(Path, s.handleProxy)

	s.Server = httptest.NewServer(router)
	return s
}

// Endpoint is the URL clients should be configured with.
func (s *Server) Endpoint() string {
	return s.URL + Path
}

func (s *Server) SetResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// SetDelay makes the handler wait before writing the response headers.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Queries returns the query strings received so far.
func (s *Server) Queries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.queries))
	copy(out, s.queries)
	return out
}

func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *Server) handleProxy(c *gin.Context) {
	s.mu.Lock()
	s.queries = append(s.queries, c.Request.URL.Query())
	status, body, delay := s.status, s.body, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			return
		}
	}

	c.String(status, body)
}
