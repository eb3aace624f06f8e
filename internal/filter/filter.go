package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultType      = "http"
	DefaultLastCheck = 60
	DefaultLimit     = 1

	MinLimit = 1
	MaxLimit = 20

	MinPort = 1
	MaxPort = 65535

	// Format asks the provider for a whitespace separated ip:port list.
	Format = "txt"
)

var (
	ErrInvalidConnectionType = errors.New("connection type must be http, socks4 or socks5")
	ErrLimitExceeded         = errors.New("limit must be between 1 and 20")
	ErrInvalidCountryCode    = errors.New("country must be a 2 letter code")
	ErrInvalidPort           = errors.New("port must be between 1 and 65535")
)

var connectionTypes = map[string]struct{}{
	"http":   {},
	"socks4": {},
	"socks5": {},
}

// Options holds the raw, caller supplied filter values. Nil pointers and
// zero values mean "not set".
type Options struct {
	Type      string
	HTTPS     *bool
	LastCheck int
	Limit     *int
	Country   string
	Port      *int

	Post      *bool
	UserAgent *bool
	Cookies   *bool
	Referrer  *bool
}

// Filter is a validated set of provider query parameters.
type Filter struct {
	Type      string
	HTTPS     bool
	LastCheck int
	Limit     int
	Country   string // upper-cased, empty when unset
	Port      int    // zero when unset

	Post      bool
	UserAgent bool
	Cookies   *bool
	Referrer  *bool
}

// Validate normalizes opts into a Filter. It never performs I/O.
func Validate(opts Options) (Filter, error) {
	f := Filter{
		Type:      DefaultType,
		HTTPS:     true,
		LastCheck: DefaultLastCheck,
		Limit:     DefaultLimit,
		Post:      true,
		UserAgent: true,
		Cookies:   opts.Cookies,
		Referrer:  opts.Referrer,
	}

	if opts.Type != "" {
		if _, ok := connectionTypes[opts.Type]; !ok {
			return Filter{}, fmt.Errorf("%w: got %q", ErrInvalidConnectionType, opts.Type)
		}
		f.Type = opts.Type
	}

	if opts.HTTPS != nil {
		f.HTTPS = *opts.HTTPS
	}

	if opts.LastCheck > 0 {
		f.LastCheck = opts.LastCheck
	}

	if opts.Limit != nil {
		if *opts.Limit < MinLimit || *opts.Limit > MaxLimit {
			return Filter{}, fmt.Errorf("%w: got %d", ErrLimitExceeded, *opts.Limit)
		}
		f.Limit = *opts.Limit
	}

	if opts.Country != "" {
		if !isCountryCode(opts.Country) {
			return Filter{}, fmt.Errorf("%w: got %q", ErrInvalidCountryCode, opts.Country)
		}
		f.Country = strings.ToUpper(opts.Country)
	}

	if opts.Port != nil {
		if *opts.Port < MinPort || *opts.Port > MaxPort {
			return Filter{}, fmt.Errorf("%w: got %d", ErrInvalidPort, *opts.Port)
		}
		f.Port = *opts.Port
	}

	if opts.Post != nil {
		f.Post = *opts.Post
	}
	if opts.UserAgent != nil {
		f.UserAgent = *opts.UserAgent
	}

	return f, nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20 // fold to lower case
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// Query encodes the filter as provider query parameters. Unset optional
// values are left out.
func (f Filter) Query() url.Values {
	q := url.Values{}
	q.Set("type", f.Type)
	q.Set("https", strconv.FormatBool(f.HTTPS))
	q.Set("last_check", strconv.Itoa(f.LastCheck))
	q.Set("limit", strconv.Itoa(f.Limit))
	if f.Country != "" {
		q.Set("country", f.Country)
	}
	if f.Port != 0 {
		q.Set("port", strconv.Itoa(f.Port))
	}
	q.Set("post", strconv.FormatBool(f.Post))
	q.Set("user_agent", strconv.FormatBool(f.UserAgent))
	if f.Cookies != nil {
		q.Set("cookies", strconv.FormatBool(*f.Cookies))
	}
	if f.Referrer != nil {
		q.Set("referrer", strconv.FormatBool(*f.Referrer))
	}
	q.Set("format", Format)
	return q
}
