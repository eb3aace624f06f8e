package proxipy

import "github.com/proxipy/internal/filter"

// Option sets one provider filter.
type Option func(*filter.Options)

// WithType selects the connection type: "http", "socks4" or "socks5".
func WithType(connType string) Option {
	return func(o *filter.Options) { o.Type = connType }
}

// WithHTTPS asks for proxies that support HTTPS.
func WithHTTPS(https bool) Option {
	return func(o *filter.Options) { o.HTTPS = &https }
}

// WithLastCheck keeps proxies verified within the last minutes.
func WithLastCheck(minutes int) Option {
	return func(o *filter.Options) { o.LastCheck = minutes }
}

// WithLimit sets how many proxies to return, 1 to 20.
func WithLimit(n int) Option {
	return func(o *filter.Options) { o.Limit = &n }
}

// WithCountry filters by 2 letter country code, e.g. "US".
func WithCountry(code string) Option {
	return func(o *filter.Options) { o.Country = code }
}

// WithPort keeps proxies listening on port.
func WithPort(port int) Option {
	return func(o *filter.Options) { o.Port = &port }
}

// WithPost asks for proxies that allow POST requests.
func WithPost(post bool) Option {
	return func(o *filter.Options) { o.Post = &post }
}

// WithUserAgent asks for proxies that pass the User-Agent header.
func WithUserAgent(userAgent bool) Option {
	return func(o *filter.Options) { o.UserAgent = &userAgent }
}

// WithCookies asks for proxies that pass cookies.
func WithCookies(cookies bool) Option {
	return func(o *filter.Options) { o.Cookies = &cookies }
}

// WithReferrer asks for proxies that pass the Referer header.
func WithReferrer(referrer bool) Option {
	return func(o *filter.Options) { o.Referrer = &referrer }
}
