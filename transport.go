package proxipy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// ProxyFunc returns a function suitable for http.Transport.Proxy. Requests
// to https URLs go through m.HTTPS, everything else through m.HTTP.
func (m Mapping) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		raw := m.HTTP
		if req.URL.Scheme == "https" {
			raw = m.HTTPS
		}
		if raw == "" {
			return nil, nil
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse proxy URL: %w", err)
		}
		return u, nil
	}
}

// Transport builds an http.Transport that sends every request through m.
// HTTP proxies use the Proxy hook; socks5 proxies are dialled directly.
func (m Mapping) Transport() (*http.Transport, error) {
	u, err := url.Parse(m.HTTP)
	if err != nil {
		return nil, fmt.Errorf("parse proxy URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return &http.Transport{Proxy: m.ProxyFunc()}, nil

	case "socks5", "socks5h":
		return socks5Transport(u.Host)

	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
}

// Transport builds an http.Transport for the first proxy of r, dialling it
// the way its connection type requires. The provider lists every proxy as
// http://ip:port, so the type decides whether that address speaks HTTP or
// SOCKS5.
func (r Result) Transport() (*http.Transport, error) {
	if r.Len() == 0 {
		return nil, fmt.Errorf("empty result")
	}
	m := r.First()

	switch r.connType {
	case "", "http":
		return m.Transport()

	case "socks5":
		u, err := url.Parse(m.HTTP)
		if err != nil {
			return nil, fmt.Errorf("parse proxy URL: %w", err)
		}
		return socks5Transport(u.Host)

	case "socks4":
		return nil, fmt.Errorf("socks4 proxies are not supported by Transport")

	default:
		return nil, fmt.Errorf("unknown connection type %q", r.connType)
	}
}

func socks5Transport(addr string) (*http.Transport, error) {
	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("socks5 dialer: %w", err)
	}

	transport := &http.Transport{}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}
