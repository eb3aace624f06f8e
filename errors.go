package proxipy

import (
	"github.com/proxipy/internal/filter"
	"github.com/proxipy/internal/provider"
)

// Validation errors. They are returned before any request is made.
var (
	ErrInvalidConnectionType = filter.ErrInvalidConnectionType
	ErrLimitExceeded         = filter.ErrLimitExceeded
	ErrInvalidCountryCode    = filter.ErrInvalidCountryCode
	ErrInvalidPort           = filter.ErrInvalidPort
)

// Provider errors.
var (
	ErrServiceUnavailable = provider.ErrServiceUnavailable
	ErrTemporaryBlocked   = provider.ErrTemporaryBlocked
	ErrNoProxyFound       = provider.ErrNoProxyFound
)
