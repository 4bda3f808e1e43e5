// Package client provides the main entry point for creating JSON:API clients.
package client

import (
	"strings"
	"time"

	"github.com/dbendilas/jsonapi/internal/constants"
	apihttp "github.com/dbendilas/jsonapi/internal/http"
	"github.com/dbendilas/jsonapi/pkg/jsonapi"
)

// Config holds connection settings for a JSON:API server.
type Config struct {
	// Endpoint is the server base URL, e.g. "https://rest.api.example.com".
	// A missing scheme defaults to https.
	Endpoint string

	// Token is the bearer token sent on every request. Empty means
	// unauthenticated requests.
	Token string

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// RetryMax enables transport-level retries when positive.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Timeout overrides the per-request timeout.
	Timeout time.Duration

	// Logger receives debug output when Debug is set.
	Logger jsonapi.Logger
	Debug  bool
}

// New creates a JSON:API handle from a Config.
func New(config *Config) (*jsonapi.API, error) {
	if config == nil {
		return nil, jsonapi.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, jsonapi.ErrEndpointRequired
	}

	// Normalize endpoint
	endpoint := strings.TrimSuffix(config.Endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	opts := []apihttp.Option{}

	if config.UserAgent != "" {
		opts = append(opts, apihttp.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		retryWaitMin := config.RetryWaitMin
		if retryWaitMin == 0 {
			retryWaitMin = constants.DefaultRetryWaitMin
		}

		retryWaitMax := config.RetryWaitMax
		if retryWaitMax == 0 {
			retryWaitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, apihttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.Timeout > 0 {
		opts = append(opts, apihttp.WithTimeout(config.Timeout))
	}

	if config.Logger != nil {
		opts = append(opts, apihttp.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, apihttp.WithDebug(true))
	}

	var tokenProvider apihttp.TokenProvider
	if config.Token != "" {
		tokenProvider = apihttp.StaticToken(config.Token)
	}

	return jsonapi.New(apihttp.NewClient(endpoint, tokenProvider, opts...))
}

// NewWithToken creates a client with an endpoint and bearer token.
func NewWithToken(endpoint, token string) (*jsonapi.API, error) {
	return New(&Config{
		Endpoint: endpoint,
		Token:    token,
	})
}

// NewWithEndpoint creates an unauthenticated client.
func NewWithEndpoint(endpoint string) (*jsonapi.API, error) {
	return New(&Config{
		Endpoint: endpoint,
	})
}
