package restclient

import (
	"strings"

	"github.com/cfe-lab/ferrier/internal/constants"
	"github.com/cfe-lab/ferrier/internal/transport"
	"github.com/cfe-lab/ferrier/pkg/ferrier"
)

// New creates a transport for the configured endpoint.
func New(config *ferrier.Config) (ferrier.Transport, error) {
	if config == nil {
		return nil, ferrier.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, ferrier.ErrEndpointRequired
	}

	endpoint := strings.TrimSuffix(config.Endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	opts := buildOptions(config)

	return transport.NewClient(endpoint, opts...), nil
}

// NewWithEndpoint creates a transport with default configuration.
func NewWithEndpoint(endpoint string) (ferrier.Transport, error) {
	return New(&ferrier.Config{Endpoint: endpoint})
}

func buildOptions(config *ferrier.Config) []transport.Option {
	var opts []transport.Option

	if config.Logger != nil {
		opts = append(opts, transport.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, transport.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(config.UserAgent))
	}

	if config.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(config.Timeout))
	}

	if config.RetryMax > 0 {
		waitMin := config.RetryWaitMin
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, transport.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	return opts
}
