package ports

import (
	"context"

	"github.com/storebridge/braintree-checkout/internal/domain"
)

// TransportResult is the raw outcome of one HTTP exchange with the gateway.
type TransportResult struct {
	StatusCode int
	Body       []byte
}

// Transport executes one authenticated request against the gateway API.
// Implementations own endpoint construction, credentials, and timeouts.
// Calls are at-most-once; no transport retries the gateway relies on its own
// duplicate detection for timed-out requests.
type Transport interface {
	Execute(ctx context.Context, method, path string, body []byte) (*TransportResult, error)
}

// GatewayClient sends a request document to the gateway and returns the
// parsed response object. Failures are surfaced as *domain.GatewayError with
// the codes defined in the domain package.
type GatewayClient interface {
	Call(ctx context.Context, req *domain.Request) (map[string]interface{}, error)
}
