package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with classified
// errors and bounded retry.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// Get performs a GET request to the specified URL with parameters.
	// Recoverable failures (transport, rate limiting) are retried with
	// backoff before the classified error is surfaced.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
