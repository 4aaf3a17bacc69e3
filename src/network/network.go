package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crypto-tracker/src/helpers"
	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"
)

const retryBaseDelay = 1 * time.Second

// -----------------------------------------------------------------------------

// AsyncNetworkManager performs GET requests with status-code classification
// and bounded retry for recoverable errors. It is the only layer that retries;
// callers above it treat one failure as one skipped cycle.
type AsyncNetworkManager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

var _ interfaces.INetworkManager = (*AsyncNetworkManager)(nil)

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	return &AsyncNetworkManager{
		Config: cfg,
		Logger: log,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries for recoverable errors.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.Wrap("invalid request url", helpers.ErrInvalidInput)
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqURL.RawQuery = q.Encode()

	finalURL := reqURL.String()
	rateLimitMax := time.Duration(nm.Config.Network.RateLimitMaxDelay) * time.Second

	var body []byte
	err = helpers.RetryWithBackoff(ctx, "GET "+reqURL.Path, nm.Config.Network.MaxRetries,
		retryBaseDelay, rateLimitMax, nm.Logger, func() error {
			var attemptErr error
			body, attemptErr = nm.doRequest(ctx, finalURL)
			return attemptErr
		})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// -----------------------------------------------------------------------------

// doRequest performs one attempt and classifies the outcome.
func (nm *AsyncNetworkManager) doRequest(ctx context.Context, finalURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, helpers.Wrap("build request", helpers.ErrInvalidInput)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, helpers.Wrap(fmt.Sprintf("request failed: %v", err), helpers.ErrTransport)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		nm.Logger.Debug("Bad status %d for %s", resp.StatusCode, finalURL)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, helpers.Wrap("read body", helpers.ErrTransport)
	}

	if len(body) == 0 {
		return nil, helpers.Wrap("empty response body", helpers.ErrNoData)
	}

	return body, nil
}

// -----------------------------------------------------------------------------

// classifyStatus maps HTTP status codes onto the error taxonomy. 2xx is
// success, 404 is not-found, 429 is rate-limited, everything else (400
// included, the API answers it for malformed envelopes) is a transport error.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code <= 299:
		return nil
	case code == http.StatusNotFound:
		return helpers.Wrap("resource not found", helpers.ErrNotFound)
	case code == http.StatusTooManyRequests:
		return helpers.Wrap("too many requests", helpers.ErrRateLimited)
	default:
		return helpers.Wrap(fmt.Sprintf("unexpected status %d", code), helpers.ErrTransport)
	}
}
