package braintree

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/domain/ports"
)

const apiVersion = "6"

// TransportConfig contains configuration for the gateway HTTP transport
type TransportConfig struct {
	// Base URL of the gateway API
	// Sandbox: https://api.sandbox.braintreegateway.com
	// Production: https://api.braintreegateway.com
	BaseURL string

	// Merchant credentials
	MerchantID string
	PublicKey  string
	PrivateKey string

	// HTTP client timeout
	Timeout time.Duration

	// TLS configuration
	InsecureSkipVerify bool
}

// DefaultTransportConfig returns default configuration for the given environment
func DefaultTransportConfig(environment string) *TransportConfig {
	baseURL := "https://api.braintreegateway.com"
	if environment == "sandbox" {
		baseURL = "https://api.sandbox.braintreegateway.com"
	}
	return &TransportConfig{
		BaseURL:            baseURL,
		Timeout:            30 * time.Second,
		InsecureSkipVerify: environment == "sandbox",
	}
}

type httpTransport struct {
	config     *TransportConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPTransport creates the gateway HTTP transport. Missing credentials
// fail construction; callers surface that as a transport-unavailable
// condition rather than sending unauthenticated requests.
func NewHTTPTransport(config *TransportConfig, logger *zap.Logger) (ports.Transport, error) {
	if config.BaseURL == "" || config.MerchantID == "" || config.PublicKey == "" || config.PrivateKey == "" {
		return nil, domain.NewGatewayError(domain.ErrorCodeTransportUnavailable,
			"gateway transport configuration is incomplete")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
	}

	return &httpTransport{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Execute sends one authenticated request to the merchant-scoped API path
func (t *httpTransport) Execute(ctx context.Context, method, path string, body []byte) (*ports.TransportResult, error) {
	url := fmt.Sprintf("%s/merchants/%s/%s",
		strings.TrimRight(t.config.BaseURL, "/"),
		t.config.MerchantID,
		strings.TrimLeft(path, "/"))

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(t.config.PublicKey, t.config.PrivateKey)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("X-ApiVersion", apiVersion)
	req.Header.Set("User-Agent", "storebridge-braintree-checkout")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/xml")
	}

	t.logger.Debug("Sending gateway request",
		zap.String("method", method),
		zap.String("path", path),
	)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	t.logger.Debug("Received gateway response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_bytes", len(respBody)),
	)

	return &ports.TransportResult{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}
