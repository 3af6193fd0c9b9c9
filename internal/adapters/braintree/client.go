package braintree

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/domain/ports"
	"github.com/storebridge/braintree-checkout/internal/locale"
	"github.com/storebridge/braintree-checkout/pkg/observability"
)

// Client executes request documents against the gateway and maps transport
// and protocol failures into the domain error taxonomy. It performs no
// retries; each call is at most once and timed-out requests rely on the
// gateway's duplicate detection.
type Client struct {
	transport       ports.Transport
	builder         *Builder
	resources       *locale.Bundle
	logger          *zap.Logger
	tokenizationKey string
}

// NewClient creates a gateway client. A nil transport is tolerated at
// construction; every Call then fails with a transport-unavailable error so
// the misconfiguration surfaces as a generic service message, not a panic.
func NewClient(transport ports.Transport, builder *Builder, resources *locale.Bundle, logger *zap.Logger) *Client {
	return &Client{
		transport: transport,
		builder:   builder,
		resources: resources,
		logger:    logger,
	}
}

// UseTokenizationKey configures a static client-side key. When set, ClientToken
// returns it directly instead of generating a token per request.
func (c *Client) UseTokenizationKey(key string) {
	c.tokenizationKey = key
}

// Builder returns the request document builder this client was wired with.
func (c *Client) Builder() *Builder {
	return c.builder
}

// Call sends one request document and returns the parsed response object.
func (c *Client) Call(ctx context.Context, req *domain.Request) (map[string]interface{}, error) {
	if c.transport == nil {
		c.logger.Error("Gateway transport is not configured")
		return nil, domain.NewGatewayError(domain.ErrorCodeTransportUnavailable,
			c.resources.Message(locale.KeyServiceUnavailable))
	}

	start := time.Now()
	result, err := c.transport.Execute(ctx, req.Method, req.Path, Serialize(req.Body))
	if err != nil {
		observability.RecordGatewayCall(req.Path, time.Since(start), "transport_error")
		c.logger.Error("Gateway request failed",
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return nil, domain.WrapError(domain.ErrorCodeTransportUnavailable,
			c.resources.Message(locale.KeyGeneralError), err)
	}

	if result.StatusCode == http.StatusNotFound {
		observability.RecordGatewayCall(req.Path, time.Since(start), "not_found")
		return nil, domain.NewGatewayError(domain.ErrorCodeNotFound,
			"gateway resource not found: "+req.Path)
	}

	if result.StatusCode >= http.StatusBadRequest {
		observability.RecordGatewayCall(req.Path, time.Since(start), "api_error")
		return nil, c.apiError(req.Path, result.Body)
	}

	observability.RecordGatewayCall(req.Path, time.Since(start), "ok")

	if len(result.Body) == 0 {
		return map[string]interface{}{}, nil
	}
	parsed, err := Parse(result.Body)
	if err != nil {
		c.logger.Error("Gateway response could not be parsed",
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return nil, domain.WrapError(domain.ErrorCodeParseError,
			c.resources.Message(locale.KeyGeneralError), err)
	}
	return parsed, nil
}

func (c *Client) apiError(path string, body []byte) error {
	parsed, err := Parse(body)
	if err != nil {
		c.logger.Error("Gateway error body could not be parsed",
			zap.String("path", path),
			zap.Error(err),
		)
		return domain.WrapError(domain.ErrorCodeParseError,
			c.resources.Message(locale.KeyGeneralError), err)
	}

	errorResponse, ok := parsed["apiErrorResponse"].(map[string]interface{})
	if !ok {
		c.logger.Error("Gateway rejected request without structured errors",
			zap.String("path", path),
		)
		return domain.NewGatewayError(domain.ErrorCodeAPIError,
			c.resources.Message(locale.KeyGeneralError))
	}

	gwErr := domain.NewGatewayError(domain.ErrorCodeAPIError,
		c.resources.Message(locale.KeyGeneralError))
	gwErr.Messages = buildErrorMessages(errorResponse, c.resources, c.logger)
	return gwErr
}

// ClientToken fetches a client-side tokenization key for the given currency.
func (c *Client) ClientToken(ctx context.Context, currencyCode string) (string, error) {
	if c.tokenizationKey != "" {
		return c.tokenizationKey, nil
	}
	req, err := c.builder.Build(OpClientToken, Params{"currencyCode": currencyCode})
	if err != nil {
		return "", err
	}
	response, err := c.Call(ctx, req)
	if err != nil {
		return "", err
	}
	token, ok := response["clientToken"].(map[string]interface{})
	if !ok {
		return "", domain.NewGatewayError(domain.ErrorCodeParseError, "client token missing from response")
	}
	value, _ := token["value"].(string)
	return value, nil
}

// SearchTransactionsByIDs runs a batch transaction search and decodes the
// matches. An empty result set is not an error.
func (c *Client) SearchTransactionsByIDs(ctx context.Context, ids []string) ([]*domain.TransactionResponse, error) {
	req, err := c.builder.Build(OpSearchTransactionsByIDs, Params{"ids": ids})
	if err != nil {
		return nil, err
	}
	response, err := c.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	return domain.DecodeTransactionList(response), nil
}
