package braintree

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/domain/ports"
	"github.com/storebridge/braintree-checkout/internal/locale"
)

type fakeTransport struct {
	status int
	body   []byte
	err    error

	calls    int
	lastPath string
	lastBody []byte
}

func (f *fakeTransport) Execute(_ context.Context, _ string, path string, body []byte) (*ports.TransportResult, error) {
	f.calls++
	f.lastPath = path
	f.lastBody = body
	if f.err != nil {
		return nil, f.err
	}
	return &ports.TransportResult{StatusCode: f.status, Body: f.body}, nil
}

func testClient(transport ports.Transport) *Client {
	return NewClient(transport, testBuilder(), locale.NewBundle(nil), zap.NewNop())
}

// TestClient_NilTransport tests that an unconfigured transport fails every
// call with the service-unavailable message instead of panicking
func TestClient_NilTransport(t *testing.T) {
	client := testClient(nil)

	_, err := client.Call(context.Background(), &domain.Request{Method: "GET", Path: "customers/x"})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeTransportUnavailable, domain.GetErrorCode(err))
}

// TestClient_SuccessParsesBody tests the happy path parse
func TestClient_SuccessParsesBody(t *testing.T) {
	transport := &fakeTransport{
		status: http.StatusOK,
		body:   []byte(`<customer><id>site_0001</id></customer>`),
	}
	client := testClient(transport)

	resp, err := client.Call(context.Background(), &domain.Request{Method: "GET", Path: "customers/site_0001"})
	require.NoError(t, err)

	customer := resp["customer"].(map[string]interface{})
	assert.Equal(t, "site_0001", customer["id"])
	assert.Equal(t, 1, transport.calls)
}

// TestClient_NotFound tests the 404 mapping
func TestClient_NotFound(t *testing.T) {
	client := testClient(&fakeTransport{status: http.StatusNotFound})

	_, err := client.Call(context.Background(), &domain.Request{Method: "GET", Path: "customers/nope"})

	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

// TestClient_TransportError tests the transport failure mapping
func TestClient_TransportError(t *testing.T) {
	client := testClient(&fakeTransport{err: errors.New("connection refused")})

	_, err := client.Call(context.Background(), &domain.Request{Method: "POST", Path: "transactions"})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeTransportUnavailable, domain.GetErrorCode(err))
}

// TestClient_APIErrorMessages tests translation of a structured error
// response, including dedup of repeated codes
func TestClient_APIErrorMessages(t *testing.T) {
	body := []byte(`<api-error-response>` +
		`<errors><transaction>` +
		`<errors type="array">` +
		`<error><code>81715</code><message>wire text a</message></error>` +
		`<error><code>81715</code><message>wire text b</message></error>` +
		`</errors>` +
		`</transaction></errors>` +
		`</api-error-response>`)
	client := testClient(&fakeTransport{status: http.StatusUnprocessableEntity, body: body})

	_, err := client.Call(context.Background(), &domain.Request{Method: "POST", Path: "transactions"})
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, domain.ErrorCodeAPIError, gwErr.Code)
	require.Len(t, gwErr.Messages, 1)
	assert.NotEmpty(t, gwErr.Messages[0])
}

// TestClient_APIErrorTopLevelMessage tests that the response's own message
// leads the translated list
func TestClient_APIErrorTopLevelMessage(t *testing.T) {
	body := []byte(`<api-error-response>` +
		`<message>Amount is required.</message>` +
		`</api-error-response>`)
	client := testClient(&fakeTransport{status: http.StatusUnprocessableEntity, body: body})

	_, err := client.Call(context.Background(), &domain.Request{Method: "POST", Path: "transactions"})
	require.Error(t, err)

	messages := domain.UserMessages(err)
	require.NotEmpty(t, messages)
	assert.Equal(t, "Amount is required.", messages[0])
}

// TestClient_EmptyBody tests that a bodyless success yields an empty object
func TestClient_EmptyBody(t *testing.T) {
	client := testClient(&fakeTransport{status: http.StatusOK})

	resp, err := client.Call(context.Background(), &domain.Request{Method: "DELETE", Path: "payment_methods/any/tok"})
	require.NoError(t, err)

	assert.Empty(t, resp)
}

// TestClient_ClientToken tests extraction of the token value
func TestClient_ClientToken(t *testing.T) {
	transport := &fakeTransport{
		status: http.StatusCreated,
		body:   []byte(`<client-token><value>tok-abc</value></client-token>`),
	}
	client := testClient(transport)

	token, err := client.ClientToken(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, "tok-abc", token)
	assert.Equal(t, "client_token", transport.lastPath)
}

// TestClient_ClientTokenStaticKey tests that a configured tokenization key
// short-circuits the gateway call
func TestClient_ClientTokenStaticKey(t *testing.T) {
	transport := &fakeTransport{status: http.StatusCreated}
	client := testClient(transport)
	client.UseTokenizationKey("sandbox_abc_merchant")

	token, err := client.ClientToken(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, "sandbox_abc_merchant", token)
	assert.Zero(t, transport.calls)
}

// TestClient_SearchTransactionsByIDs tests search decode over the
// transaction collection
func TestClient_SearchTransactionsByIDs(t *testing.T) {
	transport := &fakeTransport{
		status: http.StatusOK,
		body: []byte(`<credit-card-transactions type="collection">` +
			`<transaction><id>t1</id><status>settled</status><type>sale</type></transaction>` +
			`<transaction><id>t2</id><status>authorized</status><type>sale</type></transaction>` +
			`</credit-card-transactions>`),
	}
	client := testClient(transport)

	transactions, err := client.SearchTransactionsByIDs(context.Background(), []string{"t1", "t2"})
	require.NoError(t, err)

	require.Len(t, transactions, 2)
	assert.Equal(t, "t1", transactions[0].ID)
	assert.Equal(t, domain.StatusSettled, transactions[0].Status)
	assert.Equal(t, domain.StatusAuthorized, transactions[1].Status)
	assert.Equal(t, "transactions/advanced_search", transport.lastPath)
}
