package domain

// TransactionStatus enumerates the gateway-side transaction lifecycle states.
type TransactionStatus string

const (
	StatusAuthorized             TransactionStatus = "authorized"
	StatusSubmittedForSettlement TransactionStatus = "submitted_for_settlement"
	StatusSettling               TransactionStatus = "settling"
	StatusSettled                TransactionStatus = "settled"
	StatusVoided                 TransactionStatus = "voided"
	StatusFailed                 TransactionStatus = "failed"
	StatusGatewayRejected        TransactionStatus = "gateway_rejected"
	StatusProcessorDeclined      TransactionStatus = "processor_declined"
)

// IsTerminalStatus reports whether the status can no longer change, so the
// sync job stops polling orders in it.
func IsTerminalStatus(status TransactionStatus) bool {
	switch status {
	case StatusSettled, StatusVoided, StatusFailed:
		return true
	}
	return false
}

// LocalTransactionType maps a gateway status onto the local auth/capture
// classification recorded on the order.
func LocalTransactionType(status TransactionStatus) TransactionType {
	switch status {
	case StatusSettling, StatusSubmittedForSettlement, StatusSettled:
		return TransactionTypeCapture
	default:
		return TransactionTypeAuth
	}
}

// CreditCardDetails carries the vault correlates of a card transaction.
type CreditCardDetails struct {
	Token           string
	Last4           string
	CardType        string
	CardholderName  string
	ExpirationMonth string
	ExpirationYear  string
}

// PayPalDetails carries the vault correlates of a PayPal transaction.
type PayPalDetails struct {
	Token      string
	PayerEmail string
}

// VenmoDetails carries the vault correlates of a Venmo transaction.
type VenmoDetails struct {
	Token    string
	Username string
}

// TransactionResponse is the interpreted result of a sale or
// transaction-search call.
type TransactionResponse struct {
	ID                 string
	Status             TransactionStatus
	Type               string
	Amount             string
	RiskDecision       string
	ThreeDSecureStatus string
	CreditCard         CreditCardDetails
	PayPal             PayPalDetails
	Venmo              VenmoDetails
}

// DecodeTransaction maps one parsed transaction object into a
// TransactionResponse. Keys follow the parser's camel-cased vocabulary;
// absent fields stay zero-valued.
func DecodeTransaction(data map[string]interface{}) *TransactionResponse {
	tr := &TransactionResponse{
		ID:     str(data["id"]),
		Status: TransactionStatus(str(data["status"])),
		Type:   str(data["type"]),
		Amount: str(data["amount"]),
	}
	if risk, ok := data["riskData"].(map[string]interface{}); ok {
		tr.RiskDecision = str(risk["decision"])
	}
	if tds, ok := data["threeDSecureInfo"].(map[string]interface{}); ok {
		tr.ThreeDSecureStatus = str(tds["status"])
	}
	if cc, ok := data["creditCard"].(map[string]interface{}); ok {
		tr.CreditCard = CreditCardDetails{
			Token:           str(cc["token"]),
			Last4:           str(cc["last4"]),
			CardType:        str(cc["cardType"]),
			CardholderName:  str(cc["cardholderName"]),
			ExpirationMonth: str(cc["expirationMonth"]),
			ExpirationYear:  str(cc["expirationYear"]),
		}
	}
	if pp, ok := data["paypal"].(map[string]interface{}); ok {
		tr.PayPal = PayPalDetails{
			Token:      str(pp["token"]),
			PayerEmail: str(pp["payerEmail"]),
		}
	}
	if vn, ok := data["venmoAccount"].(map[string]interface{}); ok {
		tr.Venmo = VenmoDetails{
			Token:    str(vn["token"]),
			Username: str(vn["username"]),
		}
	}
	return tr
}

// DecodeTransactionList maps a parsed transaction-search result into
// responses. The search envelope nests matches under creditCardTransactions;
// a missing or empty list decodes to nil.
func DecodeTransactionList(data map[string]interface{}) []*TransactionResponse {
	raw, ok := data["creditCardTransactions"]
	if !ok {
		return nil
	}
	var out []*TransactionResponse
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, DecodeTransaction(m))
			}
		}
	case map[string]interface{}:
		out = append(out, DecodeTransaction(v))
	}
	return out
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
