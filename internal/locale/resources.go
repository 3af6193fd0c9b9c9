// Package locale provides the resource-string lookup the gateway client uses
// to translate error codes into shopper-facing messages.
package locale

// Bundle maps resource keys to localized messages. Lookups fall back to a
// caller-supplied default so unmapped gateway codes still surface the wire
// message.
type Bundle struct {
	messages map[string]string
}

// NewBundle creates a bundle seeded with the built-in messages, overlaid with
// the given overrides.
func NewBundle(overrides map[string]string) *Bundle {
	messages := make(map[string]string, len(defaultMessages)+len(overrides))
	for k, v := range defaultMessages {
		messages[k] = v
	}
	for k, v := range overrides {
		messages[k] = v
	}
	return &Bundle{messages: messages}
}

// Message returns the message for the key, or empty if unmapped.
func (b *Bundle) Message(key string) string {
	return b.messages[key]
}

// MessageOrDefault returns the message for the key, falling back to the given
// default when the key is unmapped.
func (b *Bundle) MessageOrDefault(key, fallback string) string {
	if msg, ok := b.messages[key]; ok {
		return msg
	}
	return fallback
}

// Resource keys used by the gateway client.
const (
	KeyServiceUnavailable = "braintree.server.error.unavailable"
	KeyGeneralError       = "braintree.server.error.general"
	KeyErrorPrefix        = "braintree.server.error."
	KeyProcessorPrefix    = "braintree.server.processor.error."
)

var defaultMessages = map[string]string{
	KeyServiceUnavailable: "The payment service is temporarily unavailable. Please try again later.",
	KeyGeneralError:       "Your payment could not be processed. Please verify your details and try again.",

	// Validation overrides for the codes shoppers commonly hit
	KeyErrorPrefix + "81715": "The card number is not valid.",
	KeyErrorPrefix + "81703": "This card type is not accepted. Please use a different card.",
	KeyErrorPrefix + "81709": "The expiration date is required.",
	KeyErrorPrefix + "81710": "The expiration date is not valid.",
	KeyErrorPrefix + "81714": "The card number is required.",
	KeyErrorPrefix + "81725": "The card must include a billing address.",
	KeyErrorPrefix + "81736": "The security code is not valid.",
	KeyErrorPrefix + "91564": "This payment method was already used. Please re-enter your details.",
	KeyErrorPrefix + "91565": "The payment token is not valid. Please re-enter your details.",

	// Processor declines
	KeyProcessorPrefix + "2000": "Your bank declined the payment. Please contact your bank or use a different card.",
	KeyProcessorPrefix + "2001": "The payment was declined for insufficient funds.",
	KeyProcessorPrefix + "2004": "The card has expired.",
	KeyProcessorPrefix + "2010": "The security code was declined. Please check your details.",
	KeyProcessorPrefix + "2038": "Your bank declined the payment. Please use a different payment method.",
}
