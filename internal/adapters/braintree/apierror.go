package braintree

import (
	"sort"

	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/locale"
)

// buildErrorMessages walks a parsed apiErrorResponse object and collects the
// shopper-facing messages: the top-level message, every field-level error
// (translated per error code when a resource override exists) and any
// processor decline text. The result keeps first-seen order and drops
// duplicates, so two field errors with the same code yield one message.
func buildErrorMessages(errorResponse map[string]interface{}, resources *locale.Bundle, logger *zap.Logger) []string {
	var messages []string

	if msg := str(errorResponse["message"]); msg != "" {
		messages = append(messages, msg)
	}

	var walk func(obj map[string]interface{})
	walk = func(obj map[string]interface{}) {
		if text := str(obj["processorResponseText"]); text != "" {
			code := str(obj["processorResponseCode"])
			if code == "" {
				code = "unknown"
			}
			logger.Error("Gateway processor decline",
				zap.String("code", code),
				zap.String("text", text),
			)
			messages = append(messages, resources.MessageOrDefault(locale.KeyProcessorPrefix+code, text))
		}

		for _, key := range sortedKeysAny(obj) {
			value := obj[key]
			if key == "errors" {
				if list, ok := value.([]interface{}); ok {
					for _, item := range list {
						fieldErr, ok := item.(map[string]interface{})
						if !ok {
							continue
						}
						code := str(fieldErr["code"])
						message := str(fieldErr["message"])
						logger.Error("Gateway validation error",
							zap.String("code", code),
							zap.String("message", message),
						)
						messages = append(messages, resources.MessageOrDefault(locale.KeyErrorPrefix+code, message))
					}
					continue
				}
			}
			if nested, ok := value.(map[string]interface{}); ok {
				walk(nested)
			}
		}
	}
	walk(errorResponse)

	return dedupe(messages)
}

func dedupe(messages []string) []string {
	seen := make(map[string]struct{}, len(messages))
	out := messages[:0]
	for _, msg := range messages {
		if _, ok := seen[msg]; ok {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	return out
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysAny(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
