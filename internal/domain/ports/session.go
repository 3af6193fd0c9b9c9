package ports

import "context"

// SessionStore is a session-scoped key/value cache. The vault reconciler uses
// it to memoize customer-existence checks within one shopper session; entries
// expire with the session.
type SessionStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
