package domain

import "encoding/json"

// StoredPaymentMethod is one customer-wallet entry: a vault token plus the
// display metadata checkout pages render.
type StoredPaymentMethod struct {
	ID              string
	Method          PaymentMethod
	Token           string
	MaskedNumber    string
	CardType        string
	CardHolder      string
	ExpirationMonth string
	ExpirationYear  string
	Email           string
	WalletUserID    string
	Default         bool
}

// Wallet holds a customer's stored payment methods.
type Wallet struct {
	methods []*StoredPaymentMethod
}

// MarshalJSON encodes the wallet as its list of stored methods.
func (w *Wallet) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.methods)
}

// UnmarshalJSON decodes a list of stored methods into the wallet.
func (w *Wallet) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &w.methods)
}

// Add appends a stored method to the wallet.
func (w *Wallet) Add(spm *StoredPaymentMethod) {
	w.methods = append(w.methods, spm)
}

// Methods returns all stored methods.
func (w *Wallet) Methods() []*StoredPaymentMethod {
	return w.methods
}

// MethodsOf returns the stored methods of one tender type.
func (w *Wallet) MethodsOf(method PaymentMethod) []*StoredPaymentMethod {
	var out []*StoredPaymentMethod
	for _, spm := range w.methods {
		if spm.Method == method {
			out = append(out, spm)
		}
	}
	return out
}

// FindByToken returns the stored method with the given vault token, or nil.
func (w *Wallet) FindByToken(token string) *StoredPaymentMethod {
	if token == "" {
		return nil
	}
	for _, spm := range w.methods {
		if spm.Token == token {
			return spm
		}
	}
	return nil
}

// FindByEmail returns the stored method of the given tender type registered
// under the given payer email, or nil.
func (w *Wallet) FindByEmail(method PaymentMethod, email string) *StoredPaymentMethod {
	if email == "" {
		return nil
	}
	for _, spm := range w.methods {
		if spm.Method == method && spm.Email == email {
			return spm
		}
	}
	return nil
}

// FindByUserID returns the stored method of the given tender type registered
// under the given wallet user id, or nil.
func (w *Wallet) FindByUserID(method PaymentMethod, userID string) *StoredPaymentMethod {
	if userID == "" {
		return nil
	}
	for _, spm := range w.methods {
		if spm.Method == method && spm.WalletUserID == userID {
			return spm
		}
	}
	return nil
}

// SetDefault marks the given stored method as the customer's default for its
// tender type, clearing the flag on every sibling of the same type first.
// At most one default per tender type may exist.
func (w *Wallet) SetDefault(target *StoredPaymentMethod) {
	for _, spm := range w.methods {
		if spm.Method == target.Method {
			spm.Default = false
		}
	}
	target.Default = true
}
