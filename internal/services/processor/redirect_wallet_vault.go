package processor

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/adapters/braintree"
	"github.com/storebridge/braintree-checkout/internal/domain"
)

// redirectWalletVault is the Venmo processor. Approval happens in the Venmo
// app; the gateway reports the wallet username with the transaction, which
// keys deduplication of stored accounts.
type redirectWalletVault struct {
	base
}

// NewRedirectWalletVault creates the Venmo processor.
func NewRedirectWalletVault(deps Deps) Processor {
	return &redirectWalletVault{base{deps: deps, method: domain.MethodVenmo, cfg: deps.Payment.Venmo}}
}

func (p *redirectWalletVault) Method() domain.PaymentMethod {
	return p.method
}

func (p *redirectWalletVault) Handle(ctx context.Context, basket *domain.Basket, params *HandleParams, fromExpressFlow bool) HandleResult {
	var stored *domain.StoredPaymentMethod
	if params.SelectedMethodID != "" && params.SelectedMethodID != NewMethodSelector {
		stored = p.findStored(basket, params.SelectedMethodID)
		if stored == nil {
			return HandleResult{Error: true}
		}
	} else if params.Nonce == "" {
		return HandleResult{Error: true}
	}

	instrument := p.stageInstrument(basket, fromExpressFlow)
	p.attachCommonFields(instrument, params)
	if stored != nil {
		instrument.Token = stored.Token
		instrument.WalletUserID = stored.WalletUserID
	}
	return HandleResult{Instrument: instrument}
}

func (p *redirectWalletVault) Authorize(ctx context.Context, orderNo string, instrument *domain.PaymentInstrument) AuthorizeResult {
	order := p.loadOrder(ctx, orderNo)
	if order == nil {
		instrument.FailReason = "order not found"
		return AuthorizeResult{Authorized: true}
	}

	if !instrument.Amount.IsPositive() {
		order.RemoveInstrument(instrument.ID)
		return AuthorizeResult{Authorized: true}
	}

	if instrument.Nonce == "" && instrument.Token == "" {
		return p.authorizeFailed(order, instrument,
			domain.NewGatewayError(domain.ErrorCodeInvalidRequest, "payment instrument has neither nonce nor token"))
	}

	params := p.saleParams(ctx, order, instrument)
	params["shipping"] = order.ShippingAddress
	p.level23Params(params, order, true)

	tr, err := p.sale(ctx, params)
	if err != nil {
		return p.authorizeFailed(order, instrument, err)
	}
	p.saveTransaction(order, instrument, tr)
	if tr.Venmo.Token != "" {
		instrument.Token = tr.Venmo.Token
	}
	if tr.Venmo.Username != "" {
		instrument.WalletUserID = tr.Venmo.Username
	}

	if instrument.SaveMethod {
		p.saveWalletAccount(order, instrument)
		instrument.SaveMethod = false
	}
	if instrument.MakeDefault {
		p.makeDefaultAccount(ctx, order, instrument)
		instrument.MakeDefault = false
	}
	return AuthorizeResult{Authorized: true}
}

// saveWalletAccount stores the account unless the username already has an
// entry. The vault reuses one token per username, so a second entry would be
// a duplicate of the first.
func (p *redirectWalletVault) saveWalletAccount(order *domain.Order, instrument *domain.PaymentInstrument) {
	wallet := customerWallet(order)
	if wallet == nil || instrument.Token == "" || instrument.WalletUserID == "" {
		return
	}
	if wallet.FindByUserID(domain.MethodVenmo, instrument.WalletUserID) != nil {
		return
	}
	wallet.Add(&domain.StoredPaymentMethod{
		ID:           uuid.New().String(),
		Method:       domain.MethodVenmo,
		Token:        instrument.Token,
		WalletUserID: instrument.WalletUserID,
	})
}

func (p *redirectWalletVault) makeDefaultAccount(ctx context.Context, order *domain.Order, instrument *domain.PaymentInstrument) {
	wallet := customerWallet(order)
	if wallet == nil {
		return
	}
	stored := wallet.FindByUserID(domain.MethodVenmo, instrument.WalletUserID)
	if stored == nil {
		stored = wallet.FindByToken(instrument.Token)
	}
	if stored == nil || stored.Token == "" {
		return
	}
	wallet.SetDefault(stored)

	req, err := p.deps.Builder.Build(braintree.OpUpdatePaymentMethod, braintree.Params{
		"token":       stored.Token,
		"makeDefault": true,
	})
	if err != nil {
		p.deps.Logger.Error("Failed to build default-account update", zap.Error(err))
		return
	}
	if _, err := p.deps.Client.Call(ctx, req); err != nil {
		p.deps.Logger.Error("Failed to mark account default in vault",
			zap.String("token", stored.Token),
			zap.Error(err),
		)
	}
}

func (p *redirectWalletVault) findStored(basket *domain.Basket, id string) *domain.StoredPaymentMethod {
	wallet := customerWallet(basket)
	if wallet == nil {
		return nil
	}
	for _, spm := range wallet.MethodsOf(domain.MethodVenmo) {
		if spm.ID == id {
			return spm
		}
	}
	return nil
}
