package processor

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/adapters/braintree"
	"github.com/storebridge/braintree-checkout/internal/config"
	"github.com/storebridge/braintree-checkout/internal/domain"
)

// redirectWalletCheckout is the PayPal processor. The shopper approves the
// payment in a redirect widget that reports a nonce plus the wallet account
// email and optional address overrides.
type redirectWalletCheckout struct {
	base
}

// NewRedirectWalletCheckout creates the PayPal processor.
func NewRedirectWalletCheckout(deps Deps) Processor {
	return &redirectWalletCheckout{base{deps: deps, method: domain.MethodPayPal, cfg: deps.Payment.PayPal}}
}

func (p *redirectWalletCheckout) Method() domain.PaymentMethod {
	return p.method
}

func (p *redirectWalletCheckout) Handle(ctx context.Context, basket *domain.Basket, params *HandleParams, fromExpressFlow bool) HandleResult {
	var stored *domain.StoredPaymentMethod
	if params.SelectedMethodID != "" && params.SelectedMethodID != NewMethodSelector {
		stored = p.findStored(basket, params.SelectedMethodID)
		if stored == nil {
			return HandleResult{Error: true}
		}
	} else if params.Nonce == "" {
		return HandleResult{Error: true}
	}

	if p.cfg.BillingAddressOverride && hasAddressOverride(params.BillingAddressJSON) {
		addr, err := parseAddressOverride(params.BillingAddressJSON)
		if err != nil {
			p.deps.Logger.Warn("Unparseable billing address override", zap.Error(err))
			return HandleResult{Error: true}
		}
		applyBillingOverride(basket, addr)
	}
	if fromExpressFlow && hasAddressOverride(params.ShippingAddressJSON) {
		addr, err := parseAddressOverride(params.ShippingAddressJSON)
		if err != nil {
			p.deps.Logger.Warn("Unparseable shipping address override", zap.Error(err))
			return HandleResult{Error: true}
		}
		applyShippingOverride(basket, addr)
	}

	instrument := p.stageInstrument(basket, fromExpressFlow)
	p.attachCommonFields(instrument, params)
	if stored != nil {
		instrument.Token = stored.Token
		instrument.PayerEmail = stored.Email
	}
	if fromExpressFlow {
		p.captureWalletEmail(ctx, instrument.PayerEmail)
	}
	return HandleResult{Instrument: instrument}
}

func (p *redirectWalletCheckout) Authorize(ctx context.Context, orderNo string, instrument *domain.PaymentInstrument) AuthorizeResult {
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

	if p.cfg.PaymentModel == config.PaymentModelOrder {
		return p.intentOrder(ctx, order, instrument)
	}

	params := p.saleParams(ctx, order, instrument)
	if opts, ok := params["options"].(*braintree.SaleOptions); ok {
		opts.PayeeEmail = p.cfg.PayeeEmail
	}
	params["shipping"] = order.ShippingAddress
	p.level23Params(params, order, true)

	tr, err := p.sale(ctx, params)
	if err != nil {
		return p.authorizeFailed(order, instrument, err)
	}
	p.saveTransaction(order, instrument, tr)
	if tr.PayPal.Token != "" {
		instrument.Token = tr.PayPal.Token
	}
	if tr.PayPal.PayerEmail != "" {
		instrument.PayerEmail = tr.PayPal.PayerEmail
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

// intentOrder vaults the approved wallet account instead of charging it. The
// actual sale is placed later against the vault token, so the order is only
// marked as intent here.
func (p *redirectWalletCheckout) intentOrder(ctx context.Context, order *domain.Order, instrument *domain.PaymentInstrument) AuthorizeResult {
	token, err := p.deps.Vault.CreatePaymentMethod(ctx, instrument.Nonce, order, p.cfg.PayeeEmail)
	if err != nil {
		return p.authorizeFailed(order, instrument, err)
	}
	instrument.Token = token
	order.GatewayOrder = true
	order.IntentOrder = true
	instrument.ClearTransientData()
	return AuthorizeResult{Authorized: true}
}

// saveWalletAccount stores the account in the wallet unless an entry for the
// same payer email already exists.
func (p *redirectWalletCheckout) saveWalletAccount(order *domain.Order, instrument *domain.PaymentInstrument) {
	wallet := customerWallet(order)
	if wallet == nil || instrument.Token == "" || instrument.PayerEmail == "" {
		return
	}
	if wallet.FindByEmail(domain.MethodPayPal, instrument.PayerEmail) != nil {
		return
	}
	wallet.Add(&domain.StoredPaymentMethod{
		ID:     uuid.New().String(),
		Method: domain.MethodPayPal,
		Token:  instrument.Token,
		Email:  instrument.PayerEmail,
	})
}

// makeDefaultAccount marks the wallet entry default locally and in the
// vault. An already stored entry for the same payer email wins over the
// token minted by this transaction, matching what the vault deduplicates to.
func (p *redirectWalletCheckout) makeDefaultAccount(ctx context.Context, order *domain.Order, instrument *domain.PaymentInstrument) {
	wallet := customerWallet(order)
	if wallet == nil {
		return
	}
	stored := wallet.FindByEmail(domain.MethodPayPal, instrument.PayerEmail)
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

func (p *redirectWalletCheckout) findStored(basket *domain.Basket, id string) *domain.StoredPaymentMethod {
	wallet := customerWallet(basket)
	if wallet == nil {
		return nil
	}
	for _, spm := range wallet.MethodsOf(domain.MethodPayPal) {
		if spm.ID == id {
			return spm
		}
	}
	return nil
}
