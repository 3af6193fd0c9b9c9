package processor

import (
	"context"

	"github.com/storebridge/braintree-checkout/internal/domain"
)

// proximityWallet is the Apple Pay processor. Every payment produces a fresh
// device-bound nonce, so there is no stored-method selection and nothing to
// save to the wallet.
type proximityWallet struct {
	base
}

// NewProximityWallet creates the Apple Pay processor.
func NewProximityWallet(deps Deps) Processor {
	return &proximityWallet{base{deps: deps, method: domain.MethodApplePay, cfg: deps.Payment.ApplePay}}
}

func (p *proximityWallet) Method() domain.PaymentMethod {
	return p.method
}

func (p *proximityWallet) Handle(ctx context.Context, basket *domain.Basket, params *HandleParams, fromExpressFlow bool) HandleResult {
	if params.Nonce == "" {
		return HandleResult{Error: true}
	}
	instrument := p.stageInstrument(basket, fromExpressFlow)
	p.attachCommonFields(instrument, params)
	instrument.SaveMethod = false
	instrument.MakeDefault = false
	return HandleResult{Instrument: instrument}
}

func (p *proximityWallet) Authorize(ctx context.Context, orderNo string, instrument *domain.PaymentInstrument) AuthorizeResult {
	order := p.loadOrder(ctx, orderNo)
	if order == nil {
		instrument.FailReason = "order not found"
		return AuthorizeResult{Authorized: true}
	}

	if !instrument.Amount.IsPositive() {
		order.RemoveInstrument(instrument.ID)
		return AuthorizeResult{Authorized: true}
	}

	if instrument.Nonce == "" {
		return p.authorizeFailed(order, instrument,
			domain.NewGatewayError(domain.ErrorCodeInvalidRequest, "payment instrument has no nonce"))
	}

	params := p.saleParams(ctx, order, instrument)
	params["billing"] = order.BillingAddress
	params["shipping"] = order.ShippingAddress
	p.level23Params(params, order, false)

	tr, err := p.sale(ctx, params)
	if err != nil {
		return p.authorizeFailed(order, instrument, err)
	}
	p.saveTransaction(order, instrument, tr)
	return AuthorizeResult{Authorized: true}
}
