package processor

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/adapters/braintree"
	"github.com/storebridge/braintree-checkout/internal/domain"
)

// NewMethodSelector marks a fresh credential instead of a stored one.
const NewMethodSelector = "new"

// storedCard is the tokenized credit card processor.
type storedCard struct {
	base
}

// NewStoredCard creates the credit card processor.
func NewStoredCard(deps Deps) Processor {
	return &storedCard{base{deps: deps, method: domain.MethodCreditCard, cfg: deps.Payment.Credit}}
}

func (p *storedCard) Method() domain.PaymentMethod {
	return p.method
}

func (p *storedCard) Handle(ctx context.Context, basket *domain.Basket, params *HandleParams, fromExpressFlow bool) HandleResult {
	var stored *domain.StoredPaymentMethod
	if params.SelectedMethodID != "" && params.SelectedMethodID != NewMethodSelector {
		stored = p.findStored(basket, params.SelectedMethodID)
		if stored == nil {
			return HandleResult{Error: true}
		}
		// A stored card only needs a fresh nonce when step-up is pending
		if p.deps.Payment.ThreeDSecureEnabled && params.ThreeDSecureRequired && params.Nonce == "" {
			return HandleResult{Error: true}
		}
	} else if params.Nonce == "" {
		return HandleResult{Error: true}
	}

	instrument := p.stageInstrument(basket, fromExpressFlow)
	p.attachCommonFields(instrument, params)

	if stored != nil {
		instrument.Token = stored.Token
		instrument.CardType = stored.CardType
		instrument.CardHolder = stored.CardHolder
		instrument.MaskedNumber = stored.MaskedNumber
	} else {
		instrument.CardType = params.CardType
		instrument.CardHolder = params.CardHolder
	}

	return HandleResult{Instrument: instrument}
}

func (p *storedCard) Authorize(ctx context.Context, orderNo string, instrument *domain.PaymentInstrument) AuthorizeResult {
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
	params["billing"] = order.BillingAddress
	params["shipping"] = order.ShippingAddress
	if instrument.ThreeDSecureRequired {
		params["threeDSecureRequired"] = true
	}
	p.level23Params(params, order, false)

	tr, err := p.sale(ctx, params)
	if err != nil {
		return p.authorizeFailed(order, instrument, err)
	}
	instrument.ThreeDSecureStatus = tr.ThreeDSecureStatus
	if instrument.ThreeDSecureRequired && !p.liabilityShifted(tr) {
		return p.authorizeFailed(order, instrument,
			domain.NewGatewayError(domain.ErrorCodeAPIError, "3-D Secure authentication did not shift liability"))
	}
	p.saveCardTransaction(order, instrument, tr)

	if instrument.SaveMethod {
		p.saveStoredCard(order, instrument, tr)
		instrument.SaveMethod = false
	}
	if instrument.MakeDefault {
		p.makeDefaultCard(ctx, order, tr.CreditCard.Token)
		instrument.MakeDefault = false
	}
	return AuthorizeResult{Authorized: true}
}

// liabilityShifted reports whether the gateway accepted fraud liability for
// a step-up authenticated transaction. Merchants that absorb the liability
// themselves disable the check.
func (p *storedCard) liabilityShifted(tr *domain.TransactionResponse) bool {
	if p.deps.Payment.SkipLiabilityCheck {
		return true
	}
	switch tr.ThreeDSecureStatus {
	case "authenticate_successful", "authenticate_attempt_successful":
		return true
	}
	return false
}

func (p *storedCard) saveCardTransaction(order *domain.Order, instrument *domain.PaymentInstrument, tr *domain.TransactionResponse) {
	p.saveTransaction(order, instrument, tr)
	if tr.RiskDecision != "" {
		p.deps.Logger.Info("Gateway risk decision",
			zap.String("order_no", order.OrderNo),
			zap.String("decision", tr.RiskDecision),
		)
	}
	if tr.CreditCard.Token != "" {
		instrument.Token = tr.CreditCard.Token
		instrument.MaskedNumber = surrogateCardNumber(tr.CreditCard.Last4)
		instrument.ExpMonth = tr.CreditCard.ExpirationMonth
		instrument.ExpYear = tr.CreditCard.ExpirationYear
	}
}

// saveStoredCard records the vaulted card in the customer's wallet.
func (p *storedCard) saveStoredCard(order *domain.Order, instrument *domain.PaymentInstrument, tr *domain.TransactionResponse) {
	wallet := customerWallet(order)
	if wallet == nil || tr.CreditCard.Token == "" {
		return
	}
	wallet.Add(&domain.StoredPaymentMethod{
		ID:              uuid.New().String(),
		Method:          domain.MethodCreditCard,
		Token:           tr.CreditCard.Token,
		MaskedNumber:    surrogateCardNumber(tr.CreditCard.Last4),
		CardType:        instrument.CardType,
		CardHolder:      instrument.CardHolder,
		ExpirationMonth: tr.CreditCard.ExpirationMonth,
		ExpirationYear:  tr.CreditCard.ExpirationYear,
	})
}

// makeDefaultCard flips the local default flag and mirrors it to the vault.
func (p *storedCard) makeDefaultCard(ctx context.Context, order *domain.Order, token string) {
	wallet := customerWallet(order)
	if wallet == nil || token == "" {
		return
	}
	if stored := wallet.FindByToken(token); stored != nil {
		wallet.SetDefault(stored)
	}

	req, err := p.deps.Builder.Build(braintree.OpUpdatePaymentMethod, braintree.Params{
		"token":       token,
		"makeDefault": true,
	})
	if err != nil {
		p.deps.Logger.Error("Failed to build default-card update", zap.Error(err))
		return
	}
	if _, err := p.deps.Client.Call(ctx, req); err != nil {
		p.deps.Logger.Error("Failed to mark card default in vault",
			zap.String("token", token),
			zap.Error(err),
		)
	}
}

func (p *storedCard) findStored(basket *domain.Basket, id string) *domain.StoredPaymentMethod {
	wallet := customerWallet(basket)
	if wallet == nil {
		return nil
	}
	for _, spm := range wallet.MethodsOf(domain.MethodCreditCard) {
		if spm.ID == id {
			return spm
		}
	}
	return nil
}

func customerWallet(order *domain.Order) *domain.Wallet {
	if order.Customer == nil {
		return nil
	}
	return order.Customer.Wallet
}

// surrogateCardNumber is a non-reversible placeholder PAN for the stored
// instrument record: a timestamp prefix plus the real last four digits. It
// fills a required display field and has no security meaning.
func surrogateCardNumber(last4 string) string {
	prefix := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(prefix) > 11 {
		prefix = prefix[:11]
	}
	return prefix + last4
}
