// Package tax implements gross/net/tax decomposition. The rounding rule
// is fixed: amounts are rounded to the cent half away from zero
// (round-half-up for the non-negative amounts the engine accepts). The
// rate used at booking time is kept on the booked document, so historical
// splits survive later rate changes.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/kontor-dev/kontor/internal/apperr"
	"github.com/kontor-dev/kontor/internal/money"
)

// Key is a tax rate with a code, e.g. UST19 at 19%.
type Key struct {
	Code string
	Name string
	Rate decimal.Decimal // percent, e.g. 19
}

// DefaultKeys returns the German VAT keys the default chart refers to.
func DefaultKeys() []Key {
	return []Key{
		{Code: "UST19", Name: "Umsatzsteuer 19%", Rate: decimal.NewFromInt(19)},
		{Code: "UST7", Name: "Umsatzsteuer 7%", Rate: decimal.NewFromInt(7)},
		{Code: "VST19", Name: "Vorsteuer 19%", Rate: decimal.NewFromInt(19)},
		{Code: "VST7", Name: "Vorsteuer 7%", Rate: decimal.NewFromInt(7)},
		{Code: "UST0", Name: "Steuerfrei", Rate: decimal.Zero},
	}
}

// Engine resolves tax keys and performs splits.
type Engine struct {
	keys  map[string]Key
	order []Key
}

// NewEngine creates an Engine from a set of keys.
func NewEngine(keys []Key) *Engine {
	byCode := make(map[string]Key, len(keys))
	for _, k := range keys {
		byCode[k.Code] = k
	}
	return &Engine{keys: byCode, order: keys}
}

// Lookup returns the key for a code.
func (e *Engine) Lookup(code string) (Key, error) {
	k, ok := e.keys[code]
	if !ok {
		return Key{}, apperr.Newf(apperr.KindValidation, "unknown tax key %q", code)
	}
	return k, nil
}

// Keys returns all keys in registration order.
func (e *Engine) Keys() []Key {
	return e.order
}

var hundred = decimal.NewFromInt(100)

// SplitGross decomposes a gross amount into net and tax:
// net = gross / (1 + rate/100), tax = gross - net. The two parts always
// reconcile exactly to the gross amount.
func SplitGross(gross money.Cents, rate decimal.Decimal) (net, tax money.Cents, err error) {
	if gross < 0 {
		return 0, 0, apperr.New(apperr.KindValidation, "gross amount must not be negative")
	}
	divisor := decimal.NewFromInt(1).Add(rate.Div(hundred))
	netDec := gross.Decimal().DivRound(divisor, 2)
	net = money.FromDecimal(netDec)
	return net, gross - net, nil
}

// SplitFromNet is the inverse of SplitGross:
// tax = net * rate/100, gross = net + tax. The round trip
// SplitGross(SplitFromNet(net).gross).net stays within one cent of net.
func SplitFromNet(net money.Cents, rate decimal.Decimal) (gross, tax money.Cents, err error) {
	if net < 0 {
		return 0, 0, apperr.New(apperr.KindValidation, "net amount must not be negative")
	}
	taxDec := net.Decimal().Mul(rate).DivRound(hundred, 2)
	tax = money.FromDecimal(taxDec)
	return net + tax, tax, nil
}

// SplitGrossKey is SplitGross with the rate looked up from a key code.
func (e *Engine) SplitGrossKey(gross money.Cents, keyCode string) (net, tax money.Cents, err error) {
	k, err := e.Lookup(keyCode)
	if err != nil {
		return 0, 0, err
	}
	return SplitGross(gross, k.Rate)
}
