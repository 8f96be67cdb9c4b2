package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is a single executed fill. Records are immutable values: the
// engine never mutates them, it only groups and folds them.
type TradeRecord struct {
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	FillPrice  decimal.Decimal `json:"fill_price"`
	Time       time.Time       `json:"time"`
	NetAmount  decimal.Decimal `json:"net_amount"`
	Commission decimal.Decimal `json:"commission"`
}

// TradeKey is the identity of a fill for deduplication. NetAmount and
// Commission are deliberately excluded: two exports of the same fill can
// disagree on fee rounding but still describe one execution.
type TradeKey struct {
	Symbol    string
	Side      Side
	Quantity  string
	FillPrice string
	Time      int64
}

// Key returns the deduplication identity of the record. Decimals are keyed
// by their canonical string form so 10 and 10.0 collapse to one key.
func (t TradeRecord) Key() TradeKey {
	return TradeKey{
		Symbol:    t.Symbol,
		Side:      t.Side,
		Quantity:  t.Quantity.String(),
		FillPrice: t.FillPrice.String(),
		Time:      t.Time.Unix(),
	}
}

// GrossPnL is the signed cash effect of this single fill before commission:
// negative NetAmount for a Buy (cash out), positive for a Sell (cash in).
func (t TradeRecord) GrossPnL() decimal.Decimal {
	if t.Side == SideBuy {
		return t.NetAmount.Neg()
	}
	return t.NetAmount
}

// NetPnL is GrossPnL minus this fill's own commission.
func (t TradeRecord) NetPnL() decimal.Decimal {
	return t.GrossPnL().Sub(t.Commission)
}

// Hour returns the UTC hour-of-day (0-23) of the execution.
func (t TradeRecord) Hour() int {
	return t.Time.UTC().Hour()
}

// DateUTC returns the execution date normalized to UTC midnight.
func (t TradeRecord) DateUTC() time.Time {
	y, m, d := t.Time.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Notional is Quantity × FillPrice, the gross dollar volume of the fill.
func (t TradeRecord) Notional() decimal.Decimal {
	return t.Quantity.Mul(t.FillPrice)
}

// Validate checks the preconditions the engine assumes of every record.
// The parser enforces these at ingestion; the engine re-checks so that a
// caller bypassing ingestion fails fast instead of producing wrong P&L.
func (t TradeRecord) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("empty symbol")
	}
	if t.Side != SideBuy && t.Side != SideSell {
		return fmt.Errorf("unresolved side %q", t.Side)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("quantity %s is not positive", t.Quantity)
	}
	if t.FillPrice.IsNegative() {
		return fmt.Errorf("fill price %s is negative", t.FillPrice)
	}
	if t.Commission.IsNegative() {
		return fmt.Errorf("commission %s is negative", t.Commission)
	}
	if t.Time.IsZero() {
		return fmt.Errorf("zero execution time")
	}
	return nil
}
