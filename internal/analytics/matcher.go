package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"tradelens/internal/models"
)

// commissionMode selects how commission is charged against realized P&L.
type commissionMode int

const (
	// commissionAggregate leaves realized amounts gross. The caller
	// subtracts the scope's total commission once, after matching.
	commissionAggregate commissionMode = iota
	// commissionPerFill nets each closing fill's own commission out of the
	// realized amount that fill produced. Opening fills contribute none.
	commissionPerFill
)

// openPosition is the residue left after matching one instrument's fills.
// Qty is signed: positive for a long, negative for a short.
type openPosition struct {
	Qty      decimal.Decimal
	AvgPrice decimal.Decimal
}

// sortFills orders fills by execution time. Equal timestamps are broken by
// side, then price, then quantity, so matching is deterministic for any
// permutation of the input.
func sortFills(fills []models.TradeRecord) {
	sort.SliceStable(fills, func(i, j int) bool {
		a, b := fills[i], fills[j]
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		if a.Side != b.Side {
			return a.Side == models.SideBuy
		}
		if c := a.FillPrice.Cmp(b.FillPrice); c != 0 {
			return c < 0
		}
		return a.Quantity.Cmp(b.Quantity) < 0
	})
}

// matchFills reconciles one instrument's fills into realized P&L amounts
// using average-price position tracking. A buy against a short or a sell
// against a long closes up to the open quantity and realizes the price
// difference times the closed quantity; the remainder of the fill opens or
// extends a position at a blended average price. Sell quantity in excess of
// the open long is dropped and reported through the sink, never turned into
// a short. A non-flat position at the end is reported as unclosed.
//
// The returned amounts are in fill order, one entry per closing fill.
func matchFills(fills []models.TradeRecord, mode commissionMode, sink Sink) ([]decimal.Decimal, openPosition) {
	if len(fills) == 0 {
		return nil, openPosition{Qty: decimal.Zero, AvgPrice: decimal.Zero}
	}

	sorted := make([]models.TradeRecord, len(fills))
	copy(sorted, fills)
	sortFills(sorted)

	position := decimal.Zero
	avgPrice := decimal.Zero
	var realized []decimal.Decimal

	for _, fill := range sorted {
		switch fill.Side {
		case models.SideBuy:
			switch {
			case position.IsNegative():
				// Cover the short, at most down to flat.
				qtyToClose := decimal.Min(fill.Quantity, position.Neg())
				pnl := avgPrice.Sub(fill.FillPrice).Mul(qtyToClose)
				if mode == commissionPerFill {
					pnl = pnl.Sub(fill.Commission)
				}
				realized = append(realized, pnl)
				position = position.Add(qtyToClose)

				if remaining := fill.Quantity.Sub(qtyToClose); remaining.IsPositive() {
					// Flip: the leftover quantity opens a long at this fill's price.
					position = remaining
					avgPrice = fill.FillPrice
				} else if position.IsZero() {
					avgPrice = decimal.Zero
				}
			case position.IsZero():
				position = fill.Quantity
				avgPrice = fill.FillPrice
			default:
				// Extend the long at a blended average price.
				totalValue := avgPrice.Mul(position).Add(fill.FillPrice.Mul(fill.Quantity))
				position = position.Add(fill.Quantity)
				avgPrice = totalValue.Div(position)
			}
		case models.SideSell:
			switch {
			case position.IsPositive():
				qtyToClose := decimal.Min(fill.Quantity, position)
				pnl := fill.FillPrice.Sub(avgPrice).Mul(qtyToClose)
				if mode == commissionPerFill {
					pnl = pnl.Sub(fill.Commission)
				}
				realized = append(realized, pnl)
				position = position.Sub(qtyToClose)

				if excess := fill.Quantity.Sub(qtyToClose); excess.IsPositive() {
					sink.Emit(Diagnostic{
						Kind:     DiagOverselling,
						Symbol:   fill.Symbol,
						Date:     fill.DateUTC(),
						Side:     fill.Side,
						Quantity: excess,
						Price:    fill.FillPrice,
					})
				}
				if position.IsZero() {
					avgPrice = decimal.Zero
				}
			case position.IsZero():
				position = fill.Quantity.Neg()
				avgPrice = fill.FillPrice
			default:
				// Extend the short at a blended average price.
				totalValue := avgPrice.Mul(position.Neg()).Add(fill.FillPrice.Mul(fill.Quantity))
				position = position.Sub(fill.Quantity)
				avgPrice = totalValue.Div(position.Neg())
			}
		}
	}

	if !position.IsZero() {
		sink.Emit(Diagnostic{
			Kind:     DiagUnclosed,
			Symbol:   sorted[0].Symbol,
			Date:     sorted[0].DateUTC(),
			Quantity: position,
			Price:    avgPrice,
		})
	}
	return realized, openPosition{Qty: position, AvgPrice: avgPrice}
}
