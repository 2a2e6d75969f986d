package arbitrage

import "github.com/shopspring/decimal"

// FeeBreakdown carries percent-point fees except Withdrawal, which is in coin
// units. Known limitation inherited from the first version of this model:
// Withdrawal is computed but not folded into Total, because converting coin
// units into a percent of notional needs a price the model does not take.
type FeeBreakdown struct {
	Exchange   decimal.Decimal
	Total      decimal.Decimal
	Trading    decimal.Decimal
	Withdrawal decimal.Decimal
}

var (
	// 0.1% per side, charged on both the buy and the sell.
	tradingFee = decimal.NewFromFloat(0.1)
	// FX conversion surcharge.
	exchangeFee = decimal.NewFromFloat(0.05)

	withdrawalFees = map[string]decimal.Decimal{
		"BTC": decimal.NewFromFloat(0.0005),
		"ETH": decimal.NewFromFloat(0.005),
	}
	defaultWithdrawalFee = decimal.NewFromFloat(0.001)
)

// feesFor returns the fee model for one symbol.
// Total = trading × 2 + exchange = 0.25 percent-points.
func feesFor(symbol string) FeeBreakdown {
	withdrawal, ok := withdrawalFees[symbol]
	if !ok {
		withdrawal = defaultWithdrawalFee
	}

	return FeeBreakdown{
		Exchange:   exchangeFee,
		Total:      tradingFee.Mul(decimal.NewFromInt(2)).Add(exchangeFee),
		Trading:    tradingFee,
		Withdrawal: withdrawal,
	}
}
