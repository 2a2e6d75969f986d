package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kimchiscan/server/internal/domain"
	"github.com/kimchiscan/server/internal/fxrate"
	"github.com/shopspring/decimal"
)

// ErrPriceNotFound is returned when one side of the pair has no price inside
// the freshness window.
var ErrPriceNotFound = errors.New("no recent price")

var (
	hundred = decimal.NewFromInt(100)
	usdt    = "USDT"
)

// PriceReader is the latest-per-exchange view the calculator joins over.
type PriceReader interface {
	LatestPriceVolumePerExchange(ctx context.Context, symbol string) ([]domain.VenuePrice, error)
	CommonSymbols(ctx context.Context, from, to string, limit int) ([]string, error)
}

// FxReader serves the persisted USD/KRW reference rate.
type FxReader interface {
	GetLatestUsdKrwRate(ctx context.Context) (decimal.Decimal, error)
}

// KimchiStore appends and reads the premium time series.
type KimchiStore interface {
	InsertKimchi(ctx context.Context, p domain.KimchiPoint) error
	QueryKimchi(ctx context.Context, symbol, from, to string, minutes int) ([]domain.KimchiPoint, error)
}

// Calculator computes directional arbitrage over the latest-per-exchange
// price view with KRW normalization.
type Calculator struct {
	fx     FxReader
	kimchi KimchiStore
	prices PriceReader

	now func() time.Time
}

func NewCalculator(prices PriceReader, fx FxReader, kimchi KimchiStore) *Calculator {
	return &Calculator{
		fx:     fx,
		kimchi: kimchi,
		now:    time.Now,
		prices: prices,
	}
}

// Options selects one directional computation.
type Options struct {
	FromExchange string
	FxSource     domain.FxSource
	IncludeFees  bool
	Symbol       string
	ToExchange   string
}

// GetDirectionalArbitrage computes with the historical defaults: the
// market-implied USDT rate and fees included.
func (c *Calculator) GetDirectionalArbitrage(ctx context.Context, symbol, from, to string) (domain.DirectionalArbitrage, error) {
	return c.GetDirectionalArbitrageWithOptions(ctx, Options{
		FromExchange: from,
		FxSource:     domain.FxUsdtKrw,
		IncludeFees:  true,
		Symbol:       symbol,
		ToExchange:   to,
	})
}

// GetDirectionalArbitrageWithOptions joins both sides' latest prices,
// normalizes to KRW, and computes the premium and fee-adjusted profit.
func (c *Calculator) GetDirectionalArbitrageWithOptions(ctx context.Context, opts Options) (domain.DirectionalArbitrage, error) {
	symbol := strings.ToUpper(opts.Symbol)

	venuePrices, err := c.prices.LatestPriceVolumePerExchange(ctx, symbol)
	if err != nil {
		return domain.DirectionalArbitrage{}, err
	}

	fromSide, ok := findVenue(venuePrices, opts.FromExchange)
	if !ok {
		return domain.DirectionalArbitrage{}, fmt.Errorf("%w for %s on %s", ErrPriceNotFound, symbol, opts.FromExchange)
	}
	toSide, ok := findVenue(venuePrices, opts.ToExchange)
	if !ok {
		return domain.DirectionalArbitrage{}, fmt.Errorf("%w for %s on %s", ErrPriceNotFound, symbol, opts.ToExchange)
	}

	fxRate := c.resolveFxRate(ctx, opts.FxSource)

	// Only the Binance side is USD(T)-quoted; domestic sides pass through.
	fromPrice := normalizeToKrw(fromSide.Price, opts.FromExchange, fxRate)
	toPrice := normalizeToKrw(toSide.Price, opts.ToExchange, fxRate)

	priceDifference := toPrice.Sub(fromPrice)
	profitPercentage := priceDifference.Div(fromPrice).Mul(hundred)

	totalFees := decimal.Zero
	if opts.IncludeFees {
		totalFees = feesFor(symbol).Total
	}
	afterFees := profitPercentage.Sub(totalFees)

	return domain.DirectionalArbitrage{
		Symbol:                   symbol,
		FromExchange:             opts.FromExchange,
		ToExchange:               opts.ToExchange,
		FromPrice:                fromPrice,
		ToPrice:                  toPrice,
		PriceDifference:          priceDifference,
		ProfitPercentage:         profitPercentage,
		EstimatedProfitAfterFees: afterFees,
		TotalFees:                totalFees,
		IsProfitable:             afterFees.GreaterThan(decimal.Zero),
		FxType:                   opts.FxSource,
		FxRate:                   fxRate,
		FromVolume24h:            fromSide.Volume24h,
		ToVolume24h:              toSide.Volume24h,
		FromNotional24h:          notional(fromPrice, fromSide.Volume24h),
		ToNotional24h:            notional(toPrice, toSide.Volume24h),
	}, nil
}

// resolveFxRate picks the conversion rate for the requested source.
// usdtkrw prefers a recent domestic USDT quote and falls through to the
// reference rate; the returned arbitrage keeps the requested FxType label
// either way. Total failure lands on the hardcoded fallback.
func (c *Calculator) resolveFxRate(ctx context.Context, source domain.FxSource) decimal.Decimal {
	if source == domain.FxUsdtKrw {
		if rate, err := c.usdtKrwPrice(ctx); err == nil {
			return rate
		}
	}

	rate, err := c.fx.GetLatestUsdKrwRate(ctx)
	if err != nil {
		slog.Warn("usd/krw rate unavailable, using fallback", "error", err)
		return fxrate.FallbackUsdKrw
	}
	return rate
}

// usdtKrwPrice returns the first domestic venue's recent USDT price,
// preferring Upbit over Bithumb.
func (c *Calculator) usdtKrwPrice(ctx context.Context) (decimal.Decimal, error) {
	venuePrices, err := c.prices.LatestPriceVolumePerExchange(ctx, usdt)
	if err != nil {
		return decimal.Decimal{}, err
	}

	for _, venue := range []string{domain.ExchangeUpbit, domain.ExchangeBithumb} {
		if vp, ok := findVenue(venuePrices, venue); ok {
			return vp.Price, nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("%w for %s on domestic venues", ErrPriceNotFound, usdt)
}

func normalizeToKrw(price decimal.Decimal, venue string, fxRate decimal.Decimal) decimal.Decimal {
	if venue == domain.ExchangeBinance {
		return price.Mul(fxRate)
	}
	return price
}

func notional(price decimal.Decimal, volume decimal.NullDecimal) decimal.NullDecimal {
	if !volume.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: price.Mul(volume.Decimal), Valid: true}
}

func findVenue(prices []domain.VenuePrice, name string) (domain.VenuePrice, bool) {
	for _, vp := range prices {
		if vp.Exchange == name {
			return vp, true
		}
	}
	return domain.VenuePrice{}, false
}
