package arbitrage

import (
	"context"
	"sort"
	"sync"

	"github.com/kimchiscan/server/internal/domain"
	"golang.org/x/sync/errgroup"
)

// listWorkers bounds the per-symbol fan-out; each computation costs one to
// three pool queries, so the pool (10 conns) must not be saturated by one list
// request.
const listWorkers = 4

// GetDirectionalArbitrageList computes arbitrage for every symbol active on
// both venues and returns the results sorted by raw profit descending.
// Symbols lacking a recent price on either side are silently dropped.
// Output ordering is defined by the final sort, not completion order.
func (c *Calculator) GetDirectionalArbitrageList(
	ctx context.Context,
	from, to string,
	fxSource domain.FxSource,
	includeFees bool,
	limit int,
) ([]domain.DirectionalArbitrage, error) {
	symbols, err := c.prices.CommonSymbols(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		out = make([]domain.DirectionalArbitrage, 0, len(symbols))
	)

	var g errgroup.Group
	g.SetLimit(listWorkers)
	for _, symbol := range symbols {
		g.Go(func() error {
			item, err := c.GetDirectionalArbitrageWithOptions(ctx, Options{
				FromExchange: from,
				FxSource:     fxSource,
				IncludeFees:  includeFees,
				Symbol:       symbol,
				ToExchange:   to,
			})
			if err != nil {
				return nil // individual failures are dropped
			}
			mu.Lock()
			out = append(out, item)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ProfitPercentage.GreaterThan(out[j].ProfitPercentage)
	})

	return out, nil
}
