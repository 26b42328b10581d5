package market

import (
	"context"

	"portfolio_assist/internal/models"
)

// MockSource serves a fixed three-position portfolio without touching the
// network. It backs the CLI's mock mode and end-to-end tests.
type MockSource struct{}

var _ Source = MockSource{}

func (MockSource) Name() string { return "mock" }

func (MockSource) FetchPortfolio(ctx context.Context) (*models.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("mock", err)
	}
	holdings := []struct {
		symbol       string
		qty          int64
		avg, current int64
		class        models.AssetClass
		sector       models.Sector
	}{
		{"AAPL", 10, 150, 195, models.AssetClassStock, models.SectorTechnology},
		{"MSFT", 5, 250, 380, models.AssetClassStock, models.SectorTechnology},
		{"BTC", 2, 30000, 43000, models.AssetClassCrypto, models.SectorOther},
	}

	var b models.Builder
	for _, h := range holdings {
		ticker, err := models.NewTicker(h.symbol)
		if err != nil {
			return nil, Malformed("mock", err)
		}
		b.Add(models.NewPosition(ticker, models.Q(h.qty), models.P(h.avg), models.P(h.current), h.class, h.sector))
	}
	return b.Build(), nil
}
