// Package alpaca normalizes Alpaca brokerage positions into a Portfolio.
package alpaca

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"portfolio_assist/internal/market"
	"portfolio_assist/internal/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const sourceName = "alpaca"

// DefaultAssetClasses maps Alpaca's asset_class values.
var DefaultAssetClasses = market.NewClassifier(map[string]models.AssetClass{
	"us_equity": models.AssetClassStock,
	"crypto":    models.AssetClassCrypto,
}, models.AssetClassOther)

// DefaultCryptoTickers drops the quote currency from crypto symbols
// (BTCUSD, BTC/USD -> BTC).
var DefaultCryptoTickers = market.TickerMap{
	Fallback: func(code string) string {
		if base, ok := strings.CutSuffix(code, "/USD"); ok {
			return base
		}
		if base, ok := strings.CutSuffix(code, "USD"); ok && base != "" {
			return base
		}
		return code
	},
}

// cryptoPairs probes a crypto symbol as held and in the slash form the data
// API keys its answers by.
var cryptoPairs = market.PairResolver{
	Alternates: []func(string) string{market.SlashQuote("USD")},
}

var stockPairs = market.PairResolver{}

// positionLister is the slice of the trading client the adapter needs.
type positionLister interface {
	GetPositions() ([]alpaca.Position, error)
}

// tradeQuoter is the slice of the market data client the adapter needs.
type tradeQuoter interface {
	GetLatestTrades(symbols []string, req marketdata.GetLatestTradeRequest) (map[string]marketdata.Trade, error)
	GetLatestCryptoTrades(symbols []string, req marketdata.GetLatestCryptoTradeRequest) (map[string]marketdata.CryptoTrade, error)
}

var (
	_ positionLister = (*alpaca.Client)(nil)
	_ tradeQuoter    = (*marketdata.Client)(nil)
)

// Credentials identify an Alpaca account. Empty URLs use the SDK defaults.
type Credentials struct {
	APIKey    string
	APISecret string
	BaseURL   string
	DataURL   string
}

// Options tunes an Adapter.
type Options struct {
	Tickers      map[string]string
	AssetClasses map[string]models.AssetClass
	// Sectors maps canonical tickers to a sector; Alpaca reports none.
	Sectors map[string]models.Sector
}

// Adapter is the brokerage Source for Alpaca.
type Adapter struct {
	trading positionLister
	data    tradeQuoter
	stocks  market.TickerMap
	crypto  market.TickerMap
	classes market.Classifier[models.AssetClass]
	sectors market.Classifier[models.Sector]
	log     zerolog.Logger
}

var _ market.Source = (*Adapter)(nil)

func NewAdapter(creds Credentials, opts Options, log zerolog.Logger) *Adapter {
	trading := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    creds.APIKey,
		APISecret: creds.APISecret,
		BaseURL:   creds.BaseURL,
	})
	data := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    creds.APIKey,
		APISecret: creds.APISecret,
		BaseURL:   creds.DataURL,
	})
	return newAdapter(trading, data, opts, log)
}

func newAdapter(trading positionLister, data tradeQuoter, opts Options, log zerolog.Logger) *Adapter {
	return &Adapter{
		trading: trading,
		data:    data,
		stocks:  market.TickerMap{}.With(opts.Tickers),
		crypto:  DefaultCryptoTickers.With(opts.Tickers),
		classes: DefaultAssetClasses.With(opts.AssetClasses),
		sectors: market.NewClassifier(opts.Sectors, models.SectorOther),
		log:     log.With().Str("component", sourceName).Logger(),
	}
}

func (a *Adapter) Name() string { return sourceName }

// FetchPortfolio lists open positions. Positions the broker reports without
// a current price are priced from the latest trade.
func (a *Adapter) FetchPortfolio(ctx context.Context) (*models.Portfolio, error) {
	log := market.ContextLogger(ctx, a.log)
	if err := ctx.Err(); err != nil {
		return nil, market.Unavailable(sourceName, err)
	}

	positions, err := a.trading.GetPositions()
	if err != nil {
		return nil, market.Unavailable(sourceName, err)
	}

	var stocks, crypto []string
	for _, p := range positions {
		if p.CurrentPrice != nil && p.CurrentPrice.IsPositive() {
			continue
		}
		if a.isCrypto(p) {
			crypto = append(crypto, p.Symbol)
		} else {
			stocks = append(stocks, p.Symbol)
		}
	}
	prices, err := a.latestPrices(stocks, crypto, log)
	if err != nil {
		return nil, market.Unavailable(sourceName, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, market.Unavailable(sourceName, err)
	}

	var b models.Builder
	for _, p := range positions {
		current, ok := currentPrice(p, prices)
		if !ok {
			continue
		}
		pos, err := a.position(p, current)
		if err != nil {
			return nil, market.Malformed(sourceName, err)
		}
		b.Add(pos)
	}
	return b.Build(), nil
}

func (a *Adapter) isCrypto(p alpaca.Position) bool {
	return a.classes.Classify(string(p.AssetClass)) == models.AssetClassCrypto
}

func currentPrice(p alpaca.Position, fallback map[string]decimal.Decimal) (decimal.Decimal, bool) {
	if p.CurrentPrice != nil && p.CurrentPrice.IsPositive() {
		return *p.CurrentPrice, true
	}
	price, ok := fallback[p.Symbol]
	return price, ok
}

func (a *Adapter) position(p alpaca.Position, current decimal.Decimal) (models.Position, error) {
	class := a.classes.Classify(string(p.AssetClass))
	tickers := a.stocks
	if class == models.AssetClassCrypto {
		tickers = a.crypto
	}
	ticker, err := tickers.Normalize(p.Symbol)
	if err != nil {
		return models.Position{}, err
	}
	avg, err := models.NewPrice(p.AvgEntryPrice)
	if err != nil {
		return models.Position{}, err
	}
	price, err := models.NewPrice(current)
	if err != nil {
		return models.Position{}, err
	}
	return models.NewPosition(ticker, models.NewQuantity(p.Qty), avg, price, class, a.sectors.Classify(ticker.Symbol())), nil
}

// latestPrices runs the stock and crypto lookups side by side. A failed bulk
// call fails the whole lookup; symbols missing from a successful response are
// left unresolved.
func (a *Adapter) latestPrices(stocks, crypto []string, log zerolog.Logger) (map[string]decimal.Decimal, error) {
	var (
		wg                sync.WaitGroup
		stockRes, coinRes market.Resolution
		stockErr, coinErr error
	)
	if len(stocks) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stockRes, stockErr = a.stockPrices(stocks)
		}()
	}
	if len(crypto) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			coinRes, coinErr = a.cryptoPrices(crypto)
		}()
	}
	wg.Wait()
	if err := errors.Join(stockErr, coinErr); err != nil {
		return nil, err
	}

	stockRes.Warn(log)
	coinRes.Warn(log)

	prices := make(map[string]decimal.Decimal, len(stocks)+len(crypto))
	for _, res := range []market.Resolution{stockRes, coinRes} {
		for symbol, price := range res.Prices {
			prices[symbol] = price
		}
	}
	return prices, nil
}

func (a *Adapter) stockPrices(symbols []string) (market.Resolution, error) {
	trades, err := a.data.GetLatestTrades(stockPairs.RequestKeys(symbols), marketdata.GetLatestTradeRequest{})
	if err != nil {
		return market.Resolution{}, fmt.Errorf("latest stock trades: %w", err)
	}
	return stockPairs.Resolve(symbols, func(key string) (decimal.Decimal, bool) {
		t, ok := trades[key]
		return decimal.NewFromFloat(t.Price), ok
	}), nil
}

func (a *Adapter) cryptoPrices(symbols []string) (market.Resolution, error) {
	var keys []string
	for _, s := range symbols {
		c := cryptoPairs.Candidates(s)
		keys = append(keys, c[len(c)-1])
	}
	trades, err := a.data.GetLatestCryptoTrades(keys, marketdata.GetLatestCryptoTradeRequest{})
	if err != nil {
		return market.Resolution{}, fmt.Errorf("latest crypto trades: %w", err)
	}
	return cryptoPairs.Resolve(symbols, func(key string) (decimal.Decimal, bool) {
		t, ok := trades[key]
		return decimal.NewFromFloat(t.Price), ok
	}), nil
}
