// Package kraken normalizes Kraken exchange balances into a Portfolio.
package kraken

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"portfolio_assist/internal/market"
	"portfolio_assist/internal/models"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultTickers maps Kraken asset codes to display tickers. Codes without an
// entry lose the legacy X prefix of 4-letter codes (XETH -> ETH).
var DefaultTickers = market.TickerMap{
	Table: map[string]string{
		"XXBT": "BTC",
		"XBT":  "BTC",
		"XXDG": "DOGE",
		"XDG":  "DOGE",
	},
	Fallback: stripLegacyPrefix,
}

// DefaultPairs knows the USD pair names Kraken expects for common assets and
// probes the renamed spellings it answers under.
var DefaultPairs = market.PairResolver{
	Quote: "USD",
	Pairs: map[string]string{
		"XXBT":  "XBTUSD",
		"XETH":  "XETHZUSD",
		"PEPE":  "PEPEUSD",
		"SOL":   "SOLUSD",
		"ADA":   "ADAUSD",
		"DOT":   "DOTUSD",
		"MATIC": "MATICUSD",
		"LINK":  "LINKUSD",
	},
	Alternates: []func(string) string{
		market.SwapQuotePrefix("USD", "ZUSD"),
		legacyPair,
	},
}

func stripLegacyPrefix(code string) string {
	if len(code) == 4 && strings.HasPrefix(code, "X") {
		return code[1:]
	}
	return code
}

// legacyPair spells a 3-letter base in Kraken's legacy pair form: XBTUSD -> XXBTZUSD.
func legacyPair(key string) string {
	base, ok := strings.CutSuffix(key, "USD")
	if !ok || len(base) != 3 {
		return ""
	}
	return "X" + base + "ZUSD"
}

// Options tunes an Adapter. Zero values use the defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// Tickers and Pairs extend DefaultTickers and DefaultPairs.
	Tickers map[string]string
	Pairs   map[string]string
}

// Adapter is the exchange Source for Kraken.
type Adapter struct {
	client  *Client
	tickers market.TickerMap
	pairs   market.PairResolver
	log     zerolog.Logger
}

var _ market.Source = (*Adapter)(nil)

func NewAdapter(apiKey, privateKey string, opts Options, log zerolog.Logger) *Adapter {
	return &Adapter{
		client:  NewClient(apiKey, privateKey, opts.BaseURL, opts.HTTPClient),
		tickers: DefaultTickers.With(opts.Tickers),
		pairs:   DefaultPairs.With(opts.Pairs),
		log:     log.With().Str("component", sourceName).Logger(),
	}
}

func (a *Adapter) Name() string { return sourceName }

// FetchPortfolio reads balances, prices every crypto holding with one Ticker
// call and builds the Portfolio. Kraken reports no cost basis, so the average
// price is the current price.
func (a *Adapter) FetchPortfolio(ctx context.Context) (*models.Portfolio, error) {
	log := market.ContextLogger(ctx, a.log)

	balances, err := a.client.Balance(ctx)
	if err != nil {
		return nil, err
	}

	// Fiat balances start with Z (ZUSD, ZEUR).
	var assets []string
	for code, qty := range balances {
		if strings.HasPrefix(code, "Z") || !qty.IsPositive() {
			continue
		}
		assets = append(assets, code)
	}
	sort.Strings(assets)
	if len(assets) == 0 {
		return models.NewPortfolio(), nil
	}

	body, errs, err := a.client.Ticker(ctx, a.pairs.RequestKeys(assets))
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		log.Warn().Strs("errors", errs).Msg("ticker query returned errors")
	}

	res := a.pairs.Resolve(assets, func(key string) (decimal.Decimal, bool) {
		return lastTrade(body, key)
	})
	res.Warn(log)

	var b models.Builder
	for _, code := range assets {
		last, ok := res.Prices[code]
		if !ok {
			continue
		}
		ticker, err := a.tickers.Normalize(code)
		if err != nil {
			return nil, market.Malformed(sourceName, fmt.Errorf("asset %q: %w", code, err))
		}
		price, err := models.NewPrice(last)
		if err != nil {
			return nil, market.Malformed(sourceName, fmt.Errorf("asset %q: %w", code, err))
		}
		b.Add(models.NewPosition(ticker, models.NewQuantity(balances[code]), price, price, models.AssetClassCrypto, models.SectorOther))
	}
	return b.Build(), nil
}

// lastTrade reads result.<pair>.c[0], the last trade price.
func lastTrade(body any, pair string) (decimal.Decimal, bool) {
	v, err := jsonpath.Get(fmt.Sprintf("$.result[%q].c[0]", pair), body)
	if err != nil {
		return decimal.Zero, false
	}
	// jsonpath may wrap a single match in a list.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return decimal.Zero, false
		}
		v = list[0]
	}
	var price decimal.Decimal
	switch x := v.(type) {
	case string:
		price, err = decimal.NewFromString(x)
	case float64:
		price = decimal.NewFromFloat(x)
	default:
		return decimal.Zero, false
	}
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}
