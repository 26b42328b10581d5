// Package trading212 normalizes Trading212 equity positions into a Portfolio.
package trading212

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"portfolio_assist/internal/market"
	"portfolio_assist/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const sourceName = "trading212"

// DefaultTickers cuts the instrument suffix Trading212 appends to symbols
// (AAPL_US_EQ -> AAPL).
var DefaultTickers = market.TickerMap{
	Fallback: func(code string) string {
		symbol, _, _ := strings.Cut(code, "_")
		return symbol
	},
}

// Credentials identify a Trading212 account. BaseURL only selects the demo or
// live environment.
type Credentials struct {
	BaseURL   string
	AccessKey string
	SecretKey string
}

// Options tunes an Adapter. Zero values use the defaults.
type Options struct {
	// Endpoint replaces the computed API root, e.g. for a local test server.
	Endpoint     string
	HTTPClient   *http.Client
	Tickers      map[string]string
	AssetClasses map[string]models.AssetClass
	Sectors      map[string]models.Sector
}

// Adapter is the brokerage Source for Trading212.
type Adapter struct {
	endpoint string
	auth     string
	http     *http.Client
	tickers  market.TickerMap
	classes  market.Classifier[models.AssetClass]
	sectors  market.Classifier[models.Sector]
	log      zerolog.Logger
}

var _ market.Source = (*Adapter)(nil)

func NewAdapter(creds Credentials, opts Options, log zerolog.Logger) *Adapter {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = "https://" + hostFor(creds.BaseURL) + "/api/v0"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{
		endpoint: strings.TrimRight(endpoint, "/"),
		auth:     authHeader(creds.AccessKey, creds.SecretKey),
		http:     client,
		tickers:  DefaultTickers.With(opts.Tickers),
		classes:  market.AssetClasses.With(opts.AssetClasses),
		sectors:  market.Sectors.With(opts.Sectors),
		log:      log.With().Str("component", sourceName).Logger(),
	}
}

func hostFor(baseURL string) string {
	if strings.Contains(strings.ToLower(baseURL), "demo") {
		return "demo.trading212.com"
	}
	return "live.trading212.com"
}

// authHeader builds Basic credentials from key:secret. Without a secret the
// key is taken as already encoded.
func authHeader(key, secret string) string {
	if secret != "" {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(key+":"+secret))
	}
	if strings.HasPrefix(key, "Basic ") {
		return key
	}
	return "Basic " + key
}

func (a *Adapter) Name() string { return sourceName }

// FetchPortfolio reads the open equity positions.
func (a *Adapter) FetchPortfolio(ctx context.Context) (*models.Portfolio, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"/equity/portfolio", nil)
	if err != nil {
		return nil, market.Unavailable(sourceName, err)
	}
	req.Header.Set("Authorization", a.auth)

	var raw []rawPosition
	if err := market.DoJSON(a.http, sourceName, req, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, market.Malformed(sourceName, errors.New("expected a list of positions"))
	}
	return a.normalize(raw, market.ContextLogger(ctx, a.log))
}

// rawPosition is one record of /equity/portfolio.
type rawPosition struct {
	Ticker       string           `json:"ticker"`
	Quantity     *decimal.Decimal `json:"quantity"`
	AveragePrice *decimal.Decimal `json:"averagePrice"`
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
	AssetClass   label            `json:"asset_class"`
	Sector       label            `json:"sector"`
}

// label is a best-effort classification string: non-string JSON values
// decode to empty instead of failing the whole payload.
type label string

func (l *label) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*l = ""
		return nil
	}
	*l = label(s)
	return nil
}

func (a *Adapter) normalize(raw []rawPosition, log zerolog.Logger) (*models.Portfolio, error) {
	var b models.Builder
	for i, r := range raw {
		if r.Quantity == nil || r.AveragePrice == nil {
			return nil, market.Malformed(sourceName, fmt.Errorf("position %d (%q): missing quantity or averagePrice", i, r.Ticker))
		}
		ticker, err := a.tickers.Normalize(r.Ticker)
		if err != nil {
			return nil, market.Malformed(sourceName, fmt.Errorf("position %d: %w", i, err))
		}
		if r.CurrentPrice == nil || !r.CurrentPrice.IsPositive() {
			market.WarnUnpriced(log, r.Ticker, []string{"currentPrice"})
			continue
		}
		avg, err := models.NewPrice(*r.AveragePrice)
		if err != nil {
			return nil, market.Malformed(sourceName, fmt.Errorf("position %d (%q): %w", i, r.Ticker, err))
		}
		current, err := models.NewPrice(*r.CurrentPrice)
		if err != nil {
			return nil, market.Malformed(sourceName, fmt.Errorf("position %d (%q): %w", i, r.Ticker, err))
		}

		b.Add(models.NewPosition(
			ticker,
			models.NewQuantity(*r.Quantity),
			avg,
			current,
			a.classes.Classify(string(r.AssetClass)),
			a.sectors.Classify(string(r.Sector)),
		))
	}
	return b.Build(), nil
}
