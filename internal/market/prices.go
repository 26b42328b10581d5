package market

import (
	"maps"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PairResolver decides which quote keys to request for an asset and which
// spellings to probe in the response. Sources rename pairs, so a response may
// answer under a different key than the one requested.
type PairResolver struct {
	// Quote is appended to an unmapped asset to form the generic key, e.g. "USD".
	Quote string
	// Pairs maps an asset to its primary request key.
	Pairs map[string]string
	// Alternates derive further spellings from the request key, probed in order.
	Alternates []func(key string) string
}

// RequestKey is the key to ask the source for.
func (r PairResolver) RequestKey(asset string) string {
	if pair, ok := r.Pairs[asset]; ok {
		return pair
	}
	return asset + r.Quote
}

// Candidates lists the request key then each distinct alternate spelling.
func (r PairResolver) Candidates(asset string) []string {
	key := r.RequestKey(asset)
	out := []string{key}
	for _, alt := range r.Alternates {
		k := alt(key)
		if k == "" || contains(out, k) {
			continue
		}
		out = append(out, k)
	}
	return out
}

// RequestKeys returns the distinct request keys for assets, in order.
func (r PairResolver) RequestKeys(assets []string) []string {
	var out []string
	for _, a := range assets {
		if k := r.RequestKey(a); !contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// With returns a copy whose pair table is extended by extra.
func (r PairResolver) With(extra map[string]string) PairResolver {
	pairs := maps.Clone(r.Pairs)
	if pairs == nil {
		pairs = map[string]string{}
	}
	maps.Copy(pairs, extra)
	r.Pairs = pairs
	return r
}

// Unresolved records an asset no candidate key produced a price for.
type Unresolved struct {
	Asset string
	Tried []string
}

// Resolution is the outcome of matching assets against a quote response.
type Resolution struct {
	Prices     map[string]decimal.Decimal
	Unresolved []Unresolved
}

// Resolve probes lookup with each asset's candidates and keeps the first
// positive price. Zero or negative quotes count as missing.
func (r PairResolver) Resolve(assets []string, lookup func(key string) (decimal.Decimal, bool)) Resolution {
	res := Resolution{Prices: make(map[string]decimal.Decimal, len(assets))}
	for _, asset := range assets {
		candidates := r.Candidates(asset)
		found := false
		for _, key := range candidates {
			if price, ok := lookup(key); ok && price.IsPositive() {
				res.Prices[asset] = price
				found = true
				break
			}
		}
		if !found {
			res.Unresolved = append(res.Unresolved, Unresolved{Asset: asset, Tried: candidates})
		}
	}
	return res
}

// Warn emits one warning per unresolved asset.
func (res Resolution) Warn(log zerolog.Logger) {
	for _, u := range res.Unresolved {
		WarnUnpriced(log, u.Asset, u.Tried)
	}
}

// WarnUnpriced reports an instrument dropped from a portfolio for lack of a price.
func WarnUnpriced(log zerolog.Logger, asset string, tried []string) {
	log.Warn().Str("asset", asset).Strs("tried", tried).Msg("no price found, skipping position")
}

// SwapQuotePrefix rewrites a trailing quote currency into its prefixed form,
// e.g. SwapQuotePrefix("USD", "ZUSD") turns "XBTUSD" into "XBTZUSD".
func SwapQuotePrefix(quote, prefixed string) func(string) string {
	return func(key string) string {
		base, ok := strings.CutSuffix(key, quote)
		if !ok || strings.HasSuffix(base, strings.TrimSuffix(prefixed, quote)) {
			return ""
		}
		return base + prefixed
	}
}

// SlashQuote turns "BTCUSD" into "BTC/USD".
func SlashQuote(quote string) func(string) string {
	return func(key string) string {
		base, ok := strings.CutSuffix(key, quote)
		if !ok || base == "" || strings.HasSuffix(base, "/") {
			return ""
		}
		return base + "/" + quote
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
