package market

import (
	"maps"
	"strings"

	"portfolio_assist/internal/models"
)

// Classifier maps free-text labels onto a closed enumeration. Lookups are
// case-insensitive and treat spaces and dashes like underscores. Anything
// unknown maps to the fallback; classification never fails.
type Classifier[T any] struct {
	table    map[string]T
	fallback T
}

func NewClassifier[T any](table map[string]T, fallback T) Classifier[T] {
	c := Classifier[T]{table: make(map[string]T, len(table)), fallback: fallback}
	for k, v := range table {
		c.table[normalizeLabel(k)] = v
	}
	return c
}

// Classify returns the value for raw, or the fallback.
func (c Classifier[T]) Classify(raw string) T {
	if v, ok := c.Lookup(raw); ok {
		return v
	}
	return c.fallback
}

// Lookup reports whether raw has an explicit table entry.
func (c Classifier[T]) Lookup(raw string) (T, bool) {
	v, ok := c.table[normalizeLabel(raw)]
	return v, ok
}

// With returns a copy extended (or overridden) by extra.
func (c Classifier[T]) With(extra map[string]T) Classifier[T] {
	out := Classifier[T]{table: maps.Clone(c.table), fallback: c.fallback}
	if out.table == nil {
		out.table = map[string]T{}
	}
	for k, v := range extra {
		out.table[normalizeLabel(k)] = v
	}
	return out
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// AssetClasses is the shared table for generic asset-class labels.
var AssetClasses = NewClassifier(map[string]models.AssetClass{
	"stock":     models.AssetClassStock,
	"equity":    models.AssetClassStock,
	"etf":       models.AssetClassETF,
	"crypto":    models.AssetClassCrypto,
	"bond":      models.AssetClassBond,
	"commodity": models.AssetClassCommodity,
	"cash":      models.AssetClassCash,
	"other":     models.AssetClassOther,
}, models.AssetClassOther)

// Sectors is the shared table for sector labels.
var Sectors = NewClassifier(map[string]models.Sector{
	"technology":    models.SectorTechnology,
	"healthcare":    models.SectorHealthcare,
	"financial":     models.SectorFinancial,
	"consumer":      models.SectorConsumer,
	"energy":        models.SectorEnergy,
	"industrial":    models.SectorIndustrial,
	"utilities":     models.SectorUtilities,
	"real_estate":   models.SectorRealEstate,
	"communication": models.SectorCommunication,
	"materials":     models.SectorMaterials,
	"other":         models.SectorOther,
}, models.SectorOther)

// TickerMap turns source-native instrument codes into canonical tickers:
// an exact Table entry wins, otherwise Fallback (when set) rewrites the code.
type TickerMap struct {
	Table    map[string]string
	Fallback func(code string) string
}

// Normalize returns the canonical ticker for code.
func (m TickerMap) Normalize(code string) (models.Ticker, error) {
	code = strings.TrimSpace(code)
	if t, ok := m.Table[code]; ok {
		return models.NewTicker(t)
	}
	if m.Fallback != nil {
		return models.NewTicker(m.Fallback(code))
	}
	return models.NewTicker(code)
}

// With returns a copy whose table is extended by extra.
func (m TickerMap) With(extra map[string]string) TickerMap {
	table := maps.Clone(m.Table)
	if table == nil {
		table = map[string]string{}
	}
	maps.Copy(table, extra)
	return TickerMap{Table: table, Fallback: m.Fallback}
}
