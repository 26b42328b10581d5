package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"portfolio_assist/internal/market"
	"portfolio_assist/internal/models"

	"gopkg.in/yaml.v3"
)

var ErrInvalidMapping = errors.New("invalid mapping")

// SourceMappings extends one adapter's built-in tables.
type SourceMappings struct {
	Tickers      map[string]string `yaml:"tickers"`
	Pairs        map[string]string `yaml:"pairs"`
	AssetClasses map[string]string `yaml:"asset_classes"`
	Sectors      map[string]string `yaml:"sectors"`
}

// Mappings is the file named by PORTFOLIO_MAPPINGS_FILE:
//
//	kraken:
//	  tickers: {XXDG: DOGE}
//	  pairs: {WIF: WIFUSD}
//	trading212:
//	  asset_classes: {"equity fund": etf}
//	alpaca:
//	  sectors: {AAPL: technology}
type Mappings struct {
	Trading212 SourceMappings `yaml:"trading212"`
	Kraken     SourceMappings `yaml:"kraken"`
	Alpaca     SourceMappings `yaml:"alpaca"`
}

// LoadMappings reads path. An empty path yields empty mappings.
func LoadMappings(path string) (*Mappings, error) {
	if path == "" {
		return &Mappings{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}
	return ParseMappings(data)
}

// ParseMappings decodes YAML, rejecting unknown keys and values that name no
// asset class or sector.
func ParseMappings(data []byte) (*Mappings, error) {
	var m Mappings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMapping, err)
	}
	for name, sm := range map[string]SourceMappings{"trading212": m.Trading212, "kraken": m.Kraken, "alpaca": m.Alpaca} {
		if _, err := sm.AssetClassTable(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if _, err := sm.SectorTable(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return &m, nil
}

// AssetClassTable resolves the asset class names.
func (m SourceMappings) AssetClassTable() (map[string]models.AssetClass, error) {
	return resolve(m.AssetClasses, market.AssetClasses, "asset class")
}

// SectorTable resolves the sector names.
func (m SourceMappings) SectorTable() (map[string]models.Sector, error) {
	return resolve(m.Sectors, market.Sectors, "sector")
}

func resolve[T any](raw map[string]string, names market.Classifier[T], what string) (map[string]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]T, len(raw))
	for k, v := range raw {
		t, ok := names.Lookup(v)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a known %s (key %q)", ErrInvalidMapping, v, what, k)
		}
		out[k] = t
	}
	return out, nil
}
