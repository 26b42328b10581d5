package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Portfolio is an immutable, ordered snapshot of positions. Order is the
// order the source produced them in.
type Portfolio struct {
	positions []Position
}

// NewPortfolio copies positions into a new Portfolio.
func NewPortfolio(positions ...Position) *Portfolio {
	return &Portfolio{positions: slices.Clone(positions)}
}

// Builder accumulates positions for a Portfolio. It is append-only.
type Builder struct {
	positions []Position
}

func (b *Builder) Add(p Position) { b.positions = append(b.positions, p) }
func (b *Builder) Len() int       { return len(b.positions) }

// Build returns a Portfolio owning its own copy of the positions added so far.
func (b *Builder) Build() *Portfolio { return NewPortfolio(b.positions...) }

func (p *Portfolio) Len() int { return len(p.positions) }

// Positions returns a copy of the positions in insertion order.
func (p *Portfolio) Positions() []Position { return slices.Clone(p.positions) }

// TotalValue sums market values; zero for an empty portfolio.
func (p *Portfolio) TotalValue() Money {
	return p.sum(Position.MarketValue)
}

// TotalCostBasis sums cost bases; zero for an empty portfolio.
func (p *Portfolio) TotalCostBasis() Money {
	return p.sum(Position.CostBasis)
}

// TotalPnL is TotalValue − TotalCostBasis.
func (p *Portfolio) TotalPnL() Money {
	return p.TotalValue().Sub(p.TotalCostBasis())
}

func (p *Portfolio) sum(f func(Position) Money) Money {
	total := USD(decimal.Zero)
	for _, pos := range p.positions {
		total = total.Add(f(pos))
	}
	return total
}

// ByAssetClass returns the positions of class c, in order.
func (p *Portfolio) ByAssetClass(c AssetClass) []Position {
	return p.filter(func(pos Position) bool { return pos.assetClass == c })
}

// BySector returns the positions in sector s, in order.
func (p *Portfolio) BySector(s Sector) []Position {
	return p.filter(func(pos Position) bool { return pos.sector == s })
}

func (p *Portfolio) filter(keep func(Position) bool) []Position {
	out := []Position{}
	for _, pos := range p.positions {
		if keep(pos) {
			out = append(out, pos)
		}
	}
	return out
}

// TopPositions returns up to limit positions by descending market value.
// Equal values keep their insertion order.
func (p *Portfolio) TopPositions(limit int) []Position {
	if limit <= 0 {
		return []Position{}
	}
	sorted := slices.Clone(p.positions)
	slices.SortStableFunc(sorted, func(a, b Position) int {
		return b.MarketValue().Amount().Cmp(a.MarketValue().Amount())
	})
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// Allocation is the combined market value of the positions sharing Key.
type Allocation[K comparable] struct {
	Key   K
	Value Money
	Count int
}

// AllocationByAssetClass groups market value per asset class, first-seen order.
func (p *Portfolio) AllocationByAssetClass() []Allocation[AssetClass] {
	return allocate(p.positions, Position.AssetClass)
}

// AllocationBySector groups market value per sector, first-seen order.
func (p *Portfolio) AllocationBySector() []Allocation[Sector] {
	return allocate(p.positions, Position.Sector)
}

func allocate[K comparable](positions []Position, key func(Position) K) []Allocation[K] {
	out := []Allocation[K]{}
	index := map[K]int{}
	for _, pos := range positions {
		k := key(pos)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Allocation[K]{Key: k, Value: USD(decimal.Zero)})
		}
		out[i].Value = out[i].Value.Add(pos.MarketValue())
		out[i].Count++
	}
	return out
}
