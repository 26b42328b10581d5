package models

// Position is one held instrument at a point in time.
//
// A Position never changes after construction; a new price means a new
// snapshot, so every valuation stays reproducible.
type Position struct {
	ticker       Ticker
	quantity     Quantity
	avgPrice     Price
	currentPrice Price
	assetClass   AssetClass
	sector       Sector
}

func NewPosition(ticker Ticker, quantity Quantity, avgPrice, currentPrice Price, assetClass AssetClass, sector Sector) Position {
	return Position{
		ticker:       ticker,
		quantity:     quantity,
		avgPrice:     avgPrice,
		currentPrice: currentPrice,
		assetClass:   assetClass,
		sector:       sector,
	}
}

func (p Position) Ticker() Ticker         { return p.ticker }
func (p Position) Quantity() Quantity     { return p.quantity }
func (p Position) AvgPrice() Price        { return p.avgPrice }
func (p Position) CurrentPrice() Price    { return p.currentPrice }
func (p Position) AssetClass() AssetClass { return p.assetClass }
func (p Position) Sector() Sector         { return p.sector }

// MarketValue is currentPrice × quantity.
func (p Position) MarketValue() Money { return p.currentPrice.Times(p.quantity) }

// CostBasis is avgPrice × quantity.
func (p Position) CostBasis() Money { return p.avgPrice.Times(p.quantity) }

// PnL is the unrealized profit or loss: MarketValue − CostBasis.
func (p Position) PnL() Money { return p.MarketValue().Sub(p.CostBasis()) }

// Equal compares every stored field.
func (p Position) Equal(o Position) bool {
	return p.ticker == o.ticker &&
		p.quantity.Equal(o.quantity) &&
		p.avgPrice.Equal(o.avgPrice) &&
		p.currentPrice.Equal(o.currentPrice) &&
		p.assetClass == o.assetClass &&
		p.sector == o.sector
}
