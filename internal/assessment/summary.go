package assessment

import (
	"fmt"
	"strings"

	"portfolio_assist/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summarize renders p as plain text for an assistant's context. The output
// depends only on p, so the same portfolio always yields the same bytes.
func Summarize(p *models.Portfolio) string {
	var sb strings.Builder
	total := p.TotalValue()

	fmt.Fprintf(&sb, "Portfolio summary (%d positions)\n", p.Len())
	sb.WriteString("\nPositions:\n")
	for _, pos := range p.Positions() {
		fmt.Fprintf(&sb, "- %s qty=%s price=%s value=%s class=%s sector=%s\n",
			pos.Ticker(), pos.Quantity(), pos.CurrentPrice(), pos.MarketValue(), pos.AssetClass(), pos.Sector())
	}

	sb.WriteString("\nAllocation by asset class:\n")
	for _, a := range p.AllocationByAssetClass() {
		writeAllocation(&sb, a.Key.String(), a.Value, a.Count, total)
	}
	sb.WriteString("\nAllocation by sector:\n")
	for _, a := range p.AllocationBySector() {
		writeAllocation(&sb, a.Key.String(), a.Value, a.Count, total)
	}

	fmt.Fprintf(&sb, "\nTotal value: %s\n", total)
	fmt.Fprintf(&sb, "Cost basis: %s\n", p.TotalCostBasis())
	fmt.Fprintf(&sb, "Unrealized PnL: %s\n", p.TotalPnL())
	fmt.Fprintf(&sb, "Position count: %d\n", p.Len())
	return sb.String()
}

func writeAllocation(sb *strings.Builder, key string, value models.Money, count int, total models.Money) {
	share := "n/a"
	if !total.IsZero() {
		share = value.Amount().Div(total.Amount()).Mul(hundred).StringFixed(1) + "%"
	}
	fmt.Fprintf(sb, "- %s: %s (%s, %d positions)\n", key, value, share, count)
}
