package main

import (
	"fmt"
	"strings"

	"portfolio_assist/internal/models"

	"github.com/charmbracelet/glamour"
)

const wordWrap = 100

// newRenderer returns a markdown-to-terminal renderer. When glamour cannot
// render, text is printed as is.
func newRenderer() func(string) string {
	tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wordWrap))
	if err != nil {
		return plain
	}
	return func(md string) string {
		out, err := tr.Render(md)
		if err != nil {
			return plain(md)
		}
		return out
	}
}

func plain(text string) string {
	if strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}

// topTable lists the n largest positions as a markdown table.
func topTable(p *models.Portfolio, n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n## Top %d positions\n\n", n)
	sb.WriteString("| # | Ticker | Quantity | Price | Value | PnL |\n")
	sb.WriteString("|---|---|---:|---:|---:|---:|\n")
	for i, pos := range p.TopPositions(n) {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s |\n",
			i+1, pos.Ticker(), pos.Quantity(), pos.CurrentPrice(), pos.MarketValue(), pos.PnL())
	}
	return sb.String()
}
