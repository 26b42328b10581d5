package market

import (
	"context"
	"time"

	"portfolio_assist/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Source is implemented once per external data source (brokerage, exchange,
// mock). Each call is an independent snapshot; implementations keep no state
// between calls, so the same Source can be shared.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	// FetchPortfolio returns a fresh Portfolio. Transport failures match
	// ErrSourceUnavailable, undecodable payloads ErrMalformedResponse.
	FetchPortfolio(ctx context.Context) (*models.Portfolio, error)
}

// Snapshot fetches src under a fresh correlation id. The id and source name
// travel in the context logger so adapter diagnostics can be tied to the fetch.
func Snapshot(ctx context.Context, src Source, log zerolog.Logger) (*models.Portfolio, error) {
	l := log.With().
		Str("source", src.Name()).
		Str("fetch_id", uuid.NewString()).
		Logger()

	start := time.Now()
	l.Info().Msg("fetching portfolio")

	p, err := src.FetchPortfolio(l.WithContext(ctx))
	if err != nil {
		l.Error().Err(err).Dur("took", time.Since(start)).Msg("portfolio fetch failed")
		return nil, err
	}

	l.Info().
		Int("positions", p.Len()).
		Str("total_value", p.TotalValue().String()).
		Str("total_pnl", p.TotalPnL().String()).
		Dur("took", time.Since(start)).
		Msg("portfolio fetched")
	return p, nil
}

// ContextLogger returns the logger carried by ctx, or fallback when ctx has none.
func ContextLogger(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return fallback
}
