//go:build integration

package alpaca

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestIntegration_FetchPortfolio(t *testing.T) {
	key := os.Getenv("TEST_APCA_API_KEY_ID")
	secret := os.Getenv("TEST_APCA_API_SECRET_KEY")
	if key == "" || secret == "" {
		t.Skip("Skipping integration test: TEST_APCA credentials not set")
	}
	url := os.Getenv("TEST_APCA_API_BASE_URL")
	if url == "" {
		url = "https://paper-api.alpaca.markets"
	}

	a := NewAdapter(Credentials{APIKey: key, APISecret: secret, BaseURL: url}, Options{}, zerolog.New(zerolog.NewTestWriter(t)))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, err := a.FetchPortfolio(ctx)
	require.NoError(t, err)
	for _, pos := range p.Positions() {
		require.False(t, pos.CurrentPrice().IsZero(), "%s has no price", pos.Ticker())
	}
	t.Logf("%d positions, total %s", p.Len(), p.TotalValue())
}
