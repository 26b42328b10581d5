package market

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolio_assist/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSource_Scenario(t *testing.T) {
	p, err := MockSource{}.FetchPortfolio(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, p.Len())
	assert.True(t, p.TotalValue().Equal(models.USD(decimal.NewFromInt(89850))))
	assert.True(t, p.TotalCostBasis().Equal(models.USD(decimal.NewFromInt(62750))))
	assert.True(t, p.TotalPnL().Equal(models.USD(decimal.NewFromInt(27100))))
	assert.Equal(t, "BTC", p.TopPositions(1)[0].Ticker().Symbol())
}

func TestMockSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := MockSource{}.FetchPortfolio(ctx)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingSource struct{ err error }

func (failingSource) Name() string { return "failing" }
func (f failingSource) FetchPortfolio(context.Context) (*models.Portfolio, error) {
	return nil, f.err
}

type loggingSource struct{}

func (loggingSource) Name() string { return "logging" }
func (loggingSource) FetchPortfolio(ctx context.Context) (*models.Portfolio, error) {
	l := ContextLogger(ctx, zerolog.Nop())
	l.Warn().Msg("from adapter")
	return models.NewPortfolio(), nil
}

func TestSnapshot(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	p, err := Snapshot(context.Background(), MockSource{}, log)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
	assert.Contains(t, buf.String(), `"source":"mock"`)
	assert.Contains(t, buf.String(), `"fetch_id":"`)
	assert.Contains(t, buf.String(), `"positions":3`)

	buf.Reset()
	_, err = Snapshot(context.Background(), loggingSource{}, log)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"source":"logging"`)
	assert.Contains(t, buf.String(), "from adapter")

	cause := Unavailable("failing", errors.New("boom"))
	_, err = Snapshot(context.Background(), failingSource{err: cause}, log)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestSourceError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := fmt.Errorf("fetch: %w", Malformed("kraken", cause))

	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)

	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "kraken", se.Source)
	assert.Equal(t, "kraken: malformed response: unexpected EOF", se.Error())
}

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			fmt.Fprint(w, `{"a":1}`)
		case "/bad":
			fmt.Fprint(w, `{"a":`)
		default:
			http.Error(w, "denied", http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	get := func(path string, out any) error {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		return DoJSON(srv.Client(), "test", req, out)
	}

	var out map[string]int
	require.NoError(t, get("/ok", &out))
	assert.Equal(t, 1, out["a"])

	assert.ErrorIs(t, get("/bad", &out), ErrMalformedResponse)

	err := get("/auth", &out)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "401")
}

func TestDoJSON_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	err = DoJSON(srv.Client(), "test", req, &struct{}{})
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}
