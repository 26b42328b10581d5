package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"portfolio_assist/internal/assessment"
	"portfolio_assist/internal/config"
	"portfolio_assist/internal/market"
	"portfolio_assist/internal/models"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnswerer struct {
	questions []string
	answers   map[string]string
	fail      string
}

func (f *fakeAnswerer) Ask(_ context.Context, q string) (string, error) {
	f.questions = append(f.questions, q)
	if q == f.fail {
		return "", errors.New("no idea")
	}
	if a, ok := f.answers[q]; ok {
		return a, nil
	}
	return "Noted.", nil
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }

func (failingSource) FetchPortfolio(context.Context) (*models.Portfolio, error) {
	return nil, market.Unavailable("broken", errors.New("connection refused"))
}

type ctxSource struct{ ctx context.Context }

func (*ctxSource) Name() string { return "ctx" }

func (s *ctxSource) FetchPortfolio(ctx context.Context) (*models.Portfolio, error) {
	s.ctx = ctx
	return models.NewPortfolio(), nil
}

func TestFetchReleasesContext(t *testing.T) {
	for name, timeout := range map[string]time.Duration{"no timeout": 0, "timeout": time.Minute} {
		t.Run(name, func(t *testing.T) {
			src := &ctxSource{}
			_, err := fetch(context.Background(), timeout, src, zerolog.Nop())
			require.NoError(t, err)
			require.NotNil(t, src.ctx)

			_, hasDeadline := src.ctx.Deadline()
			assert.Equal(t, timeout > 0, hasDeadline)
			assert.ErrorIs(t, src.ctx.Err(), context.Canceled)
		})
	}
}

type harness struct {
	stdin          *strings.Reader
	stdout, stderr bytes.Buffer
	cfg            *config.Config
	qa             *fakeAnswerer
	source         market.Source
	sourcesBuilt   int
}

func newHarness(input string) *harness {
	return &harness{
		stdin: strings.NewReader(input),
		cfg:   &config.Config{LogLevel: "warn"},
		qa: &fakeAnswerer{
			answers: map[string]string{"What is my PnL?": "You are up $27,100."},
			fail:    "something else",
		},
	}
}

// run executes the CLI with args, swapping the environment, source factory and
// assistant for test doubles.
func (h *harness) run(t *testing.T, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet("portfolio_assist", flag.ContinueOnError)
	commander := subcommands.NewCommander(fs, "portfolio_assist")
	commander.Output = &h.stdout
	commander.Error = &h.stderr
	for _, c := range sourceCommands(h.stdin, &h.stdout, &h.stderr) {
		c.loadConfig = func() *config.Config { return h.cfg }
		c.newSource = func(mode config.Mode, cfg *config.Config, m *config.Mappings, log zerolog.Logger) (market.Source, error) {
			h.sourcesBuilt++
			if h.source != nil {
				return h.source, nil
			}
			return newSource(mode, cfg, m, log)
		}
		c.newAssistant = func(context.Context, *config.Config, zerolog.Logger) (assessment.QuestionAnswerer, error) {
			return h.qa, nil
		}
		commander.Register(c, "sources")
	}
	require.NoError(t, fs.Parse(args))
	return commander.Execute(context.Background())
}

func TestNoModePrintsUsage(t *testing.T) {
	h := newHarness("")
	var stderr bytes.Buffer
	fs := flag.NewFlagSet("portfolio_assist", flag.ContinueOnError)
	commander := newCommander(fs, "portfolio_assist", h.stdin, &h.stdout, &stderr)

	assert.Equal(t, subcommands.ExitUsageError, commander.Execute(context.Background()))
	for _, mode := range []string{"trading212", "kraken", "alpaca", "mock"} {
		assert.Contains(t, stderr.String(), mode)
	}
}

func TestMissingCredentials(t *testing.T) {
	for _, mode := range []string{"trading212", "kraken", "alpaca"} {
		t.Run(mode, func(t *testing.T) {
			h := newHarness("")
			assert.Equal(t, subcommands.ExitFailure, h.run(t, mode))
			assert.Contains(t, h.stderr.String(), "configuration error")
			assert.Contains(t, h.stderr.String(), "missing")
			assert.Zero(t, h.sourcesBuilt)
			assert.Empty(t, h.stdout.String())
		})
	}
}

func TestMockNoAssist(t *testing.T) {
	h := newHarness("")
	assert.Equal(t, subcommands.ExitSuccess, h.run(t, "mock", "-no-assist"))

	out := h.stdout.String()
	assert.Contains(t, out, "Total value: $89,850.00")
	assert.Contains(t, out, "Cost basis: $62,750.00")
	assert.Contains(t, out, "Unrealized PnL: $27,100.00")
	assert.Empty(t, h.qa.questions)
	assert.Equal(t, 1, h.sourcesBuilt)
}

func TestMockTopPositions(t *testing.T) {
	h := newHarness("")
	assert.Equal(t, subcommands.ExitSuccess, h.run(t, "mock", "-no-assist", "-top", "1"))

	_, table, found := strings.Cut(h.stdout.String(), "Position count: 3")
	require.True(t, found)
	assert.Contains(t, table, "BTC")
	assert.NotContains(t, table, "AAPL")
}

func TestMockConversation(t *testing.T) {
	h := newHarness("What is my PnL?\n\nsomething else\nEXIT\nnever asked\n")
	assert.Equal(t, subcommands.ExitSuccess, h.run(t, "mock"))

	require.Len(t, h.qa.questions, 3)
	assert.Contains(t, h.qa.questions[0], "Portfolio summary (3 positions)", "summary is seeded first")
	assert.Equal(t, []string{"What is my PnL?", "something else"}, h.qa.questions[1:])

	out := h.stdout.String()
	assert.Contains(t, out, "27,100")
	assert.Contains(t, out, "error: no idea")
}

func TestFetchFailure(t *testing.T) {
	h := newHarness("")
	h.source = failingSource{}
	assert.Equal(t, subcommands.ExitFailure, h.run(t, "mock"))
	assert.Contains(t, h.stderr.String(), "could not fetch portfolio: broken: source unavailable: connection refused")
	assert.Empty(t, h.qa.questions)
}

func TestBadMappingsFile(t *testing.T) {
	h := newHarness("")
	h.cfg.MappingsFile = t.TempDir() + "/missing.yaml"
	assert.Equal(t, subcommands.ExitFailure, h.run(t, "mock"))
	assert.Contains(t, h.stderr.String(), "configuration error")
}

func TestRepl_EOFWithoutNewline(t *testing.T) {
	qa := &fakeAnswerer{answers: map[string]string{"last": "answered"}}
	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), qa, strings.NewReader("last"), &out, plain))
	assert.Equal(t, []string{"last"}, qa.questions)
	assert.Contains(t, out.String(), "answered\n")
}

func TestRepl_Quit(t *testing.T) {
	qa := &fakeAnswerer{}
	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), qa, strings.NewReader("  quit  \nignored\n"), &out, plain))
	assert.Empty(t, qa.questions)
}

func TestTopTable(t *testing.T) {
	p := models.NewPortfolio(
		models.NewPosition(mustTicker(t, "A"), models.Q(1), models.P(1), models.P(2), models.AssetClassStock, models.SectorOther),
		models.NewPosition(mustTicker(t, "B"), models.Q(1), models.P(1), models.P(5), models.AssetClassStock, models.SectorOther),
	)
	got := topTable(p, 5)
	assert.Contains(t, got, "| 1 | B | 1 | 5 | $5.00 | $4.00 |")
	assert.Contains(t, got, "| 2 | A | 1 | 2 | $2.00 | $1.00 |")
}

func mustTicker(t *testing.T, s string) models.Ticker {
	t.Helper()
	tk, err := models.NewTicker(s)
	require.NoError(t, err)
	return tk
}
