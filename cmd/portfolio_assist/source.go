package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"portfolio_assist/internal/ai"
	"portfolio_assist/internal/assessment"
	"portfolio_assist/internal/config"
	"portfolio_assist/internal/logger"
	"portfolio_assist/internal/market"
	"portfolio_assist/internal/market/alpaca"
	"portfolio_assist/internal/market/kraken"
	"portfolio_assist/internal/market/trading212"
	"portfolio_assist/internal/models"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// fetch takes one snapshot from src. A zero timeout leaves the fetch bounded
// only by ctx.
func fetch(ctx context.Context, timeout time.Duration, src market.Source, log zerolog.Logger) (*models.Portfolio, error) {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	return market.Snapshot(ctx, src, log)
}

// sourceCmd runs the whole flow against one data source.
type sourceCmd struct {
	mode     config.Mode
	synopsis string

	top      int
	noAssist bool

	stdin          io.Reader
	stdout, stderr io.Writer

	loadConfig   func() *config.Config
	newSource    func(config.Mode, *config.Config, *config.Mappings, zerolog.Logger) (market.Source, error)
	newAssistant func(context.Context, *config.Config, zerolog.Logger) (assessment.QuestionAnswerer, error)
}

func sourceCommands(stdin io.Reader, stdout, stderr io.Writer) []*sourceCmd {
	synopses := map[config.Mode]string{
		config.ModeTrading212: "Assess the Trading212 equity portfolio.",
		config.ModeKraken:     "Assess the Kraken crypto balances.",
		config.ModeAlpaca:     "Assess the Alpaca brokerage positions.",
		config.ModeMock:       "Assess a fixed sample portfolio, no credentials needed.",
	}
	var cmds []*sourceCmd
	for _, mode := range config.Modes() {
		cmds = append(cmds, &sourceCmd{
			mode:         mode,
			synopsis:     synopses[mode],
			stdin:        stdin,
			stdout:       stdout,
			stderr:       stderr,
			loadConfig:   config.Load,
			newSource:    newSource,
			newAssistant: newGemini,
		})
	}
	return cmds
}

func (c *sourceCmd) Name() string     { return string(c.mode) }
func (c *sourceCmd) Synopsis() string { return c.synopsis }
func (c *sourceCmd) Usage() string {
	return fmt.Sprintf(`%s [-top N] [-no-assist]:
  %s
  Prints the portfolio summary, then answers questions until 'exit'.
`, c.mode, c.synopsis)
}

func (c *sourceCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.top, "top", 0, "print the N largest positions by market value")
	f.BoolVar(&c.noAssist, "no-assist", false, "print the summary and exit without starting the assistant")
}

func (c *sourceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 0 {
		fmt.Fprintf(c.stderr, "%s takes no arguments\n", c.mode)
		return subcommands.ExitUsageError
	}

	cfg := c.loadConfig()
	if err := cfg.Require(c.mode); err != nil {
		fmt.Fprintln(c.stderr, "configuration error:", err)
		return subcommands.ExitFailure
	}
	mappings, err := config.LoadMappings(cfg.MappingsFile)
	if err != nil {
		fmt.Fprintln(c.stderr, "configuration error:", err)
		return subcommands.ExitFailure
	}

	log, closer := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Pretty:     cfg.LogPretty,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Console:    c.stderr,
	})
	defer closer.Close()
	config.LogEnvFile(log)

	src, err := c.newSource(c.mode, cfg, mappings, log)
	if err != nil {
		fmt.Fprintln(c.stderr, "configuration error:", err)
		return subcommands.ExitFailure
	}

	portfolio, err := fetch(ctx, cfg.FetchTimeout, src, log)
	if err != nil {
		fmt.Fprintln(c.stderr, "could not fetch portfolio:", err)
		return subcommands.ExitFailure
	}

	render := newRenderer()
	fmt.Fprint(c.stdout, assessment.Summarize(portfolio))
	if c.top > 0 {
		fmt.Fprint(c.stdout, render(topTable(portfolio, c.top)))
	}
	if c.noAssist {
		return subcommands.ExitSuccess
	}

	qa, err := c.newAssistant(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(c.stderr, "assistant error:", err)
		return subcommands.ExitFailure
	}
	a, err := assessment.New(ctx, qa, portfolio)
	if err != nil {
		fmt.Fprintln(c.stderr, "assistant error:", err)
		return subcommands.ExitFailure
	}
	if err := repl(ctx, a, c.stdin, c.stdout, render); err != nil {
		fmt.Fprintln(c.stderr, "input error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func newSource(mode config.Mode, cfg *config.Config, m *config.Mappings, log zerolog.Logger) (market.Source, error) {
	switch mode {
	case config.ModeMock:
		return market.MockSource{}, nil

	case config.ModeKraken:
		return kraken.NewAdapter(cfg.Kraken.APIKey, cfg.Kraken.PrivateKey, kraken.Options{
			BaseURL: cfg.Kraken.BaseURL,
			Tickers: m.Kraken.Tickers,
			Pairs:   m.Kraken.Pairs,
		}, log), nil

	case config.ModeTrading212:
		classes, err := m.Trading212.AssetClassTable()
		if err != nil {
			return nil, err
		}
		sectors, err := m.Trading212.SectorTable()
		if err != nil {
			return nil, err
		}
		return trading212.NewAdapter(trading212.Credentials{
			BaseURL:   cfg.Trading212.BaseURL,
			AccessKey: cfg.Trading212.AccessKey,
			SecretKey: cfg.Trading212.SecretKey,
		}, trading212.Options{
			Tickers:      m.Trading212.Tickers,
			AssetClasses: classes,
			Sectors:      sectors,
		}, log), nil

	case config.ModeAlpaca:
		classes, err := m.Alpaca.AssetClassTable()
		if err != nil {
			return nil, err
		}
		sectors, err := m.Alpaca.SectorTable()
		if err != nil {
			return nil, err
		}
		return alpaca.NewAdapter(alpaca.Credentials{
			APIKey:    cfg.Alpaca.APIKey,
			APISecret: cfg.Alpaca.APISecret,
			BaseURL:   cfg.Alpaca.BaseURL,
			DataURL:   cfg.Alpaca.DataURL,
		}, alpaca.Options{
			Tickers:      m.Alpaca.Tickers,
			AssetClasses: classes,
			Sectors:      sectors,
		}, log), nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

func newGemini(ctx context.Context, cfg *config.Config, log zerolog.Logger) (assessment.QuestionAnswerer, error) {
	g, err := ai.NewGemini(ctx, ai.Config{APIKey: cfg.Gemini.APIKey, Model: cfg.Gemini.Model}, log)
	if err != nil {
		return nil, err
	}
	return g, nil
}
