package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"portfolio_assist/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment cannot
// leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range []string{
		"PORTFOLIO_LOG_LEVEL", "PORTFOLIO_LOG_PRETTY", "PORTFOLIO_LOG_FILE",
		"PORTFOLIO_LOG_MAX_SIZE_MB", "PORTFOLIO_LOG_MAX_BACKUPS",
		"PORTFOLIO_FETCH_TIMEOUT_SEC", "PORTFOLIO_MAPPINGS_FILE",
		"TRADING_212_BASE_URL", "TRADING212_STORAGE_ACCESS_KEY", "TRADING212_SECRET_STORAGE_ACCESS_KEY",
		"KRAKEN_API_KEY", "KRAKEN_PRIVATE_KEY", "KRAKEN_BASE_URL",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY", "APCA_API_BASE_URL", "APCA_API_DATA_URL",
		"GEMINI_API_KEY", "GEMINI_MODEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 5, cfg.LogMaxSizeMB)
	assert.Equal(t, 3, cfg.LogMaxBackups)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "https://live.trading212.com", cfg.Trading212.BaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Empty(t, cfg.MappingsFile)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORTFOLIO_LOG_MAX_SIZE_MB", "20")
	t.Setenv("PORTFOLIO_FETCH_TIMEOUT_SEC", "not-a-number")
	t.Setenv("PORTFOLIO_LOG_PRETTY", "false")
	t.Setenv("KRAKEN_API_KEY", "k")

	cfg := Load()
	assert.Equal(t, 20, cfg.LogMaxSizeMB)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, "k", cfg.Kraken.APIKey)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("KRAKEN_API_KEY=from-file\nPORTFOLIO_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("KRAKEN_API_KEY")
		os.Unsetenv("PORTFOLIO_LOG_LEVEL")
	})

	cfg := Load()
	assert.Equal(t, "from-file", cfg.Kraken.APIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestRequire(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.NoError(t, cfg.Require(ModeMock))

	err := cfg.Require(ModeKraken)
	require.ErrorIs(t, err, ErrMissingCredentials)
	var missing *MissingCredentialsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"KRAKEN_API_KEY", "KRAKEN_PRIVATE_KEY"}, missing.Missing)
	assert.Equal(t, "kraken mode: missing KRAKEN_API_KEY, KRAKEN_PRIVATE_KEY", err.Error())

	cfg.Alpaca.APIKey = "id"
	err = cfg.Require(ModeAlpaca)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"APCA_API_SECRET_KEY"}, missing.Missing)

	cfg.Trading212.AccessKey = "pre-encoded"
	assert.NoError(t, cfg.Require(ModeTrading212))

	assert.Error(t, cfg.Require(Mode("ibkr")))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "***cret", mask("secret"))
	assert.Equal(t, "***1234", mask("abcd1234"))
	assert.Equal(t, "***", mask("1234"))
}

func TestParseMappings(t *testing.T) {
	m, err := ParseMappings([]byte(`
kraken:
  tickers: {XXDG: DOGE}
  pairs: {WIF: WIFUSD}
trading212:
  asset_classes: {"equity fund": ETF}
  sectors: {semis: technology}
alpaca:
  sectors: {O: real estate}
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"WIF": "WIFUSD"}, m.Kraken.Pairs)
	assert.Equal(t, map[string]string{"XXDG": "DOGE"}, m.Kraken.Tickers)

	classes, err := m.Trading212.AssetClassTable()
	require.NoError(t, err)
	assert.Equal(t, map[string]models.AssetClass{"equity fund": models.AssetClassETF}, classes)

	sectors, err := m.Alpaca.SectorTable()
	require.NoError(t, err)
	assert.Equal(t, map[string]models.Sector{"O": models.SectorRealEstate}, sectors)

	empty, err := m.Kraken.SectorTable()
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestParseMappings_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown source": "ibkr: {}",
		"unknown field":  "kraken: {symbols: {}}",
		"bad class":      "trading212: {asset_classes: {x: warrant}}",
		"bad sector":     "alpaca: {sectors: {AAPL: semis}}",
		"not yaml":       "kraken: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMappings([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidMapping)
		})
	}
}

func TestLoadMappings(t *testing.T) {
	m, err := LoadMappings("")
	require.NoError(t, err)
	assert.Empty(t, m.Kraken.Tickers)

	path := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kraken:\n  tickers:\n    XXDG: DOGE\n"), 0o600))
	m, err = LoadMappings(path)
	require.NoError(t, err)
	assert.Equal(t, "DOGE", m.Kraken.Tickers["XXDG"])

	_, err = LoadMappings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = LoadMappings(empty)
	assert.NoError(t, err)
}
