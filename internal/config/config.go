package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Mode names a portfolio data source.
type Mode string

const (
	ModeTrading212 Mode = "trading212"
	ModeKraken     Mode = "kraken"
	ModeAlpaca     Mode = "alpaca"
	ModeMock       Mode = "mock"
)

var ErrMissingCredentials = errors.New("missing credentials")

// MissingCredentialsError lists the variables a mode still needs.
type MissingCredentialsError struct {
	Mode    Mode
	Missing []string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("%s mode: missing %s", e.Mode, strings.Join(e.Missing, ", "))
}

func (e *MissingCredentialsError) Unwrap() error { return ErrMissingCredentials }

// secretVars are masked when logged.
var secretVars = map[string]bool{
	"TRADING212_STORAGE_ACCESS_KEY":        true,
	"TRADING212_SECRET_STORAGE_ACCESS_KEY": true,
	"KRAKEN_API_KEY":                       true,
	"KRAKEN_PRIVATE_KEY":                   true,
	"APCA_API_KEY_ID":                      true,
	"APCA_API_SECRET_KEY":                  true,
	"GEMINI_API_KEY":                       true,
}

// requiredVars per mode. Mock needs nothing.
var requiredVars = map[Mode][]string{
	ModeTrading212: {"TRADING212_STORAGE_ACCESS_KEY"},
	ModeKraken:     {"KRAKEN_API_KEY", "KRAKEN_PRIVATE_KEY"},
	ModeAlpaca:     {"APCA_API_KEY_ID", "APCA_API_SECRET_KEY"},
	ModeMock:       nil,
}

type Trading212 struct {
	BaseURL   string
	AccessKey string
	SecretKey string
}

type Kraken struct {
	APIKey     string
	PrivateKey string
	BaseURL    string
}

type Alpaca struct {
	APIKey    string
	APISecret string
	BaseURL   string
	DataURL   string
}

type Gemini struct {
	APIKey string
	Model  string
}

// Config is everything read from the environment.
type Config struct {
	LogLevel      string
	LogPretty     bool
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int

	FetchTimeout time.Duration
	MappingsFile string

	Trading212 Trading212
	Kraken     Kraken
	Alpaca     Alpaca
	Gemini     Gemini
}

// Load reads a .env file when present, then the process environment.
func Load() *Config {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	return &Config{
		LogLevel:      getEnv("PORTFOLIO_LOG_LEVEL", "info"),
		LogPretty:     getEnvAsBool("PORTFOLIO_LOG_PRETTY", true),
		LogFile:       getEnv("PORTFOLIO_LOG_FILE", "portfolio_assist.log"),
		LogMaxSizeMB:  getEnvAsInt("PORTFOLIO_LOG_MAX_SIZE_MB", 5),
		LogMaxBackups: getEnvAsInt("PORTFOLIO_LOG_MAX_BACKUPS", 3),

		FetchTimeout: time.Duration(getEnvAsInt("PORTFOLIO_FETCH_TIMEOUT_SEC", 30)) * time.Second,
		MappingsFile: getEnv("PORTFOLIO_MAPPINGS_FILE", ""),

		Trading212: Trading212{
			BaseURL:   getEnv("TRADING_212_BASE_URL", "https://live.trading212.com"),
			AccessKey: getEnv("TRADING212_STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("TRADING212_SECRET_STORAGE_ACCESS_KEY", ""),
		},
		Kraken: Kraken{
			APIKey:     getEnv("KRAKEN_API_KEY", ""),
			PrivateKey: getEnv("KRAKEN_PRIVATE_KEY", ""),
			BaseURL:    getEnv("KRAKEN_BASE_URL", ""),
		},
		Alpaca: Alpaca{
			APIKey:    getEnv("APCA_API_KEY_ID", ""),
			APISecret: getEnv("APCA_API_SECRET_KEY", ""),
			BaseURL:   getEnv("APCA_API_BASE_URL", ""),
			DataURL:   getEnv("APCA_API_DATA_URL", ""),
		},
		Gemini: Gemini{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
	}
}

// Modes lists the supported modes in display order.
func Modes() []Mode {
	return []Mode{ModeTrading212, ModeKraken, ModeAlpaca, ModeMock}
}

// Require checks that mode has its credentials. The returned error wraps
// ErrMissingCredentials and names every missing variable.
func (c *Config) Require(mode Mode) error {
	vars, ok := requiredVars[mode]
	if !ok {
		return fmt.Errorf("unknown mode %q", mode)
	}
	var missing []string
	for _, key := range vars {
		if c.lookup(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &MissingCredentialsError{Mode: mode, Missing: missing}
	}
	return nil
}

func (c *Config) lookup(key string) string {
	switch key {
	case "TRADING212_STORAGE_ACCESS_KEY":
		return c.Trading212.AccessKey
	case "KRAKEN_API_KEY":
		return c.Kraken.APIKey
	case "KRAKEN_PRIVATE_KEY":
		return c.Kraken.PrivateKey
	case "APCA_API_KEY_ID":
		return c.Alpaca.APIKey
	case "APCA_API_SECRET_KEY":
		return c.Alpaca.APISecret
	}
	return ""
}

// LogEnvFile prints the variables defined in .env, secrets masked.
func LogEnvFile(log zerolog.Logger) {
	envMap, err := godotenv.Read()
	if err != nil {
		log.Debug().Msg("no .env file found, using system environment variables")
		return
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		val := envMap[key]
		if secretVars[key] {
			val = mask(val)
		}
		log.Info().Str("key", key).Str("value", val).Msg(".env variable")
	}
}

// mask shows only the last 4 characters.
func mask(val string) string {
	if len(val) > 4 {
		return "***" + val[len(val)-4:]
	}
	return "***"
}
