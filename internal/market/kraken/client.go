package kraken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio_assist/internal/market"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the Kraken REST endpoint.
const DefaultBaseURL = "https://api.kraken.com"

const sourceName = "kraken"

// Client is a minimal Kraken REST client: one private and one public call.
type Client struct {
	apiKey     string
	privateKey string
	baseURL    string
	http       *http.Client
	nonce      func() int64
}

// NewClient builds a client. privateKey is the base64 secret Kraken issues.
func NewClient(apiKey, privateKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:     apiKey,
		privateKey: privateKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       httpClient,
		nonce:      func() int64 { return time.Now().UnixMilli() },
	}
}

// envelope is the wrapper around every Kraken response.
type envelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Balance returns the account balances keyed by Kraken asset code.
func (c *Client) Balance(ctx context.Context) (map[string]decimal.Decimal, error) {
	const path = "/0/private/Balance"

	form := url.Values{"nonce": {strconv.FormatInt(c.nonce(), 10)}}
	sig, err := c.sign(path, form)
	if err != nil {
		return nil, market.Unavailable(sourceName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, market.Unavailable(sourceName, err)
	}
	req.Header.Set("API-Key", c.apiKey)
	req.Header.Set("API-Sign", sig)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var env envelope
	if err := market.DoJSON(c.http, sourceName, req, &env); err != nil {
		return nil, err
	}
	if len(env.Error) > 0 {
		return nil, market.Unavailable(sourceName, fmt.Errorf("Balance: %s", strings.Join(env.Error, "; ")))
	}

	var balances map[string]decimal.Decimal
	if err := json.Unmarshal(env.Result, &balances); err != nil {
		return nil, market.Malformed(sourceName, fmt.Errorf("Balance result: %w", err))
	}
	if balances == nil {
		return nil, market.Malformed(sourceName, errors.New("Balance: missing result"))
	}
	return balances, nil
}

// Ticker queries all pairs in one call and returns the decoded body together
// with the error list Kraken attached to it. Kraken rejects the whole batch
// when a single pair is unknown, so a non-empty list is not fatal.
func (c *Client) Ticker(ctx context.Context, pairs []string) (any, []string, error) {
	addr := c.baseURL + "/0/public/Ticker?pair=" + url.QueryEscape(strings.Join(pairs, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, nil, market.Unavailable(sourceName, err)
	}

	var body any
	if err := market.DoJSON(c.http, sourceName, req, &body); err != nil {
		return nil, nil, err
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, nil, market.Malformed(sourceName, fmt.Errorf("Ticker: expected object, got %T", body))
	}

	var errs []string
	if list, ok := obj["error"].([]any); ok {
		for _, e := range list {
			errs = append(errs, fmt.Sprint(e))
		}
	}
	return body, errs, nil
}

// sign computes API-Sign: HMAC-SHA512 over path + SHA256(nonce + postdata),
// keyed with the decoded private key.
func (c *Client) sign(path string, form url.Values) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("decode private key: %w", err)
	}
	sum := sha256.Sum256([]byte(form.Get("nonce") + form.Encode()))

	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(sum[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
