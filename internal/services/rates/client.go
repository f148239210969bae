package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the currencyapi.com latest rates endpoint.
const DefaultBaseURL = "https://api.currencyapi.com/v3/latest"

// Client fetches rates from currencyapi.com.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a rate client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type latestResponse struct {
	Data map[string]struct {
		Code  string          `json:"code"`
		Value decimal.Decimal `json:"value"`
	} `json:"data"`
}

func (c *Client) Rate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	base, err := Normalize(base)
	if err != nil {
		return decimal.Zero, err
	}
	target, err = Normalize(target)
	if err != nil {
		return decimal.Zero, err
	}
	if base == target {
		return decimal.NewFromInt(1), nil
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("base_currency", base)
	q.Set("currencies", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrConversionUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrConversionUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: rate source answered %d", ErrConversionUnavailable, res.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrConversionUnavailable, err)
	}
	rate, ok := body.Data[target]
	if !ok || !rate.Value.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s", ErrConversionUnavailable, target)
	}
	return rate.Value, nil
}

var _ Provider = (*Client)(nil)
