// Package rates fetches exchange rates from a public HTTP API and
// derives a base-currency snapshot from them. Every failure path falls
// back to fixed constants; rate fetching never raises past this package.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jaymin91-1/MyAsset/internal/core"
)

// DefaultAPIURL serves quotes for a reference currency, e.g.
// GET <url>/USD -> {"result":"success","rates":{"KRW":1400,...}}.
const DefaultAPIURL = "https://open.er-api.com/v6/latest"

// Client fetches reference-currency quotes and converts them into
// rate-to-base form via cross-rate derivation.
type Client struct {
	httpClient *http.Client
	apiURL     string
	reference  string
	base       string
	currencies []string
	fallback   core.Snapshot
}

type apiResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// New builds a client. currencies lists every tracked currency code;
// fallbackRates carries the hardcoded rate-to-base constants substituted
// on any fetch failure.
func New(apiURL, reference, base string, currencies []string, fallbackRates map[string]float64) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     apiURL,
		reference:  reference,
		base:       base,
		currencies: currencies,
		fallback:   core.Snapshot{Base: base, Rates: fallbackRates},
	}
}

// Fallback returns the static snapshot used when fetching fails. It is
// also the initial snapshot of a fresh session.
func (c *Client) Fallback() core.Snapshot {
	return cloneSnapshot(c.fallback)
}

// Fetch returns the current rate snapshot. On any failure (network,
// non-2xx, malformed body, non-success flag) it logs and returns the
// fallback constants instead; the caller continues without raising.
func (c *Client) Fetch(ctx context.Context) core.Snapshot {
	snap, err := c.fetch(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Rate fetch failed, using fallback constants",
			"reference", c.reference, "base", c.base, "error", err)
		return c.Fallback()
	}
	return snap
}

func (c *Client) fetch(ctx context.Context) (core.Snapshot, error) {
	url := fmt.Sprintf("%s/%s", c.apiURL, c.reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return core.Snapshot{}, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode response: %w", err)
	}
	if body.Result != "success" {
		return core.Snapshot{}, fmt.Errorf("api result %q", body.Result)
	}

	// Quotes are units of X per one reference unit. Rate-to-base for X
	// is then refToBase / refToX; the reference itself quotes at 1.
	refToBase, ok := body.Rates[c.base]
	if !ok || refToBase == 0 {
		return core.Snapshot{}, fmt.Errorf("no %s quote in response", c.base)
	}
	snap := core.Snapshot{Base: c.base, Rates: make(map[string]float64, len(c.currencies))}
	for _, currency := range c.currencies {
		if currency == c.base {
			continue
		}
		refToX := body.Rates[currency]
		if currency == c.reference {
			refToX = 1
		}
		snap.Rates[currency] = core.CrossRate(refToBase, refToX)
	}
	return snap, nil
}

func cloneSnapshot(s core.Snapshot) core.Snapshot {
	out := core.Snapshot{Base: s.Base, Rates: make(map[string]float64, len(s.Rates))}
	for k, v := range s.Rates {
		out.Rates[k] = v
	}
	return out
}
