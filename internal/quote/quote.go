// Package quote fetches spot price quotes for the network benchmark scenario.
package quote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/torosent/crankbench/internal/httpclient"
	"github.com/torosent/crankbench/internal/tracing"
)

// DefaultURL is the CoinGecko simple price endpoint for bitcoin in USD, EUR and UAH.
const DefaultURL = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd,eur,uah&include_last_updated_at=true"

// DefaultUserAgent is sent with every quote request.
const DefaultUserAgent = "crankbench"

// Quote is one bitcoin spot price sample.
type Quote struct {
	USD     float64
	EUR     float64
	UAH     float64
	Updated time.Time
}

// String renders the quote as the result token recorded by the network scenario,
// using the local time zone for the update time.
func (q Quote) String() string {
	return fmt.Sprintf("%s | $%.0f USD / €%.0f EUR / ₴%.0f UAH",
		q.Updated.Local().Format("15:04:05"), q.USD, q.EUR, q.UAH)
}

// ParseError reports a quote payload that is not valid JSON or lacks a field.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "quote: " + e.Reason
	}
	return fmt.Sprintf("quote: field %q %s", e.Field, e.Reason)
}

func (e *ParseError) ErrorCategory() string { return "Quote payload error" }

// Parse decodes a CoinGecko simple price payload.
func Parse(body []byte) (Quote, error) {
	if !gjson.ValidBytes(body) {
		return Quote{}, &ParseError{Reason: "invalid JSON payload"}
	}

	var q Quote
	var err error
	if q.USD, err = number(body, "bitcoin.usd"); err != nil {
		return Quote{}, err
	}
	if q.EUR, err = number(body, "bitcoin.eur"); err != nil {
		return Quote{}, err
	}
	if q.UAH, err = number(body, "bitcoin.uah"); err != nil {
		return Quote{}, err
	}
	ts := gjson.GetBytes(body, "bitcoin.last_updated_at")
	if ts.Type != gjson.Number {
		return Quote{}, &ParseError{Field: "bitcoin.last_updated_at", Reason: "is missing or not a number"}
	}
	q.Updated = time.Unix(ts.Int(), 0)
	return q, nil
}

func number(body []byte, path string) (float64, error) {
	res := gjson.GetBytes(body, path)
	if res.Type != gjson.Number {
		return 0, &ParseError{Field: path, Reason: "is missing or not a number"}
	}
	return res.Float(), nil
}

// Client fetches quotes from a single HTTP endpoint.
type Client struct {
	URL       string
	UserAgent string
	// Propagate injects W3C trace context headers into each request.
	Propagate bool

	http *http.Client
}

// NewClient returns a client for url. A nil httpClient uses httpclient.NewClient
// with a 10 second timeout.
func NewClient(url string, httpClient *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if httpClient == nil {
		httpClient = httpclient.NewClient(10 * time.Second)
	}
	return &Client{
		URL:       url,
		UserAgent: DefaultUserAgent,
		http:      httpClient,
	}
}

// Fetch performs one GET and parses the response. Transport, status and parse
// faults are all returned as errors; retrying is left to the caller.
func (c *Client) Fetch(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, err
	}
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return Quote{}, err
	}
	return Parse(body)
}
