package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Nominatim search endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

// minRequestSpacing is the Nominatim usage-policy floor: at most one
// request per second, counted even when a request fails.
const minRequestSpacing = time.Second

// Candidate is one ranked geocoding result.
type Candidate struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     CandidateAddress `json:"address"`
}

// CandidateAddress carries the address details requested with the query.
type CandidateAddress struct {
	Postcode string `json:"postcode"`
}

// Client queries the remote geocoding service. Calls are sequential and
// paced; there is no batching or concurrent issuance because the service
// caps request rate.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string

	// Pacing state, injectable for tests.
	last  time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient builds a paced Nominatim client with explicit transport
// timeouts.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		http:      &http.Client{Timeout: timeout, Transport: tr},
		baseURL:   baseURL,
		userAgent: userAgent,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Search issues one geocoding query scoped to the region and returns the
// ranked candidate list. The pacing gate runs before the request and the
// call is stamped afterwards whether it succeeded or not, so two successive
// calls are always at least a second apart.
func (c *Client) Search(ctx context.Context, query, region string) ([]Candidate, error) {
	c.pace()
	defer func() { c.last = c.now() }()

	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s, %s, France", query, region))
	params.Set("format", "json")
	params.Set("limit", "5")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim: unexpected status %s", resp.Status)
	}
	var results []Candidate
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("nominatim: decode response: %w", err)
	}
	return results, nil
}

func (c *Client) pace() {
	if c.last.IsZero() {
		return
	}
	if since := c.now().Sub(c.last); since < minRequestSpacing {
		c.sleep(minRequestSpacing - since)
	}
}
