package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/no2-dashboard/internal/common"
	"github.com/i474232898/no2-dashboard/internal/imagery"
)

// Client implements imagery.Backend against the imagery gateway's JSON API.
type Client struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	APIKey        string
	MaxRetries    int
	RetryInterval time.Duration
}

func NewClient(client *http.Client, opts Options) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "imagery",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	interval := opts.RetryInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	return &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      opts.MaxRetries,
				InitialInterval: interval,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

type selection struct {
	Collection string   `json:"collection"`
	Bands      []string `json:"bands"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
}

func selectionOf(coll imagery.Collection) selection {
	s := selection{Collection: coll.ID(), Bands: coll.Bands()}
	if w, ok := coll.Window(); ok {
		s.Start = w.Start.Format(imagery.DateLayout)
		s.End = w.End.Format(imagery.DateLayout)
	}
	return s
}

// Describe fetches the band list of collection id.
func (c *Client) Describe(ctx context.Context, id string) (imagery.Collection, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("id", id)
		return c.newRequest(http.MethodGet, "/v1/collection?"+values.Encode(), nil)
	}

	var payload struct {
		ID    string   `json:"id"`
		Bands []string `json:"bands"`
	}
	if err := c.call(ctx, "describe", imagery.NewCollection(id, nil), buildRequest, &payload); err != nil {
		return imagery.Collection{}, err
	}
	if len(payload.Bands) == 0 {
		return imagery.Collection{}, &imagery.SchemaError{Detail: fmt.Sprintf("collection %q lists no bands", id)}
	}
	return imagery.NewCollection(id, payload.Bands), nil
}

// GetRegion requests the per-timestep values of coll at p.
func (c *Client) GetRegion(ctx context.Context, coll imagery.Collection, p imagery.Point, scale float64) (imagery.RawRegionResult, error) {
	body := struct {
		selection
		Point imagery.Point `json:"point"`
		Scale float64       `json:"scale"`
	}{selectionOf(coll), p, scale}

	buildRequest := func() (*http.Request, error) {
		return c.newJSONRequest("/v1/region", body)
	}

	var payload struct {
		Rows imagery.RawRegionResult `json:"rows"`
	}
	if err := c.call(ctx, "region", coll, buildRequest, &payload); err != nil {
		return nil, err
	}
	return payload.Rows, nil
}

// TileURL publishes img and returns its tile URL template.
func (c *Client) TileURL(ctx context.Context, img imagery.Image, vis imagery.VisParams) (string, error) {
	body := struct {
		selection
		Reducer    string            `json:"reducer"`
		Multiplier float64           `json:"multiplier"`
		Vis        imagery.VisParams `json:"vis"`
	}{selectionOf(img.Collection), img.Reducer, img.Multiplier, vis}

	buildRequest := func() (*http.Request, error) {
		return c.newJSONRequest("/v1/maps", body)
	}

	var payload struct {
		URLFormat string `json:"urlFormat"`
	}
	if err := c.call(ctx, "maps", img.Collection, buildRequest, &payload); err != nil {
		return "", err
	}
	if payload.URLFormat == "" {
		return "", &imagery.SchemaError{Detail: "map response has no urlFormat"}
	}
	return payload.URLFormat, nil
}

func (c *Client) newRequest(method, path string, body []byte) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, c.baseURL+path, bytes.NewReader(body))
	} else {
		req, err = http.NewRequest(method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func (c *Client) newJSONRequest(path string, v any) (*http.Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.newRequest(http.MethodPost, path, body)
}

// call runs one request and decodes the answer into out, mapping failures
// onto the imagery error taxonomy.
func (c *Client) call(ctx context.Context, op string, coll imagery.Collection, buildRequest func() (*http.Request, error), out any) error {
	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return classify(op, coll, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &imagery.SchemaError{Detail: fmt.Sprintf("%s: decode response: %v", op, err)}
	}
	return nil
}

func classify(op string, coll imagery.Collection, err error) error {
	var se *statusError
	if errors.As(err, &se) && common.HasAny(strings.ToLower(se.Body), "did not match any bands", "band not found") {
		band := quoted(se.Body)
		if band == "" {
			band = strings.Join(coll.Bands(), ",")
		}
		return &imagery.BandNotFoundError{Collection: coll.ID(), Band: band}
	}
	return &imagery.BackendUnavailableError{Op: op, Err: err}
}

// quoted returns the first single-quoted token of msg, as the backend names
// offending band patterns that way.
func quoted(msg string) string {
	start := strings.IndexByte(msg, '\'')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(msg[start+1:], '\'')
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
