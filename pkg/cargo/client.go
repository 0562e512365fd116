// Package cargo is a minimal client for a MediaWiki Cargo query endpoint.
// It covers the three API actions the lookup pipeline needs: tabular
// cargoquery, imageinfo resolution for inventory icons, and cargofields
// introspection for the mapping generator.
package cargo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://www.poewiki.net/w/api.php"
	defaultUserAgent = "poewiki-cli/1.0"

	// MediaWiki caps title batches at 50 per imageinfo request.
	imageBatchSize = 50
)

// Failure modes surfaced to callers. Match with eris.Is.
var (
	// ErrNetwork covers connection and timeout failures. Not retried.
	ErrNetwork = eris.New("cargo network failure")
	// ErrRemote covers non-success HTTP statuses and API-level error payloads.
	ErrRemote = eris.New("cargo remote failure")
	// ErrMalformedResponse covers bodies that do not parse as the expected shape.
	ErrMalformedResponse = eris.New("cargo malformed response")
)

// Row is one tabular result row: field name to stringified value.
// Cargo reports every value as a string or number; numbers are rendered
// back to strings and nulls are omitted from the map.
type Row map[string]string

// QueryRequest describes a single cargoquery call.
type QueryRequest struct {
	Tables  string
	Fields  []string
	Where   string
	OrderBy string
	Limit   int
}

// Client talks to the wiki API. One network request per call, a single
// configurable timeout, no internal retries: failures surface to the
// caller as typed errors.
type Client interface {
	Query(ctx context.Context, req QueryRequest) ([]Row, error)
	ImageURLs(ctx context.Context, titles []string) (map[string]string, error)
	TableFields(ctx context.Context, table string) ([]string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) { c.userAgent = ua }
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) { c.http.Timeout = d }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit overrides the default requests-per-second ceiling. A
// burst below 1 would make every wait fail, so it is raised to 1; this
// keeps fractional rates like 0.5 req/s usable.
func WithRateLimit(rps float64, burst int) Option {
	if burst < 1 {
		burst = 1
	}
	return func(c *httpClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a wiki API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrapf(ErrNetwork, "cargo: rate limiter wait: %v", err)
	}

	params.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrapf(ErrNetwork, "cargo: create request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(ErrNetwork, "cargo: send request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(ErrNetwork, "cargo: read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(ErrRemote, "cargo: unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

type queryResponse struct {
	CargoQuery []struct {
		Title map[string]any `json:"title"`
	} `json:"cargoquery"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Query runs one cargoquery call. An empty result set is not an error.
func (c *httpClient) Query(ctx context.Context, req QueryRequest) ([]Row, error) {
	params := url.Values{}
	params.Set("action", "cargoquery")
	params.Set("tables", req.Tables)
	params.Set("fields", strings.Join(req.Fields, ","))
	if req.Where != "" {
		params.Set("where", req.Where)
	}
	if req.OrderBy != "" {
		params.Set("order by", req.OrderBy)
	}
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var decoded queryResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "cargo: unmarshal query response: %v", err)
	}
	if decoded.Error != nil {
		return nil, eris.Wrapf(ErrRemote, "cargo: api error %s: %s", decoded.Error.Code, decoded.Error.Info)
	}

	rows := make([]Row, 0, len(decoded.CargoQuery))
	for _, r := range decoded.CargoQuery {
		rows = append(rows, toRow(r.Title))
	}
	return rows, nil
}

func toRow(title map[string]any) Row {
	row := make(Row, len(title))
	for k, v := range title {
		switch val := v.(type) {
		case string:
			row[k] = val
		case float64:
			row[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
			// Null values stay absent so the normalizer can tell
			// "not fetched" from "fetched but blank".
		}
	}
	return row
}

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			ImageInfo []struct {
				URL string `json:"url"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// ImageURLs resolves wiki File: titles to their full URLs, batching up
// to 50 titles per request. Batches run concurrently; a failed batch
// fails the whole call.
func (c *httpClient) ImageURLs(ctx context.Context, titles []string) (map[string]string, error) {
	if len(titles) == 0 {
		return map[string]string{}, nil
	}

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(titles))
	)
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(titles); start += imageBatchSize {
		chunk := titles[start:min(start+imageBatchSize, len(titles))]
		g.Go(func() error {
			params := url.Values{}
			params.Set("action", "query")
			params.Set("titles", strings.Join(chunk, "|"))
			params.Set("prop", "imageinfo")
			params.Set("iiprop", "url")

			body, err := c.get(gctx, params)
			if err != nil {
				return err
			}

			var decoded imageInfoResponse
			if err := json.Unmarshal(body, &decoded); err != nil {
				return eris.Wrapf(ErrMalformedResponse, "cargo: unmarshal imageinfo response: %v", err)
			}

			mu.Lock()
			defer mu.Unlock()
			for _, page := range decoded.Query.Pages {
				if page.Title != "" && len(page.ImageInfo) > 0 {
					results[page.Title] = page.ImageInfo[0].URL
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type fieldsResponse struct {
	CargoFields map[string]json.RawMessage `json:"cargofields"`
	Error       *apiError                  `json:"error"`
}

// TableFields lists the declared columns of a Cargo table. Used by the
// mapping generator only, never on the query path.
func (c *httpClient) TableFields(ctx context.Context, table string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "cargofields")
	params.Set("table", table)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var decoded fieldsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "cargo: unmarshal cargofields response: %v", err)
	}
	if decoded.Error != nil {
		return nil, eris.Wrapf(ErrRemote, "cargo: api error %s: %s", decoded.Error.Code, decoded.Error.Info)
	}

	fields := make([]string, 0, len(decoded.CargoFields))
	for name := range decoded.CargoFields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
