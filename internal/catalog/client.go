package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"factura/internal/config"
)

// CacheStatus reports how the catalog snapshot was obtained or persisted.
type CacheStatus string

const (
	CacheHit        CacheStatus = "hit"
	CacheRefreshed  CacheStatus = "refreshed"
	CacheWriteError CacheStatus = "write_error"
	CacheDisabled   CacheStatus = "disabled"
)

type Client struct {
	endpoints  config.Endpoints
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoints config.Endpoints, apiKey string, timeoutMs int) *Client {
	return &Client{
		endpoints:  endpoints,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
	}
}

type FetchResult struct {
	Products []map[string]any
	Status   CacheStatus
	Pages    int
}

// FetchProducts returns the full product list: from the local cache when one
// is present and refresh is false, otherwise via the paginated endpoint.
// Per-page failures skip that page; partial results are acceptable. Without a
// configured endpoint the whole catalog step is off, cache included.
func (c *Client) FetchProducts(ctx context.Context, cachePath string, refresh bool) FetchResult {
	if c.endpoints.ProductsURL == "" {
		return FetchResult{Products: []map[string]any{}, Status: CacheDisabled}
	}

	if !refresh && cachePath != "" {
		if blob, err := os.ReadFile(cachePath); err == nil {
			var cached []map[string]any
			if err := json.Unmarshal(blob, &cached); err == nil {
				return FetchResult{Products: cached, Status: CacheHit}
			}
			// Corrupt cache falls through to a network fetch.
		}
	}

	pages := c.probePageCount(ctx)
	products := make([]map[string]any, 0)
	for page := 1; page <= pages; page++ {
		items, err := c.fetchPage(ctx, page)
		if err != nil {
			continue
		}
		products = append(products, items...)
	}

	status := CacheRefreshed
	if err := writeCache(cachePath, products); err != nil {
		status = CacheWriteError
	}
	return FetchResult{Products: products, Status: status, Pages: pages}
}

// probePageCount issues the metadata request. Some deployments wrap the
// pagination metadata inside an "error" object even on success, so that
// block takes precedence when present.
func (c *Client) probePageCount(ctx context.Context) int {
	meta := map[string]any{}
	if body, err := c.get(ctx, c.endpoints.ProductsURL, 0); err == nil {
		_ = json.Unmarshal(body, &meta)
	}

	block := meta
	if nested, ok := meta["error"].(map[string]any); ok {
		block = nested
	}

	if pages, ok := toCount(block["pages"]); ok && pages > 0 {
		return pages
	}

	total, haveTotal := toCount(block["results"])
	perPage, havePer := toCount(block["results_per_page"])
	if !havePer {
		perPage, havePer = toCount(block["results_perpage"])
	}
	if haveTotal && havePer && perPage > 0 {
		pages := int(math.Ceil(float64(total) / float64(perPage)))
		if pages < 1 {
			pages = 1
		}
		return pages
	}
	// No usable metadata: a single best-effort page, compatible with the
	// existing cache format.
	return 1
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]map[string]any, error) {
	body, err := c.get(ctx, c.endpoints.ProductsURL, page)
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	switch data := payload.(type) {
	case map[string]any:
		list, ok := data["data"].([]any)
		if !ok {
			return nil, fmt.Errorf("page %d: no data list", page)
		}
		return toEntryMaps(list), nil
	case []any:
		return toEntryMaps(data), nil
	default:
		return nil, fmt.Errorf("page %d: unexpected payload", page)
	}
}

// get issues a GET and returns the body regardless of status code; the
// metadata probe reads pagination info even out of 403 responses. page > 0
// adds the page number as both a header and a query parameter, which the
// products endpoint requires.
func (c *Client) get(ctx context.Context, rawURL string, page int) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if page > 0 {
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("userApiKey", c.apiKey)
	}
	if page > 0 {
		req.Header.Set("page", strconv.Itoa(page))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// getChecked is the strict variant used by single-reference lookups: a
// non-2xx status is an error.
func (c *Client) getChecked(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("userApiKey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("lookup status %d", resp.StatusCode)
	}
	return body, nil
}

func writeCache(path string, products []map[string]any) error {
	if path == "" {
		return nil
	}
	blob, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

func toEntryMaps(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func toCount(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		parsed, err := strconv.Atoi(t)
		return parsed, err == nil
	default:
		return 0, false
	}
}
