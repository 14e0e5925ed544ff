package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"factura/internal"
	"factura/internal/util"
)

type Resolution struct {
	ID      *string
	Status  internal.LookupStatus
	Message *string
	Stock   *float64
}

type Resolver struct {
	client *Client
	index  *Index
}

func NewResolver(client *Client, index *Index) *Resolver {
	return &Resolver{client: client, index: index}
}

// Resolve finds the product id for a reference: the local index first, then
// a single-item remote lookup. A failed resolution never aborts the caller's
// loop; the status says what happened.
func (r *Resolver) Resolve(ctx context.Context, reference string) Resolution {
	if strings.TrimSpace(reference) == "" {
		return Resolution{Status: internal.LookupSkippedNoRef}
	}

	if r.index != nil {
		if entry, ok := r.index.Get(reference); ok {
			return Resolution{
				ID:     util.StringPtr(entry.ID),
				Status: internal.LookupFromCache,
				Stock:  entry.Stock,
			}
		}
	}

	if r.client == nil || r.client.endpoints.LookupURL == "" {
		return Resolution{Status: internal.LookupSkippedNoURL}
	}

	lookupURL := strings.ReplaceAll(r.client.endpoints.LookupURL, "{reference}", reference)
	body, err := r.client.getChecked(ctx, lookupURL)
	if err != nil {
		return Resolution{Status: internal.LookupHTTPError, Message: util.StringPtr(err.Error())}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return Resolution{Status: internal.LookupInvalidJSON, Message: util.StringPtr(err.Error())}
	}

	for _, extract := range idExtractors {
		if id, ok := extract(payload); ok {
			return Resolution{ID: util.StringPtr(id), Status: internal.LookupOK}
		}
	}
	return Resolution{Status: internal.LookupNoID}
}

// idExtractors are the accepted lookup response shapes, tried in order.
var idExtractors = []func(any) (string, bool){
	// {"id": ...}
	func(v any) (string, bool) {
		m, ok := v.(map[string]any)
		if !ok {
			return "", false
		}
		return idValue(m)
	},
	// {"data": {"id": ...}}
	func(v any) (string, bool) {
		m, ok := v.(map[string]any)
		if !ok {
			return "", false
		}
		nested, ok := m["data"].(map[string]any)
		if !ok {
			return "", false
		}
		return idValue(nested)
	},
	// {"data": [{"id": ...}, ...]}
	func(v any) (string, bool) {
		m, ok := v.(map[string]any)
		if !ok {
			return "", false
		}
		list, ok := m["data"].([]any)
		if !ok || len(list) == 0 {
			return "", false
		}
		first, ok := list[0].(map[string]any)
		if !ok {
			return "", false
		}
		return idValue(first)
	},
	// [{"id": ...}, ...]
	func(v any) (string, bool) {
		list, ok := v.([]any)
		if !ok || len(list) == 0 {
			return "", false
		}
		first, ok := list[0].(map[string]any)
		if !ok {
			return "", false
		}
		return idValue(first)
	},
}

func idValue(m map[string]any) (string, bool) {
	v, ok := m["id"]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}
