package catalog

import (
	"strconv"
	"strings"

	"factura/internal"
	"factura/internal/util"
)

// Field aliases accepted from the heterogeneous catalog payloads, tried in
// order; the first present key wins.
var (
	codeAliases  = []string{"product_code", "code", "reference"}
	idAliases    = []string{"id", "product_id"}
	stockAliases = []string{"stock", "quantity", "stock_quantity", "stock_level"}
)

type Index struct {
	ByReference map[string]internal.ProductEntry
}

// BuildIndex maps trimmed references to catalog entries. Entries without a
// resolvable code and id are skipped; the last entry for a code wins.
func BuildIndex(products []map[string]any) *Index {
	idx := &Index{ByReference: map[string]internal.ProductEntry{}}
	for _, raw := range products {
		code := firstString(raw, codeAliases)
		id := firstString(raw, idAliases)
		if code == "" || id == "" {
			continue
		}
		entry := internal.ProductEntry{Reference: code, ID: id}
		if stock, ok := firstNumber(raw, stockAliases); ok {
			entry.Stock = util.FloatPtr(stock)
		}
		idx.ByReference[entry.Reference] = entry
	}
	return idx
}

func (i *Index) Get(reference string) (internal.ProductEntry, bool) {
	entry, ok := i.ByReference[strings.TrimSpace(reference)]
	return entry, ok
}

func firstString(raw map[string]any, aliases []string) string {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

func firstNumber(raw map[string]any, aliases []string) (float64, bool) {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case string:
			if parsed, ok := util.ParseNumber(t); ok {
				return parsed, true
			}
		}
	}
	return 0, false
}
