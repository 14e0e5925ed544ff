package pipeline

import (
	"strings"

	"factura/internal"
)

// Boilerplate that must never become a record: table header, delivery note
// and customer order markers, totals and bank details.
var baseIgnoreKeywords = []string{
	"REFERENCE DESIGNATION",
	"Bon de livraison",
	"Commande client",
	"Sous Total",
	"Total TTC",
	"Total HT",
	"RIB",
}

type ignoreFilter struct {
	keywords []string
}

func newIgnoreFilter(docType internal.DocType) ignoreFilter {
	keywords := append([]string{}, baseIgnoreKeywords...)
	switch docType {
	case internal.DocFacture:
		keywords = append(keywords, "Facture")
	case internal.DocAvoir:
		keywords = append(keywords, "Avoir")
	default:
		keywords = append(keywords, "Facture", "Avoir")
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return ignoreFilter{keywords: lowered}
}

// Matches reports whether the candidate contains any keyword, case
// insensitively. A match discards the candidate and resets the buffer.
func (f ignoreFilter) Matches(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, kw := range f.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
