package pipeline

import (
	"regexp"
	"strings"

	"factura/internal"
	"factura/internal/util"
)

// maxBufferLines caps how many raw lines can pile into one candidate before
// the accumulator resets. Malformed input otherwise grows it without bound.
const maxBufferLines = 12

// ExtractLines feeds every non-blank line of every page through the
// classifier, the ignore filter and the tokenizer, returning records in
// page-major order. Row counters are 1-based and reset on each page.
func ExtractLines(pages []string, docType internal.DocType) []internal.InvoiceLine {
	filter := newIgnoreFilter(docType)

	out := []internal.InvoiceLine{}
	for pageIdx, pageText := range pages {
		buffer := ""
		buffered := 0
		rowCounter := 0
		for _, rawLine := range splitLines(pageText) {
			var candidate string
			if looksLikeReferenceLine(rawLine) {
				// A fresh reference restarts the accumulator so header noise
				// never leaks into the next record.
				candidate = rawLine
				buffer = ""
				buffered = 0
			} else if buffer != "" {
				candidate = buffer + " " + rawLine
			} else {
				candidate = rawLine
			}

			if filter.Matches(candidate) {
				buffer = ""
				buffered = 0
				continue
			}

			parsed := ParseInvoiceLine(candidate)
			if parsed == nil {
				buffered++
				if buffered >= maxBufferLines {
					buffer = ""
					buffered = 0
					continue
				}
				buffer = candidate
				continue
			}

			rowCounter++
			parsed.Page = pageIdx + 1
			parsed.Row = rowCounter
			out = append(out, *parsed)
			buffer = ""
			buffered = 0
		}
	}
	return out
}

// A line starts a new candidate iff its first token carries a digit.
func looksLikeReferenceLine(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false
	}
	return util.HasDigit(tokens[0])
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var (
	factureNumberPattern = regexp.MustCompile(`(?i)Facture\s+N[°º]?\s*([A-Z0-9_]+)`)
	avoirNumberPattern   = regexp.MustCompile(`(?i)Avoir\s+N[°º]?\s*([A-Z0-9_]+)`)
)

// ExtractInvoiceNumber scans the first page for the document number, used as
// the stock-update reason when present.
func ExtractInvoiceNumber(pages []string, docType internal.DocType) string {
	if len(pages) == 0 {
		return ""
	}
	pattern := avoirNumberPattern
	if docType == internal.DocFacture {
		pattern = factureNumberPattern
	}
	if m := pattern.FindStringSubmatch(pages[0]); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
