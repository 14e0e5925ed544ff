package pipeline

import (
	"strings"

	"factura/internal"
	"factura/internal/util"
)

// ParseInvoiceLine parses a candidate formatted as
// REF DESCRIPTION... QTY UNIT_PRICE TOTAL [TVA%].
// Returns nil when the candidate does not fit the layout.
func ParseInvoiceLine(text string) *internal.InvoiceLine {
	tokens := strings.Fields(text)
	if len(tokens) < 5 {
		return nil
	}

	var tva *string
	if util.IsPercentToken(tokens[len(tokens)-1]) {
		tva = util.StringPtr(tokens[len(tokens)-1])
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) < 4 {
		return nil
	}

	qtyTok := tokens[len(tokens)-3]
	unitTok := tokens[len(tokens)-2]
	amountTok := tokens[len(tokens)-1]

	for _, tok := range []string{qtyTok, unitTok, amountTok} {
		if !util.IsNumberToken(tok) {
			return nil
		}
	}
	// Currency amounts always carry a decimal separator; a bare integer in
	// those positions is usually a quantity column bleeding over.
	if !hasDecimalSeparator(unitTok) || !hasDecimalSeparator(amountTok) {
		return nil
	}

	ref := tokens[0]
	if !util.HasDigit(ref) {
		return nil
	}
	descTokens := tokens[1 : len(tokens)-3]
	if len(descTokens) == 0 {
		return nil
	}

	qty, ok := util.ParseNumber(qtyTok)
	if !ok {
		return nil
	}
	unitPrice, ok := util.ParseNumber(unitTok)
	if !ok {
		return nil
	}
	total, ok := util.ParseNumber(amountTok)
	if !ok {
		return nil
	}

	return &internal.InvoiceLine{
		Reference:   ref,
		Description: strings.Join(descTokens, " "),
		Quantity:    qty,
		UnitPrice:   unitPrice,
		LineTotal:   total,
		TVA:         tva,
		Raw:         text,
	}
}

func hasDecimalSeparator(token string) bool {
	return strings.ContainsAny(token, ",.")
}
