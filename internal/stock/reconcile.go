package stock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"factura/internal"
	"factura/internal/util"
)

type Reconciler struct {
	updateURL  string
	apiKey     string
	httpClient *http.Client
	audit      *AuditLog
	logger     *slog.Logger
}

func NewReconciler(updateURL, apiKey string, timeoutMs int, audit *AuditLog, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		updateURL:  updateURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		audit:      audit,
		logger:     logger,
	}
}

// Delta is the signed stock movement for a quantity: invoices decrement,
// credit notes increment.
func Delta(docType internal.DocType, quantity float64) float64 {
	if docType == internal.DocAvoir {
		return math.Abs(quantity)
	}
	return -math.Abs(quantity)
}

// Apply computes and issues the stock update for every record, in order. One
// attempt per record, no retries; a failure is recorded on the record and in
// the audit log, then the loop moves on. The returned events mirror the
// audit-log lines.
func (r *Reconciler) Apply(ctx context.Context, lines []internal.InvoiceLine, docType internal.DocType, invoiceNumber, defaultReason string) []internal.StockEvent {
	reason := defaultReason
	if invoiceNumber != "" {
		reason = invoiceNumber
	}

	events := make([]internal.StockEvent, 0, len(lines))
	for i := range lines {
		line := &lines[i]

		productID := line.Reference
		if line.LookupID != nil && *line.LookupID != "" {
			productID = *line.LookupID
		}
		if productID == "" {
			continue
		}

		delta := Delta(docType, line.Quantity)
		// Without a known baseline the absolute level degrades to the delta
		// itself; an approximation, not a correctness claim.
		newStock := delta
		if line.InitialStock != nil {
			newStock = *line.InitialStock + delta
		}

		status := internal.StockPatched
		if err := r.patch(ctx, productID, newStock, reason); err != nil {
			status = internal.StockFailed
			r.logger.Warn("stock patch failed",
				"reference", line.Reference, "product_id", productID, "error", err)
		}

		line.StockUpdate = &internal.StockUpdate{Delta: delta, NewStock: newStock, Status: status}
		if invoiceNumber != "" {
			line.InvoiceNumber = util.StringPtr(invoiceNumber)
		}

		event := internal.StockEvent{
			TS:           time.Now().UTC().Format(time.RFC3339),
			Reference:    line.Reference,
			ProductID:    productID,
			LookupID:     line.LookupID,
			Delta:        delta,
			Reason:       reason,
			InitialStock: line.InitialStock,
			NewStock:     newStock,
			Status:       status,
		}
		if invoiceNumber != "" {
			event.InvoiceNumber = util.StringPtr(invoiceNumber)
		}
		if err := r.audit.Append(event); err != nil {
			r.logger.Warn("audit append failed", "error", err)
		}
		events = append(events, event)
	}
	return events
}

func (r *Reconciler) patch(ctx context.Context, productID string, newStock float64, reason string) error {
	if strings.TrimSpace(r.updateURL) == "" {
		return errors.New("no update url configured")
	}
	patchURL := strings.ReplaceAll(r.updateURL, "{product_id}", productID)
	payload, _ := json.Marshal(map[string]any{"stock": newStock, "update_reason": reason})

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, patchURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("userApiKey", r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("patch status %d", resp.StatusCode)
	}
	return nil
}
