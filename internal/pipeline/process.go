package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"factura/internal"
	"factura/internal/catalog"
	"factura/internal/config"
	"factura/internal/pdftext"
	"factura/internal/stock"
	"factura/internal/storage"
)

type Service struct {
	db        *storage.DB
	cfg       config.Config
	endpoints config.Endpoints
	apiKey    string
	logger    *slog.Logger
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{
		db:        db,
		cfg:       cfg,
		endpoints: config.LoadEndpoints(cfg.EndpointsPath),
		apiKey:    config.LoadAPIKey(cfg.APIKeyPath),
		logger:    slog.Default(),
	}
}

type Options struct {
	DocType         internal.DocType
	UpdateStock     bool
	UpdateReason    string
	RefreshProducts bool
	VerboseLookups  bool
}

type Result struct {
	Lines         []internal.InvoiceLine
	InvoiceNumber string
	CacheStatus   catalog.CacheStatus
	DocumentID    int64
}

// ProcessPDF runs the whole pipeline on one document: extract, resolve,
// optionally reconcile stock, persist. Only an unreadable PDF is fatal;
// every downstream failure degrades per record and the run continues.
func (s *Service) ProcessPDF(ctx context.Context, path string, opts Options) (Result, error) {
	start := time.Now()

	pages, err := pdftext.PageTextsFromFile(path)
	if err != nil {
		return Result{}, err
	}

	invoiceNumber := ExtractInvoiceNumber(pages, opts.DocType)
	lines := ExtractLines(pages, opts.DocType)

	client := catalog.NewClient(s.endpoints, s.apiKey, s.cfg.HTTPTimeoutMs)
	fetch := client.FetchProducts(ctx, s.cfg.ProductsCache, opts.RefreshProducts)
	if fetch.Status == catalog.CacheWriteError {
		s.logger.Warn("products cache write failed", "path", s.cfg.ProductsCache)
	}
	resolver := catalog.NewResolver(client, catalog.BuildIndex(fetch.Products))

	resolved := 0
	for i := range lines {
		res := resolver.Resolve(ctx, lines[i].Reference)
		if res.ID != nil {
			lines[i].LookupID = res.ID
			resolved++
		}
		if res.Stock != nil {
			lines[i].InitialStock = res.Stock
		}
		if opts.VerboseLookups {
			lines[i].LookupStatus = res.Status
			lines[i].LookupInfo = res.Message
		}
	}

	var events []internal.StockEvent
	if opts.UpdateStock && s.endpoints.UpdateStockURL != "" {
		reason := opts.UpdateReason
		if reason == "" {
			reason = s.cfg.UpdateReason
		}
		audit := stock.NewAuditLog(s.cfg.AuditLogPath)
		reconciler := stock.NewReconciler(s.endpoints.UpdateStockURL, s.apiKey, s.cfg.HTTPTimeoutMs, audit, s.logger)
		events = reconciler.Apply(ctx, lines, opts.DocType, invoiceNumber, reason)
	}

	result := Result{Lines: lines, InvoiceNumber: invoiceNumber, CacheStatus: fetch.Status}
	if s.db != nil {
		docID, err := s.persist(path, opts.DocType, invoiceNumber, lines, events, resolved, time.Since(start))
		if err != nil {
			s.logger.Warn("persist run failed", "error", err)
		} else {
			result.DocumentID = docID
		}
	}
	return result, nil
}

func (s *Service) persist(path string, docType internal.DocType, invoiceNumber string, lines []internal.InvoiceLine, events []internal.StockEvent, resolved int, elapsed time.Duration) (int64, error) {
	docID, err := s.db.InsertDocument(path, docType, invoiceNumber)
	if err != nil {
		return 0, err
	}
	if err := s.db.InsertLines(docID, lines); err != nil {
		return 0, err
	}
	if len(events) > 0 {
		if err := s.db.InsertStockEvents(docID, events); err != nil {
			return 0, err
		}
	}

	patched, failed := 0, 0
	for _, event := range events {
		if event.Status == internal.StockPatched {
			patched++
		} else {
			failed++
		}
	}
	if err := s.db.InsertRun(traceID(), docID,
		map[string]float64{"totalMs": float64(elapsed.Milliseconds())},
		map[string]int{"extracted": len(lines), "resolved": resolved, "patched": patched, "failed": failed},
	); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("last_run", time.Now().UTC().Format(time.RFC3339))
	return docID, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
