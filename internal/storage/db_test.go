package storage

import (
	"path/filepath"
	"testing"

	"factura/internal"
	"factura/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "factura.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndListLines(t *testing.T) {
	db := openTestDB(t)

	docID, err := db.InsertDocument("/tmp/facture.pdf", internal.DocFacture, "F_2024_001")
	if err != nil {
		t.Fatalf("insert document: %v", err)
	}

	lines := []internal.InvoiceLine{
		{
			Page: 1, Row: 1, Reference: "REF001", Description: "Widget A",
			Quantity: 3, UnitPrice: 10.5, LineTotal: 31.5,
			TVA: util.StringPtr("20%"), Raw: "REF001 Widget A 3 10,50 31,50 20%",
			LookupID: util.StringPtr("77"), LookupStatus: internal.LookupFromCache,
			InitialStock: util.FloatPtr(20),
		},
		{
			Page: 2, Row: 1, Reference: "REF002", Description: "Widget B",
			Quantity: 1, UnitPrice: 4, LineTotal: 4,
			Raw: "REF002 Widget B 1 4,00 4,00",
		},
	}
	if err := db.InsertLines(docID, lines); err != nil {
		t.Fatalf("insert lines: %v", err)
	}

	got, err := db.ListLines(docID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lines", len(got))
	}
	first := got[0]
	if first.Reference != "REF001" || first.Quantity != 3 || first.UnitPrice != 10.5 {
		t.Fatalf("line: %+v", first)
	}
	if first.TVA == nil || *first.TVA != "20%" {
		t.Fatalf("tva=%v", first.TVA)
	}
	if first.LookupID == nil || *first.LookupID != "77" {
		t.Fatalf("lookup id=%v", first.LookupID)
	}
	if first.InitialStock == nil || *first.InitialStock != 20 {
		t.Fatalf("initial stock=%v", first.InitialStock)
	}
	if got[1].TVA != nil || got[1].LookupID != nil {
		t.Fatalf("optional fields should stay unset: %+v", got[1])
	}
}

func TestInsertStockEventsAndRun(t *testing.T) {
	db := openTestDB(t)

	docID, err := db.InsertDocument("/tmp/avoir.pdf", internal.DocAvoir, "")
	if err != nil {
		t.Fatalf("insert document: %v", err)
	}

	events := []internal.StockEvent{
		{
			TS: "2026-08-31T10:00:00Z", Reference: "REF001", ProductID: "77",
			Delta: 4, Reason: "AV_12", NewStock: 24,
			InitialStock: util.FloatPtr(20), Status: internal.StockPatched,
		},
	}
	if err := db.InsertStockEvents(docID, events); err != nil {
		t.Fatalf("insert events: %v", err)
	}

	timings := map[string]float64{"total_ms": 12.5}
	counts := map[string]int{"extracted": 1, "patched": 1}
	if err := db.InsertRun("abc123", docID, timings, counts); err != nil {
		t.Fatalf("insert run: %v", err)
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	missing, err := db.GetMetadata("last_run")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no value, got %q", *missing)
	}

	if err := db.SetMetadata("last_run", "2026-08-31T10:00:00Z"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.SetMetadata("last_run", "2026-08-31T11:00:00Z"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := db.GetMetadata("last_run")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || *got != "2026-08-31T11:00:00Z" {
		t.Fatalf("value=%v", got)
	}
}
