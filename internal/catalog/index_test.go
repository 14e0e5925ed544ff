package catalog

import "testing"

func TestBuildIndex(t *testing.T) {
	products := []map[string]any{
		{"product_code": "REF001", "code": "SHADOWED", "id": float64(5), "stock": float64(20)},
		{"code": "REF002", "product_id": "abc", "stock": "12,5"},
		{"code": "NOID"},
		{"id": float64(9)},
		{"reference": "REF003", "id": "old"},
		{"reference": "REF003", "id": "new"},
	}

	idx := BuildIndex(products)
	if len(idx.ByReference) != 3 {
		t.Fatalf("got %d entries", len(idx.ByReference))
	}

	entry, ok := idx.Get("REF001")
	if !ok {
		t.Fatal("REF001 missing")
	}
	if entry.ID != "5" {
		t.Fatalf("id=%q", entry.ID)
	}
	if entry.Stock == nil || *entry.Stock != 20 {
		t.Fatalf("stock=%v", entry.Stock)
	}

	entry, ok = idx.Get("REF002")
	if !ok {
		t.Fatal("REF002 missing")
	}
	if entry.ID != "abc" {
		t.Fatalf("id=%q", entry.ID)
	}
	if entry.Stock == nil || *entry.Stock != 12.5 {
		t.Fatalf("stock=%v", entry.Stock)
	}

	// Duplicate code: last one wins.
	entry, _ = idx.Get("REF003")
	if entry.ID != "new" {
		t.Fatalf("id=%q", entry.ID)
	}

	if _, ok := idx.Get("NOID"); ok {
		t.Fatal("entry without id should be skipped")
	}
}

func TestIndexGetTrims(t *testing.T) {
	idx := BuildIndex([]map[string]any{{"code": "REF001", "id": "1"}})
	if _, ok := idx.Get("  REF001  "); !ok {
		t.Fatal("padded reference should resolve")
	}
	if _, ok := idx.Get("REF999"); ok {
		t.Fatal("unknown reference should not resolve")
	}
}
