package internal

type DocType string

const (
	DocFacture DocType = "facture"
	DocAvoir   DocType = "avoir"
)

type LookupStatus string

const (
	LookupFromCache    LookupStatus = "from_cache"
	LookupOK           LookupStatus = "ok"
	LookupHTTPError    LookupStatus = "http_error"
	LookupInvalidJSON  LookupStatus = "invalid_json"
	LookupNoID         LookupStatus = "no_id"
	LookupSkippedNoURL LookupStatus = "skipped_no_lookup_url"
	LookupSkippedNoRef LookupStatus = "skipped_no_reference"
)

type StockStatus string

const (
	StockPatched StockStatus = "patched"
	StockFailed  StockStatus = "failed"
)

// InvoiceLine is one parsed invoice line. The extraction pipeline fills the
// first block; the resolver and reconciler add the optional fields afterwards.
type InvoiceLine struct {
	Page        int     `json:"page"`
	Row         int     `json:"row"`
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
	TVA         *string `json:"tva"`
	Raw         string  `json:"raw"`

	LookupID      *string      `json:"lookup_id,omitempty"`
	LookupStatus  LookupStatus `json:"lookup_status,omitempty"`
	LookupInfo    *string      `json:"lookup_info,omitempty"`
	InitialStock  *float64     `json:"initial_stock,omitempty"`
	InvoiceNumber *string      `json:"invoice_number,omitempty"`
	StockUpdate   *StockUpdate `json:"stock_update,omitempty"`
}

type StockUpdate struct {
	Delta    float64     `json:"delta"`
	NewStock float64     `json:"new_stock"`
	Status   StockStatus `json:"status"`
}

type ProductEntry struct {
	Reference string
	ID        string
	Stock     *float64
}

// StockEvent is one audit-log line for a stock-update attempt.
type StockEvent struct {
	TS            string      `json:"ts"`
	Reference     string      `json:"reference"`
	ProductID     string      `json:"product_id"`
	LookupID      *string     `json:"lookup_id"`
	Delta         float64     `json:"delta"`
	Reason        string      `json:"reason"`
	InvoiceNumber *string     `json:"invoice_number"`
	InitialStock  *float64    `json:"initial_stock"`
	NewStock      float64     `json:"new_stock"`
	Status        StockStatus `json:"status"`
}
