package stock

import (
	"encoding/json"
	"os"
	"path/filepath"

	"factura/internal"
)

// AuditLog appends one JSON line per stock-update attempt. Append failures
// are reported to the caller but must never interrupt the pipeline.
type AuditLog struct {
	path string
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

func (l *AuditLog) Append(event internal.StockEvent) error {
	if l == nil || l.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	blob, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = f.Write(append(blob, '\n'))
	return err
}
