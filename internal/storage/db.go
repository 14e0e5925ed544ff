package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"factura/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  path TEXT NOT NULL,
  docType TEXT NOT NULL,
  invoiceNumber TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS lines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  page INTEGER NOT NULL,
  row INTEGER NOT NULL,
  reference TEXT NOT NULL,
  description TEXT NOT NULL,
  quantity REAL NOT NULL,
  unitPrice REAL NOT NULL,
  lineTotal REAL NOT NULL,
  tva TEXT,
  rawLine TEXT NOT NULL,
  lookupId TEXT,
  lookupStatus TEXT,
  initialStock REAL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_lines_document ON lines(documentId);

CREATE TABLE IF NOT EXISTS stock_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  reference TEXT NOT NULL,
  productId TEXT NOT NULL,
  delta REAL NOT NULL,
  reason TEXT NOT NULL,
  initialStock REAL,
  newStock REAL NOT NULL,
  status TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  documentId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertDocument(path string, docType internal.DocType, invoiceNumber string) (int64, error) {
	var num any
	if invoiceNumber != "" {
		num = invoiceNumber
	}
	result, err := d.conn.Exec(`INSERT INTO documents (path, docType, invoiceNumber) VALUES (?, ?, ?)`,
		path, string(docType), num)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertLines(documentID int64, lines []internal.InvoiceLine) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO lines (
  documentId, page, row, reference, description,
  quantity, unitPrice, lineTotal, tva, rawLine,
  lookupId, lookupStatus, initialStock
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, line := range lines {
		var status any
		if line.LookupStatus != "" {
			status = string(line.LookupStatus)
		}
		if _, err := stmt.Exec(
			documentID, line.Page, line.Row, line.Reference, line.Description,
			line.Quantity, line.UnitPrice, line.LineTotal, line.TVA, line.Raw,
			line.LookupID, status, line.InitialStock,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListLines(documentID int64) ([]internal.InvoiceLine, error) {
	rows, err := d.conn.Query(`
SELECT page, row, reference, description, quantity, unitPrice, lineTotal, tva, rawLine, lookupId, initialStock
FROM lines WHERE documentId = ? ORDER BY page ASC, row ASC
`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.InvoiceLine
	for rows.Next() {
		var line internal.InvoiceLine
		if err := rows.Scan(
			&line.Page, &line.Row, &line.Reference, &line.Description,
			&line.Quantity, &line.UnitPrice, &line.LineTotal, &line.TVA, &line.Raw,
			&line.LookupID, &line.InitialStock,
		); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (d *DB) InsertStockEvents(documentID int64, events []internal.StockEvent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO stock_events (documentId, reference, productId, delta, reason, initialStock, newStock, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, event := range events {
		if _, err := stmt.Exec(
			documentID, event.Reference, event.ProductID, event.Delta, event.Reason,
			event.InitialStock, event.NewStock, string(event.Status),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) InsertRun(traceID string, documentID int64, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, documentId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`,
		traceID, documentID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
