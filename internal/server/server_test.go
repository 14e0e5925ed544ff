package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"factura/internal/pdftext"
)

func testServer() *Server {
	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.pageTexts = func([]byte) ([]string, error) {
		return []string{"Facture N° F_1\nREF001 Widget A 3 10,50 31,50\nTotal TTC 31,50"}, nil
	}
	return s
}

func postParse(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestParse(t *testing.T) {
	blob := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 stub"))
	rec := postParse(t, testServer(), `{"docType":"facture","fileBase64":"`+blob+`","fileName":"f.pdf"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}

	var resp parseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Lines) != 1 {
		t.Fatalf("got %d lines", len(resp.Lines))
	}
	line := resp.Lines[0]
	if line.Reference != "REF001" || line.Description != "Widget A" || line.Quantity != 3 {
		t.Fatalf("line: %+v", line)
	}
}

func TestParseBadRequests(t *testing.T) {
	s := testServer()

	cases := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "invalid base64", body: `{"docType":"facture","fileBase64":"%%%"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := postParse(t, s, tc.body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status=%d", rec.Code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/parse", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestParseUnreadablePDF(t *testing.T) {
	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.pageTexts = pdftext.PageTexts

	blob := base64.StdEncoding.EncodeToString([]byte("not a pdf"))
	rec := postParse(t, s, `{"docType":"facture","fileBase64":"`+blob+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("body=%s", rec.Body)
	}
}
