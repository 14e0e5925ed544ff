package server

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"factura/internal"
	"factura/internal/pdftext"
	"factura/internal/pipeline"
)

type parseRequest struct {
	DocType    string `json:"docType"`
	FileBase64 string `json:"fileBase64"`
	FileName   string `json:"fileName,omitempty"`
}

type parsedLine struct {
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
}

type parseResponse struct {
	Lines []parsedLine `json:"lines"`
}

// Server is the thin request/response boundary: it exposes extraction only,
// never the enrichment or reconciliation fields.
type Server struct {
	logger    *slog.Logger
	pageTexts func([]byte) ([]string, error)
}

func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger, pageTexts: pdftext.PageTexts}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/parse", s.handleParse)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	blob, err := base64.StdEncoding.DecodeString(req.FileBase64)
	if err != nil {
		http.Error(w, "invalid base64 payload", http.StatusBadRequest)
		return
	}

	pages, err := s.pageTexts(blob)
	if err != nil {
		http.Error(w, "unreadable pdf", http.StatusBadRequest)
		return
	}

	docType := mapDocType(req.DocType)
	lines := pipeline.ExtractLines(pages, docType)

	out := parseResponse{Lines: []parsedLine{}}
	for _, line := range lines {
		out.Lines = append(out.Lines, parsedLine{
			Reference:   line.Reference,
			Description: line.Description,
			Quantity:    line.Quantity,
		})
	}

	s.logger.Info("parse request", "docType", string(docType), "fileName", req.FileName, "lines", len(out.Lines))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}` + "\n"))
}

// Anything that is not a credit note is treated as an invoice.
func mapDocType(docType string) internal.DocType {
	if strings.ToLower(docType) == "avoir" {
		return internal.DocAvoir
	}
	return internal.DocFacture
}
