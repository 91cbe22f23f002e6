// ABOUTME: HTTP JSON API for document search, labels, and OCR inspection
// ABOUTME: Wires the stores, search engine, and snippet renderer together

package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.etcd.io/bbolt"

	"github.com/nainya/docsearch/internal/logger"
	"github.com/nainya/docsearch/internal/metrics"
	"github.com/nainya/docsearch/pkg/document"
	"github.com/nainya/docsearch/pkg/label"
	"github.com/nainya/docsearch/pkg/ocr"
	"github.com/nainya/docsearch/pkg/search"
	"github.com/nainya/docsearch/pkg/snippet"
)

// Snippets shown per result before the caller asks for the expanded view
const defaultMaxSnippets = 3

// Upper bound on an uploaded OCR image payload
const maxImageBytes = 32 << 20

// Server implements the docsearch HTTP API
type Server struct {
	db        *bbolt.DB
	docStore  *document.Store
	labels    *label.Store
	engine    *search.Engine
	ocrEngine ocr.Engine

	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewServer opens the database at dbPath and wires up the stores
func NewServer(dbPath string, log *logger.Logger, m *metrics.Metrics) (*Server, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	docStore, err := document.NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	labels, err := label.NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Server{
		db:       db,
		docStore: docStore,
		labels:   labels,
		engine:   search.NewEngine(docStore),
		log:      log,
		metrics:  m,
	}, nil
}

// SetOCREngine attaches an OCR engine. Without one the run-OCR endpoint
// reports service unavailable; the engine is injected so this package does
// not depend on a particular provider
func (s *Server) SetOCREngine(eng ocr.Engine) {
	s.ocrEngine = eng
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Handler returns the API handler with observability middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/facets", s.handleFacets)

	mux.HandleFunc("POST /api/documents", s.handleCreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("GET /api/documents/{id}/ocr", s.handleGetDocumentOCR)
	mux.HandleFunc("POST /api/documents/{id}/ocr", s.handleRunOCR)
	mux.HandleFunc("GET /api/documents/{id}/labels", s.handleDocumentLabels)
	mux.HandleFunc("POST /api/documents/{id}/labels", s.handleAssignLabel)
	mux.HandleFunc("DELETE /api/documents/{id}/labels/{labelID}", s.handleUnassignLabel)

	mux.HandleFunc("GET /api/labels", s.handleListLabels)
	mux.HandleFunc("POST /api/labels", s.handleCreateLabel)
	mux.HandleFunc("DELETE /api/labels/{id}", s.handleDeleteLabel)

	mux.HandleFunc("GET /api/ocr/stats", s.handleOCRStats)

	return Middleware(s.metrics, s.log, mux)
}

// ========== Search ==========

// searchRequest extends the engine request with display options for the
// snippet renderer
type searchRequest struct {
	search.Request
	Display     snippet.DisplayOptions `json:"display"`
	MaxSnippets int                    `json:"max_snippets,omitempty"`
	Expanded    bool                   `json:"expanded,omitempty"`
}

// documentResponse is the per-result document metadata. Full text is
// deliberately omitted; snippets carry the matched excerpts
type documentResponse struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	FileSize         int64     `json:"file_size"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"created_at"`
	HasOCRText       bool      `json:"has_ocr_text"`
	OCRConfidence    *float64  `json:"ocr_confidence,omitempty"`
	OCRWordCount     *int      `json:"ocr_word_count,omitempty"`
	OCRProcessingMS  *int64    `json:"ocr_processing_time_ms,omitempty"`
	OCRStatus        string    `json:"ocr_status,omitempty"`
}

type searchResult struct {
	Document       documentResponse   `json:"document"`
	Rank           float64            `json:"search_rank"`
	Snippets       []snippet.Rendered `json:"snippets"`
	HiddenSnippets int                `json:"hidden_snippets"`
}

type searchResponse struct {
	Results     []searchResult `json:"results"`
	Total       int            `json:"total"`
	QueryTimeMS int64          `json:"query_time_ms"`
	Suggestions []string       `json:"suggestions"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.MaxSnippets <= 0 {
		req.MaxSnippets = defaultMaxSnippets
	}
	opts := req.Display.Normalize()

	start := time.Now()
	resp, err := s.engine.Search(req.Request)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	out := searchResponse{
		Results:     []searchResult{},
		Total:       resp.Total,
		QueryTimeMS: resp.QueryTimeMS,
		Suggestions: resp.Suggestions,
	}
	snippetCount := 0
	for _, res := range resp.Results {
		visible, hidden := snippet.Truncate(res.Snippets, req.MaxSnippets, req.Expanded)
		rendered := make([]snippet.Rendered, 0, len(visible))
		for _, sn := range visible {
			rendered = append(rendered, snippet.Render(sn, opts))
			s.metrics.RecordRender(string(opts.ViewMode))
		}
		snippetCount += len(res.Snippets)
		out.Results = append(out.Results, searchResult{
			Document:       toDocumentResponse(res.Document),
			Rank:           res.Rank,
			Snippets:       rendered,
			HiddenSnippets: hidden,
		})
	}

	s.metrics.RecordSearch(resp.Total, snippetCount, time.Since(start))
	s.log.LogSearch(req.Query, resp.Total, time.Since(start), nil)
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := s.engine.Facets()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, facets)
}

// ========== Documents ==========

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var doc document.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if doc.Filename == "" {
		s.writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	if doc.ID == "" {
		doc.ID = newID()
	}
	if doc.OriginalFilename == "" {
		doc.OriginalFilename = doc.Filename
	}

	start := time.Now()
	err := s.docStore.Put(&doc)
	s.recordStore("put", start, err)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.updateDocumentGauge()
	s.writeJSON(w, http.StatusCreated, toDocumentResponse(&doc))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	doc, err := s.docStore.Get(r.PathValue("id"))
	s.recordStore("get", start, err)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := s.docStore.Delete(r.PathValue("id"))
	s.recordStore("delete", start, err)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.updateDocumentGauge()
	w.WriteHeader(http.StatusNoContent)
}

type ocrResponse struct {
	DocumentID string               `json:"document_id"`
	Text       string               `json:"text"`
	Metadata   document.OCRMetadata `json:"metadata"`
}

func (s *Server) handleGetDocumentOCR(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docStore.Get(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ocrResponse{
		DocumentID: doc.ID,
		Text:       doc.OCRText,
		Metadata:   doc.OCR,
	})
}

// handleRunOCR recognizes an uploaded image for an existing document. The
// request body is the raw image payload; language hints come from repeated
// ?lang= query parameters
func (s *Server) handleRunOCR(w http.ResponseWriter, r *http.Request) {
	if s.ocrEngine == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no OCR engine configured")
		return
	}
	id := r.PathValue("id")
	if _, err := s.docStore.Get(id); err != nil {
		s.writeStoreError(w, err)
		return
	}

	img, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("read image: %v", err))
		return
	}
	if len(img) == 0 {
		s.writeError(w, http.StatusBadRequest, "image payload is required")
		return
	}

	in := ocr.Input{ID: id, Image: img, Languages: r.URL.Query()["lang"]}
	if err := ocr.Process(r.Context(), s.ocrEngine, s.docStore, id, in); err != nil {
		s.metrics.RecordOCRJob(string(document.OCRFailed), 0)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc, err := s.docStore.Get(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	conf := 0.0
	if doc.OCR.Confidence != nil {
		conf = *doc.OCR.Confidence
	}
	s.metrics.RecordOCRJob(string(document.OCRCompleted), conf)
	s.writeJSON(w, http.StatusOK, ocrResponse{
		DocumentID: doc.ID,
		Text:       doc.OCRText,
		Metadata:   doc.OCR,
	})
}

// ========== Labels ==========

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.labels.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if labels == nil {
		labels = []*label.Label{}
	}
	s.writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleCreateLabel(w http.ResponseWriter, r *http.Request) {
	var l label.Label
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if l.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if l.ID == "" {
		l.ID = newID()
	}
	if err := s.labels.Create(&l); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, &l)
}

func (s *Server) handleDeleteLabel(w http.ResponseWriter, r *http.Request) {
	if err := s.labels.Delete(r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDocumentLabels(w http.ResponseWriter, r *http.Request) {
	// Verify the document exists so missing IDs 404 instead of listing empty
	if _, err := s.docStore.Get(r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	labels, err := s.labels.LabelsForDocument(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if labels == nil {
		labels = []*label.Label{}
	}
	s.writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleAssignLabel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LabelID string `json:"label_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.LabelID == "" {
		s.writeError(w, http.StatusBadRequest, "label_id is required")
		return
	}
	if _, err := s.docStore.Get(r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	if err := s.labels.Assign(body.LabelID, r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnassignLabel(w http.ResponseWriter, r *http.Request) {
	if err := s.labels.Unassign(r.PathValue("labelID"), r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ========== OCR stats ==========

func (s *Server) handleOCRStats(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docStore.List(document.Filter{})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, ocr.Stats(docs))
}

// ========== Helpers ==========

func toDocumentResponse(doc *document.Document) documentResponse {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return documentResponse{
		ID:               doc.ID,
		Filename:         doc.Filename,
		OriginalFilename: doc.OriginalFilename,
		MimeType:         doc.MimeType,
		FileSize:         doc.FileSize,
		Tags:             tags,
		CreatedAt:        doc.CreatedAt,
		HasOCRText:       doc.HasOCRText(),
		OCRConfidence:    doc.OCR.Confidence,
		OCRWordCount:     doc.OCR.WordCount,
		OCRProcessingMS:  doc.OCR.ProcessingTimeMS,
		OCRStatus:        string(doc.OCR.Status),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode response").Err(err).Send()
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store sentinel errors to HTTP status codes
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, document.ErrNotFound), errors.Is(err, label.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeSearchError maps search errors to HTTP status codes
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	if errors.Is(err, search.ErrUnsupportedMode) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) recordStore(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordStoreOperation(operation, status, time.Since(start))
}

func (s *Server) updateDocumentGauge() {
	if count, err := s.docStore.Count(); err == nil {
		s.metrics.UpdateDocumentCount(count)
	}
}

// newID generates a random 128-bit hex identifier
func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("id generation: %v", err))
	}
	return hex.EncodeToString(b[:])
}
