// Package handlers provides the HTTP request handlers of the remedy service:
// the input form, the remedy result page, the PDF download and health.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pri779/Ayurvedic-chatbot/interfaces"
	"github.com/pri779/Ayurvedic-chatbot/logging"
	"github.com/pri779/Ayurvedic-chatbot/metrics"
	"github.com/pri779/Ayurvedic-chatbot/pdf"
	"github.com/pri779/Ayurvedic-chatbot/remedy"
	"github.com/pri779/Ayurvedic-chatbot/views"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypePDF  = "application/pdf"

	downloadFilename = "remedy.pdf"
)

var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	store     interfaces.RemedyStore
	validator interfaces.DataValidator
	views     *views.Views
	renderer  interfaces.PDFRenderer
	health    interfaces.HealthChecker
	startTime time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	store interfaces.RemedyStore,
	validator interfaces.DataValidator,
	v *views.Views,
	renderer interfaces.PDFRenderer,
	health interfaces.HealthChecker,
) *HTTPHandlerImpl {
	if renderer == nil {
		renderer = pdf.DisabledRenderer{}
	}
	return &HTTPHandlerImpl{
		store:     store,
		validator: validator,
		views:     v,
		renderer:  renderer,
		health:    health,
		startTime: time.Now(),
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// respondWithHTML renders a view into a buffer and writes it with code.
// A template failure becomes a 500.
func (h *HTTPHandlerImpl) respondWithHTML(w http.ResponseWriter, code int, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		logging.Error("Failed to render page", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to render page")
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(code)
	buf.WriteTo(w)
}

// respondWithInputError writes the error fragment with a 400
func (h *HTTPHandlerImpl) respondWithInputError(w http.ResponseWriter, message string) {
	metrics.ObserveLookup(metrics.OutcomeInvalid)
	h.respondWithHTML(w, http.StatusBadRequest, func(buf io.Writer) error {
		return h.views.Error(buf, message)
	})
}

// parseQuery reads and validates the disease and age form fields
func (h *HTTPHandlerImpl) parseQuery(r *http.Request) (remedy.Query, error) {
	if err := r.ParseForm(); err != nil {
		return remedy.Query{}, fmt.Errorf("invalid form data: %w", err)
	}

	disease := strings.TrimSpace(r.PostFormValue("disease"))
	if err := h.validator.ValidateDisease(disease); err != nil {
		logging.Warn("Unusual user input", "field", "disease", "error", err)
		return remedy.Query{}, err
	}

	age, err := h.validator.ParseAge(r.PostFormValue("age"))
	if err != nil {
		logging.Warn("Unusual user input", "field", "age", "error", err)
		return remedy.Query{}, err
	}

	return remedy.Query{Disease: disease, Age: age}, nil
}

// lookup runs the query against the store and records the outcome
func (h *HTTPHandlerImpl) lookup(q remedy.Query) remedy.Result {
	result := h.store.Lookup(q.Disease, q.Age)
	if result.Found() {
		metrics.ObserveLookup(metrics.OutcomeFound)
	} else {
		metrics.ObserveLookup(metrics.OutcomeNotFound)
	}
	logging.Debug("Remedy lookup", "disease", result.Query.Disease, "age", q.Age, "matches", len(result.Remedies))
	return result
}

// Index serves the input form
func (h *HTTPHandlerImpl) Index(w http.ResponseWriter, r *http.Request) {
	data := views.IndexData{Diseases: h.store.Diseases()}
	h.respondWithHTML(w, http.StatusOK, func(buf io.Writer) error {
		return h.views.Index(buf, data)
	})
}

// Result serves the remedy page for the submitted disease and age
func (h *HTTPHandlerImpl) Result(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.respondWithInputError(w, err.Error())
		return
	}

	result := h.lookup(q)
	if !result.Found() {
		h.respondWithHTML(w, http.StatusOK, h.views.NotFound)
		return
	}

	h.respondWithHTML(w, http.StatusOK, func(buf io.Writer) error {
		return h.views.Result(buf, result)
	})
}

// Download renders the same remedy as Result into a PDF attachment
func (h *HTTPHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.respondWithInputError(w, err.Error())
		return
	}

	result := h.lookup(q)
	if !result.Found() {
		h.respondWithHTML(w, http.StatusOK, h.views.DownloadNotFound)
		return
	}

	doc, err := h.views.PrintDocument(result)
	if err != nil {
		logging.Error("Failed to build print document", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to create PDF")
		return
	}

	out, err := h.renderer.RenderPDF(r.Context(), doc)
	if err != nil {
		if errors.Is(err, pdf.ErrRendererDisabled) {
			h.RespondWithError(w, http.StatusServiceUnavailable, "PDF download is not available")
			return
		}
		logging.Error("Failed to create PDF", "disease", result.Query.Disease, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to create PDF")
		return
	}

	w.Header().Set("Content-Type", contentTypePDF)
	w.Header().Set("Content-Disposition", "attachment; filename="+downloadFilename)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.health.HealthCheck()
	uptime := time.Since(h.startTime)

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
