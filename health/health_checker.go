// Package health provides health checking functionality for the remedy service.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/pri779/Ayurvedic-chatbot/interfaces"
)

var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store      interfaces.RemedyStore
	pdfEnabled bool
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(store interfaces.RemedyStore, pdfEnabled bool) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		store:      store,
		pdfEnabled: pdfEnabled,
	}
}

// HealthCheck returns the status of the dataset and the PDF renderer.
// An empty dataset is unhealthy; a disabled renderer or a data file
// changed since startup is degraded but still served.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	records := h.store.Len()
	loadedAt := h.store.LoadedAt()
	drifted := h.store.HasDrifted()

	switch {
	case records == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case !h.pdfEnabled || drifted:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"records":          records,
		"diseases":         len(h.store.Diseases()),
		"data_file":        h.store.Source(),
		"loaded_at":        loadedAt.Format(time.RFC3339),
		"data_age_hours":   math.Round(time.Since(loadedAt).Hours()*10) / 10,
		"data_file_change": drifted,
		"pdf_enabled":      h.pdfEnabled,
	}

	return status, data, httpStatus
}
