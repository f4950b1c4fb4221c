// Package interfaces defines core abstractions for the remedy service
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/pri779/Ayurvedic-chatbot/remedy"
)

// DataQualityReport provides a summary of data quality issues found in the dataset
type DataQualityReport struct {
	InvalidDiseases         int      // Rows whose disease name the form would reject
	InvalidDiseaseRows      []int    // First 10 row numbers with a rejected disease name
	UnknownAgeGroups        int      // Rows whose age group matches no known grammar
	UnknownAgeGroupRows     []int    // First 10 row numbers with an unknown age group
	RecordsWithoutRemedies  int      // Rows with no remedy steps after splitting
	RecordsWithoutImages    int      // Rows without any image reference
	DuplicateDiseaseAgePair []string // "disease|age group" pairs appearing more than once
}

// RemedyStore defines the contract for read-only access to the remedy table.
// The table is loaded once at startup and never changes afterwards.
type RemedyStore interface {
	Lookup(disease string, age int) remedy.Result
	Diseases() []string
	Len() int
	LoadedAt() time.Time
	Source() string
	// HasDrifted reports whether the data file changed on disk since loading
	HasDrifted() bool
}

// DataValidator defines the contract for request input and data validation.
type DataValidator interface {
	// ValidateDisease checks the submitted disease name
	ValidateDisease(input string) error

	// ParseAge converts the submitted age to an integer, rejecting anything else
	ParseAge(input string) (int, error)

	// ReportDataQuality generates a data quality report for the loaded records
	ReportDataQuality(records []remedy.Record) *DataQualityReport
}

// PDFRenderer converts an HTML document to PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// PDFCache stores rendered documents by key.
type PDFCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, pdf []byte, ttl time.Duration) error
}

// Scheduler defines the contract for housekeeping job scheduling.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Result(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, httpStatus int)
}
