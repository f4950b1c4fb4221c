// Package views renders the HTML pages, fragments and the print document
// from embedded html/template files.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/pri779/Ayurvedic-chatbot/remedy"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Views holds the parsed templates. It is safe for concurrent use.
type Views struct {
	templates *template.Template
}

// IndexData feeds the input form
type IndexData struct {
	Diseases []string
}

// New parses the embedded templates
func New() (*Views, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Views{templates: tmpl}, nil
}

// MustNew is like New but panics on error. Templates are embedded, so a
// failure is a build defect.
func MustNew() *Views {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Static returns the embedded static assets rooted at the static directory
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Index writes the input form
func (v *Views) Index(w io.Writer, data IndexData) error {
	return v.execute(w, "index", data)
}

// Result writes the remedy page for a lookup with at least one match
func (v *Views) Result(w io.Writer, result remedy.Result) error {
	return v.execute(w, "result", result)
}

// NotFound writes the informational no-match fragment
func (v *Views) NotFound(w io.Writer) error {
	return v.execute(w, "not_found", nil)
}

// DownloadNotFound writes the no-match fragment of the download route
func (v *Views) DownloadNotFound(w io.Writer) error {
	return v.execute(w, "download_not_found", nil)
}

// Error writes a client error fragment
func (v *Views) Error(w io.Writer, message string) error {
	return v.execute(w, "error", message)
}

// PrintDocument returns the standalone HTML handed to the PDF renderer
func (v *Views) PrintDocument(result remedy.Result) (string, error) {
	var buf bytes.Buffer
	if err := v.execute(&buf, "pdf", result); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// execute renders into a buffer first so a template error never leaves a
// half-written response
func (v *Views) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := v.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
