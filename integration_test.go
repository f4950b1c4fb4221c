package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pri779/Ayurvedic-chatbot/config"
	"github.com/pri779/Ayurvedic-chatbot/handlers"
	"github.com/pri779/Ayurvedic-chatbot/health"
	"github.com/pri779/Ayurvedic-chatbot/pdf"
	"github.com/pri779/Ayurvedic-chatbot/server"
	"github.com/pri779/Ayurvedic-chatbot/validation"
	"github.com/pri779/Ayurvedic-chatbot/views"
)

const integrationCSV = "Disease,Age Group,Remedies,Image URL,Season\n" +
	"Cold,All Ages,Boil ginger. Add honey.,https://img/ginger.jpg,Winter\n" +
	"Fever,18 to 60,1) Rest 2) Fluids,,All\n"

type countingRenderer struct {
	calls atomic.Int32
}

func (c *countingRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	c.calls.Add(1)
	return []byte("%PDF-1.4\n" + html), nil
}

func newIntegrationServer(t *testing.T) (*httptest.Server, *countingRenderer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "remedies.csv")
	if err := os.WriteFile(path, []byte(integrationCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := loadStore(path)
	if err != nil {
		t.Fatalf("loadStore: %v", err)
	}

	renderer := &countingRenderer{}
	svc := pdf.NewService(renderer, pdf.NewMemoryCache(8, time.Hour), time.Hour, 5*time.Second)
	handler := handlers.NewHTTPHandler(store, validation.NewDataValidator(), views.MustNew(), svc, health.NewHealthChecker(store, true))

	cfg := &config.Config{
		Port:           "0",
		Address:        "127.0.0.1",
		Env:            config.EnvTest,
		MaxRequestBody: 65536,
		MaxHeaderSize:  1048576,
		PDFTimeout:     5 * time.Second,
	}
	srv := server.NewServer(cfg, handler, server.NewRateLimiter())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, renderer
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestIntegrationFormToResult(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || !strings.Contains(body, `<option value="Fever">`) {
		t.Fatalf("Unexpected index response %d: %s", resp.StatusCode, body)
	}

	resp, err = http.PostForm(ts.URL+"/result", url.Values{"disease": {"FEVER"}, "age": {"30"}})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{"Step 1: Rest", "Step 2: Fluids", "Season: All"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in result page", want)
		}
	}

	resp, err = http.PostForm(ts.URL+"/result", url.Values{"disease": {"fever"}, "age": {"61"}})
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Sorry, no remedy found") {
		t.Errorf("Expected not found fragment, got %s", body)
	}
}

func TestIntegrationDownload(t *testing.T) {
	ts, renderer := newIntegrationServer(t)

	for i := 0; i < 2; i++ {
		resp, err := http.PostForm(ts.URL+"/download", url.Values{"disease": {"cold"}, "age": {"8"}})
		if err != nil {
			t.Fatal(err)
		}
		body := readBody(t, resp)

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
		}
		if resp.Header.Get("Content-Type") != "application/pdf" {
			t.Errorf("Unexpected content type %q", resp.Header.Get("Content-Type"))
		}
		if resp.Header.Get("Content-Disposition") != "attachment; filename=remedy.pdf" {
			t.Errorf("Unexpected disposition %q", resp.Header.Get("Content-Disposition"))
		}
		if !strings.HasPrefix(body, "%PDF") || !strings.Contains(body, "Step 2: Add honey") {
			t.Errorf("Unexpected document: %s", body)
		}
	}

	if got := renderer.calls.Load(); got != 1 {
		t.Errorf("Expected the second download to be served from cache, got %d renders", got)
	}
}

func TestIntegrationHealthAndMetrics(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status":"healthy"`) {
		t.Errorf("Unexpected health response %d: %s", resp.StatusCode, body)
	}

	resp, err = http.PostForm(ts.URL+"/result", url.Values{"disease": {"cold"}, "age": {"abc"}})
	if err != nil {
		t.Fatal(err)
	}
	if readBody(t, resp); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for a non integer age, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	for _, want := range []string{"remedy_lookups_total", `outcome="invalid"`, "http_request_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in metrics output", want)
		}
	}
}
