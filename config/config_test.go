package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setupEnv clears every known variable and points DATA_FILE at a temp dataset
func setupEnv(t *testing.T) string {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}

	path := filepath.Join(t.TempDir(), "ayurvedic_data.csv")
	if err := os.WriteFile(path, []byte("Disease,Age Group,Remedies,Image URL,Season\n"), 0o600); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	t.Setenv("DATA_FILE", path)
	return path
}

func TestLoadValidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ADDRESS", "127.0.0.1")
	t.Setenv("ENV", "dev")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("PDF_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.PDFTimeout != 10*time.Second {
		t.Errorf("Expected PDF timeout 10s, got %s", cfg.PDFTimeout)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	setupEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.PDFRenderer != RendererChrome {
		t.Errorf("Expected default renderer chrome, got %s", cfg.PDFRenderer)
	}
	if cfg.PDFCache != CacheMemory {
		t.Errorf("Expected default cache memory, got %s", cfg.PDFCache)
	}
	if cfg.PDFTimeout != 30*time.Second {
		t.Errorf("Expected default PDF timeout 30s, got %s", cfg.PDFTimeout)
	}
	if cfg.PDFCacheTTL != time.Hour {
		t.Errorf("Expected default cache TTL 1h, got %s", cfg.PDFCacheTTL)
	}
}

func TestInvalidValues(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"non numeric port", "PORT", "abc", "PORT must be a valid number"},
		{"port zero", "PORT", "0", "PORT must be between 1 and 65535"},
		{"port too large", "PORT", "65536", "PORT must be between 1 and 65535"},
		{"privileged port", "PORT", "80", "PORT 80 is privileged"},
		{"invalid address", "ADDRESS", "invalid", "ADDRESS must be a valid IP address"},
		{"public address", "ADDRESS", "8.8.8.8", "is a public IP"},
		{"invalid env", "ENV", "invalid", "ENV must be one of"},
		{"invalid log level", "LOG_LEVEL", "verbose", "LOG_LEVEL must be one of"},
		{"zero request body", "MAX_REQUEST_BODY", "0", "MAX_REQUEST_BODY must be positive"},
		{"retention too long", "LOG_RETENTION_WEEKS", "60", "LOG_RETENTION_WEEKS is too large"},
		{"log file too small", "MAX_LOG_FILE_SIZE", "1024", "MAX_LOG_FILE_SIZE is too small"},
		{"missing data file", "DATA_FILE", "/nonexistent/remedies.csv", "does not exist"},
		{"unknown renderer", "PDF_RENDERER", "wkhtmltopdf", "PDF_RENDERER must be one of"},
		{"timeout too short", "PDF_TIMEOUT", "10ms", "PDF_TIMEOUT must be between"},
		{"unknown cache", "PDF_CACHE", "disk", "PDF_CACHE must be one of"},
		{"bad redis address", "REDIS_ADDR", "nohost", "invalid REDIS_ADDR"},
		{"bad trusted proxy", "TRUSTED_PROXIES", "10.0.0.0/33", "invalid TRUSTED_PROXIES"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setupEnv(t)
			if tc.key == "REDIS_ADDR" {
				t.Setenv("PDF_CACHE", CacheRedis)
			}
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies(" 10.0.0.0/8, 127.0.0.1 ,::1,")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := []string{"10.0.0.0/8", "127.0.0.1/32", "::1/128"}
	if len(prefixes) != len(want) {
		t.Fatalf("Expected %d prefixes, got %v", len(want), prefixes)
	}
	for i, p := range prefixes {
		if p.String() != want[i] {
			t.Errorf("Prefix %d: expected %s, got %s", i, want[i], p)
		}
	}

	if prefixes, err := ParseTrustedProxies(""); err != nil || len(prefixes) != 0 {
		t.Errorf("Expected no proxies for an empty value, got %v %v", prefixes, err)
	}
	if _, err := ParseTrustedProxies("proxy.local"); err == nil {
		t.Error("Expected error for a hostname")
	}
}

func TestDataFileDirectory(t *testing.T) {
	setupEnv(t)
	t.Setenv("DATA_FILE", t.TempDir())

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("Expected directory error, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	setupEnv(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("PORT=9123\nLOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "warn")

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("PORT") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "9123" {
		t.Errorf("Expected port from .env, got %s", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected environment to win over .env, got %s", cfg.LogLevel)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("Expected missing .env to be ignored, got %v", err)
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		hasError bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"staging", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"production", EnvProduction, false},
		{"TEST", EnvTest, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for %s, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.input, err)
			}
			if env != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, env)
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}
