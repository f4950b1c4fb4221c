// Package config loads and validates the service configuration from the environment
package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment is the deployment environment
type Environment int

const (
	EnvDevelopment Environment = iota
	EnvStaging
	EnvProduction
	EnvTest
)

func (e Environment) String() string {
	switch e {
	case EnvStaging:
		return "staging"
	case EnvProduction:
		return "prod"
	case EnvTest:
		return "test"
	default:
		return "dev"
	}
}

// ParseEnvironment converts an ENV value to an Environment
func ParseEnvironment(value string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", value)
}

// PDF renderer and cache backends
const (
	RendererChrome = "chrome"
	RendererNone   = "none"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	// Proxies allowed to set X-Forwarded-For. Empty means the header is ignored.
	TrustedProxies []netip.Prefix

	DataFile string // CSV dataset loaded once at startup

	PDFRenderer string
	ChromeBin   string // Chrome executable, launched when ChromeURL is empty
	ChromeURL   string // DevTools websocket of an already running Chrome
	PDFTimeout  time.Duration

	PDFCache      string
	PDFCacheTTL   time.Duration
	PDFCacheSize  int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// LoadDotEnv loads variables from a .env file if one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load %v: %w", existing, err)
	}
	return nil
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	trusted, err := ParseTrustedProxies(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid TRUSTED_PROXIES: %w", err)
	}

	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               env,
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 65536),      // 64KB default, forms are tiny
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default
		TrustedProxies:    trusted,

		DataFile: getEnvWithDefault("DATA_FILE", "ayurvedic_data.csv"),

		PDFRenderer: strings.ToLower(getEnvWithDefault("PDF_RENDERER", RendererChrome)),
		ChromeBin:   os.Getenv("CHROME_BIN"),
		ChromeURL:   os.Getenv("CHROME_URL"),
		PDFTimeout:  getDurationEnvWithDefault("PDF_TIMEOUT", 30*time.Second),

		PDFCache:      strings.ToLower(getEnvWithDefault("PDF_CACHE", CacheMemory)),
		PDFCacheTTL:   getDurationEnvWithDefault("PDF_CACHE_TTL", time.Hour),
		PDFCacheSize:  getIntEnvWithDefault("PDF_CACHE_SIZE", 128),
		RedisAddr:     getEnvWithDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getIntEnvWithDefault("REDIS_DB", 0),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateDataFile(cfg.DataFile); err != nil {
		return fmt.Errorf("invalid DATA_FILE: %w", err)
	}

	if err := validateOneOf(cfg.PDFRenderer, "PDF_RENDERER", RendererChrome, RendererNone); err != nil {
		return fmt.Errorf("invalid PDF_RENDERER: %w", err)
	}

	if err := validateTimeout(cfg.PDFTimeout); err != nil {
		return fmt.Errorf("invalid PDF_TIMEOUT: %w", err)
	}

	if err := validateOneOf(cfg.PDFCache, "PDF_CACHE", CacheMemory, CacheRedis, CacheNone); err != nil {
		return fmt.Errorf("invalid PDF_CACHE: %w", err)
	}

	if cfg.PDFCache != CacheNone && cfg.PDFCacheTTL <= 0 {
		return fmt.Errorf("invalid PDF_CACHE_TTL: must be positive, got: %s", cfg.PDFCacheTTL)
	}

	if cfg.PDFCache == CacheMemory && cfg.PDFCacheSize <= 0 {
		return fmt.Errorf("invalid PDF_CACHE_SIZE: must be positive, got: %d", cfg.PDFCacheSize)
	}

	if cfg.PDFCache == CacheRedis {
		if _, _, err := net.SplitHostPort(cfg.RedisAddr); err != nil {
			return fmt.Errorf("invalid REDIS_ADDR: %w", err)
		}
		if cfg.RedisDB < 0 || cfg.RedisDB > 15 {
			return fmt.Errorf("invalid REDIS_DB: must be between 0 and 15, got: %d", cfg.RedisDB)
		}
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" || address == "0.0.0.0" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// validateDataFile checks that the dataset exists and is a regular file
func validateDataFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("DATA_FILE cannot be empty")
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("DATA_FILE %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("DATA_FILE %s cannot be read: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("DATA_FILE %s is a directory", path)
	}

	return nil
}

// validateTimeout bounds the PDF render timeout between 1s and 2m
func validateTimeout(d time.Duration) error {
	if d < time.Second || d > 2*time.Minute {
		return fmt.Errorf("PDF_TIMEOUT must be between 1s and 2m, got: %s", d)
	}
	return nil
}

// ParseTrustedProxies parses a comma-separated list of IPs or CIDR ranges
func ParseTrustedProxies(value string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "/") {
			prefix, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("%q is not a valid CIDR range: %w", part, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid IP address: %w", part, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func validateOneOf(value, configName string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %v, got: %s", configName, allowed, value)
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnvWithDefault gets an environment variable as a Go duration with a default value
func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"TRUSTED_PROXIES",
		"DATA_FILE",
		"PDF_RENDERER",
		"CHROME_BIN",
		"CHROME_URL",
		"PDF_TIMEOUT",
		"PDF_CACHE",
		"PDF_CACHE_TTL",
		"PDF_CACHE_SIZE",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
	}
}
