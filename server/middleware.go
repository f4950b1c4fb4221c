package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/ratelimit"
	"github.com/pri779/Ayurvedic-chatbot/config"
	"github.com/pri779/Ayurvedic-chatbot/logging"
	"github.com/pri779/Ayurvedic-chatbot/metrics"
)

const (
	rateLimitPerSecond = 3
	rateLimitCapacity  = 1000
)

// RealIPMiddleware replaces RemoteAddr with the client IP, without port.
// X-Forwarded-For is only read when the peer is a trusted proxy; the
// right-most hop that is not itself trusted is the client.
func RealIPMiddleware(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := clientHost(r.RemoteAddr)

			xff := strings.Join(r.Header.Values("X-Forwarded-For"), ",")
			if xff != "" && isTrustedProxy(trusted, host) {
				hops := strings.Split(xff, ",")
				for i := len(hops) - 1; i >= 0; i-- {
					addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
					if err != nil {
						break
					}
					host = addr.Unmap().String()
					if !isTrustedProxy(trusted, host) {
						break
					}
				}
			}

			r.RemoteAddr = host
			next.ServeHTTP(w, r)
		})
	}
}

// clientHost strips the port from a RemoteAddr
func clientHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

func isTrustedProxy(trusted []netip.Prefix, host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// RequestSizeMiddleware limits the size of request headers and body
func RequestSizeMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > cfg.MaxRequestBody {
				logging.Warn("Request body too large",
					"content_length", r.ContentLength,
					"max_allowed", cfg.MaxRequestBody,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent())

				respondWithJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
					"error": fmt.Sprintf("Request body too large. Maximum allowed size is %d bytes", cfg.MaxRequestBody),
				})
				return
			}

			// Check header size (rough estimate)
			headerSize := int64(0)
			for key, values := range r.Header {
				headerSize += int64(len(key))
				for _, value := range values {
					headerSize += int64(len(value))
				}
			}

			if headerSize > cfg.MaxHeaderSize {
				logging.Warn("Request headers too large",
					"header_size", headerSize,
					"max_allowed", cfg.MaxHeaderSize,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent())

				respondWithJSON(w, http.StatusRequestHeaderFieldsTooLarge, map[string]string{
					"error": fmt.Sprintf("Request headers too large. Maximum allowed size is %d bytes", cfg.MaxHeaderSize),
				})
				return
			}

			// Chunked bodies carry no Content-Length
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxRequestBody)
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter manages per-client token buckets
type RateLimiter struct {
	clients map[string]*ratelimit.Bucket
	mu      sync.RWMutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*ratelimit.Bucket),
	}
}

func (rl *RateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			bucket = ratelimit.NewBucketWithRate(rateLimitPerSecond, rateLimitCapacity)
			rl.clients[clientIP] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket
}

// Cleanup removes clients whose bucket has refilled and returns how many
// buckets remain. Run periodically by the scheduler.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, bucket := range rl.clients {
		if bucket.Available() == bucket.Capacity() {
			delete(rl.clients, ip)
		}
	}

	remaining := len(rl.clients)
	metrics.RateLimiterBucketsTotal.Set(float64(remaining))
	return remaining
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.clients)
}

func getTokenCost(r *http.Request) int64 {
	path := r.URL.Path

	switch {
	case path == "/":
		return 0 // Free access to the form
	case strings.HasPrefix(path, "/static/"):
		return 0
	case path == "/health":
		return 5
	case path == "/result":
		return 20
	case path == "/download":
		return 100 // Each miss runs a browser render
	}

	return 20 // Default cost for other endpoints
}

// Middleware implements rate limiting using token buckets
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket := rl.getBucket(clientHost(r.RemoteAddr))
		tokenCost := getTokenCost(r)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rateLimitCapacity))
		w.Header().Set("X-RateLimit-Rate", strconv.Itoa(rateLimitPerSecond))

		if bucket.TakeAvailable(tokenCost) < tokenCost {
			logging.Warn("Rate limit exceeded", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		next.ServeHTTP(w, r)
	})
}

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logging.Error("Failed to encode JSON response", "error", err)
		}
	}
}
