package pdf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/pri779/Ayurvedic-chatbot/interfaces"
	"github.com/pri779/Ayurvedic-chatbot/logging"
	"github.com/pri779/Ayurvedic-chatbot/metrics"
	"golang.org/x/sync/singleflight"
)

var _ interfaces.PDFRenderer = (*Service)(nil)

// Service renders print documents with caching. Identical documents
// requested concurrently are rendered once.
type Service struct {
	renderer interfaces.PDFRenderer
	cache    interfaces.PDFCache
	ttl      time.Duration
	timeout  time.Duration
	group    singleflight.Group
}

// NewService wires a renderer and a cache. A nil cache disables caching.
func NewService(renderer interfaces.PDFRenderer, cache interfaces.PDFCache, ttl, timeout time.Duration) *Service {
	if renderer == nil {
		renderer = DisabledRenderer{}
	}
	if cache == nil {
		cache = NoCache{}
	}
	return &Service{renderer: renderer, cache: cache, ttl: ttl, timeout: timeout}
}

// Enabled reports whether the renderer can produce documents
func (s *Service) Enabled() bool {
	if e, ok := s.renderer.(interface{ Enabled() bool }); ok {
		return e.Enabled()
	}
	return true
}

// Key returns the cache key of a print document
func Key(html string) string {
	sum := sha256.Sum256([]byte(html))
	return hex.EncodeToString(sum[:])
}

// RenderPDF returns the PDF for html. Cache failures are logged and the
// document is rendered anyway; render failures are returned.
func (s *Service) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	key := Key(html)

	if doc, ok, err := s.cache.Get(ctx, key); err != nil {
		logging.Warn("PDF cache read failed", "error", err)
	} else if ok {
		metrics.ObserveCache(true)
		return doc, nil
	}
	metrics.ObserveCache(false)

	v, err, shared := s.group.Do(key, func() (any, error) {
		// One caller going away must not fail the others waiting on this key
		renderCtx, cancel := renderTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		start := time.Now()
		doc, err := s.renderer.RenderPDF(renderCtx, html)
		if err != nil {
			if !errors.Is(err, ErrRendererDisabled) {
				metrics.PDFRenderFailures.Inc()
			}
			return nil, err
		}
		metrics.PDFRenderDuration.Observe(time.Since(start).Seconds())

		if err := s.cache.Set(renderCtx, key, doc, s.ttl); err != nil {
			logging.Warn("PDF cache write failed", "error", err)
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		logging.Debug("PDF render shared between requests", "key", key[:12])
	}
	return v.([]byte), nil
}

// Ping checks a remote cache when there is one
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.cache.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
