package pdf

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type fakeRenderer struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
}

func (f *fakeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-" + html), nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

func TestServiceCachesRenders(t *testing.T) {
	r := &fakeRenderer{}
	svc := NewService(r, NewMemoryCache(4, time.Hour), time.Hour, time.Second)

	for i := 0; i < 3; i++ {
		doc, err := svc.RenderPDF(context.Background(), "<p>a</p>")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !bytes.HasPrefix(doc, []byte("%PDF-")) {
			t.Errorf("unexpected document %q", doc)
		}
	}

	if got := r.calls.Load(); got != 1 {
		t.Errorf("Expected 1 render, got %d", got)
	}

	if _, err := svc.RenderPDF(context.Background(), "<p>b</p>"); err != nil {
		t.Fatal(err)
	}
	if got := r.calls.Load(); got != 2 {
		t.Errorf("Expected a second render for a different document, got %d", got)
	}
}

func TestServiceCoalescesConcurrentRenders(t *testing.T) {
	r := &fakeRenderer{release: make(chan struct{})}
	svc := NewService(r, nil, time.Hour, 5*time.Second)

	const callers = 5
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RenderPDF(context.Background(), "<p>same</p>")
			errs <- err
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(r.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Render: %v", err)
		}
	}
	if got := r.calls.Load(); got != 1 {
		t.Errorf("Expected concurrent identical renders to coalesce, got %d calls", got)
	}
}

func TestServiceRenderFailure(t *testing.T) {
	boom := errors.New("chrome crashed")
	r := &fakeRenderer{err: boom}
	cache := NewMemoryCache(4, time.Hour)
	svc := NewService(r, cache, time.Hour, time.Second)

	if _, err := svc.RenderPDF(context.Background(), "<p>x</p>"); !errors.Is(err, boom) {
		t.Fatalf("Expected render error, got %v", err)
	}
	if cache.Len() != 0 {
		t.Error("Expected failed render not to be cached")
	}
}

func TestServiceIgnoresCacheErrors(t *testing.T) {
	r := &fakeRenderer{}
	svc := NewService(r, brokenCache{}, time.Hour, time.Second)

	if _, err := svc.RenderPDF(context.Background(), "<p>x</p>"); err != nil {
		t.Fatalf("Expected cache errors to be ignored, got %v", err)
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(nil, nil, time.Hour, time.Second)
	if svc.Enabled() {
		t.Error("Expected service without renderer to be disabled")
	}
	if _, err := svc.RenderPDF(context.Background(), "<p>x</p>"); !errors.Is(err, ErrRendererDisabled) {
		t.Errorf("Expected ErrRendererDisabled, got %v", err)
	}
	if !NewService(NewChromeRenderer(ChromeConfig{}), nil, 0, 0).Enabled() {
		t.Error("Expected chrome renderer to be enabled")
	}
}

func TestKey(t *testing.T) {
	if Key("a") == Key("b") {
		t.Error("Expected different documents to have different keys")
	}
	if Key("a") != Key("a") {
		t.Error("Expected key to be deterministic")
	}
	if len(Key("a")) != 64 {
		t.Errorf("Expected hex sha256 key, got %q", Key("a"))
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(2, time.Hour)

	_ = m.Set(ctx, "a", []byte("A"), time.Hour)
	_ = m.Set(ctx, "b", []byte("B"), time.Hour)

	// Touch a so b becomes least recently used
	if _, ok, _ := m.Get(ctx, "a"); !ok {
		t.Fatal("Expected hit for a")
	}
	_ = m.Set(ctx, "c", []byte("C"), time.Hour)

	if _, ok, _ := m.Get(ctx, "b"); ok {
		t.Error("Expected b to be evicted")
	}
	if doc, ok, _ := m.Get(ctx, "c"); !ok || string(doc) != "C" {
		t.Errorf("Expected c to be cached, got %q %v", doc, ok)
	}
	if m.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", m.Len())
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(4, 50*time.Millisecond)

	_ = m.Set(ctx, "a", []byte("A"), time.Hour)
	if _, ok, _ := m.Get(ctx, "a"); !ok {
		t.Fatal("Expected hit before expiry")
	}

	time.Sleep(120 * time.Millisecond)

	if _, ok, _ := m.Get(ctx, "a"); ok {
		t.Error("Expected a to have expired")
	}
}

func TestMemoryCacheMinimumCapacity(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(0, time.Hour)

	_ = m.Set(ctx, "a", []byte("A"), time.Hour)
	_ = m.Set(ctx, "b", []byte("B"), time.Hour)

	if m.Len() != 1 {
		t.Errorf("Expected capacity of at least one entry, got %d", m.Len())
	}
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(mr.Addr(), "", 0)
	defer cache.Close()
	ctx := context.Background()

	if err := cache.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	if _, ok, err := cache.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("Expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Set(ctx, "k", []byte("%PDF-1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists(redisKeyPrefix + "k") {
		t.Error("Expected key to be stored with prefix")
	}

	doc, ok, err := cache.Get(ctx, "k")
	if err != nil || !ok || string(doc) != "%PDF-1" {
		t.Errorf("Expected hit, got %q ok=%v err=%v", doc, ok, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Error("Expected key to expire")
	}
}

func TestServiceWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(mr.Addr(), "", 0)
	defer cache.Close()

	r := &fakeRenderer{}
	svc := NewService(r, cache, time.Hour, time.Second)

	for i := 0; i < 2; i++ {
		if _, err := svc.RenderPDF(context.Background(), "<p>r</p>"); err != nil {
			t.Fatal(err)
		}
	}
	if got := r.calls.Load(); got != 1 {
		t.Errorf("Expected redis hit on second render, got %d calls", got)
	}
	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}

	mr.Close()
	if err := svc.Ping(context.Background()); err == nil {
		t.Error("Expected ping to fail after redis stopped")
	}
	if _, err := svc.RenderPDF(context.Background(), "<p>other</p>"); err != nil {
		t.Errorf("Expected render to succeed with redis down, got %v", err)
	}
}
