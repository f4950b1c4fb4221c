package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultMaxFileSize = 100 * 1024 * 1024

var numberedLogFile = regexp.MustCompile(`^remedies-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingLogger writes to one file per ISO week and rolls over to a
// numbered file when the size limit is reached. Files older than the
// retention period are removed once a day.
type RotatingLogger struct {
	dir         string
	retention   time.Duration
	maxFileSize int64

	mu   sync.Mutex
	file *os.File
	week string
	size int64
	seq  int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewRotatingLogger opens the file for the current week in dir
func NewRotatingLogger(dir string, retentionWeeks int, maxFileSize int64) (*RotatingLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	if retentionWeeks <= 0 {
		retentionWeeks = 4
	}

	rl := &RotatingLogger{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	rl.mu.Lock()
	err := rl.openLocked(weekKey(time.Now()))
	rl.mu.Unlock()
	if err != nil {
		return nil, err
	}

	go rl.cleanupLoop(24 * time.Hour)
	return rl, nil
}

// weekKey returns the ISO week in YYYY-Www format
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (rl *RotatingLogger) fileName(week string, seq int) string {
	if seq == 0 {
		return fmt.Sprintf("remedies-%s.log", week)
	}
	return fmt.Sprintf("remedies-%s_%02d.log", week, seq)
}

// openLocked opens the newest file of week that still has room (caller holds mu)
func (rl *RotatingLogger) openLocked(week string) error {
	if rl.file != nil {
		if err := rl.file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
		rl.file = nil
	}

	seq := rl.seq
	if week != rl.week {
		seq = rl.highestSequence(week)
	}

	for {
		path := filepath.Join(rl.dir, rl.fileName(week, seq))
		info, err := os.Stat(path)
		if err == nil && info.Size() >= rl.maxFileSize {
			seq++
			continue
		}

		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}

		rl.file = file
		rl.week = week
		rl.seq = seq
		rl.size = 0
		if info != nil {
			rl.size = info.Size()
		}
		return nil
	}
}

// highestSequence finds the largest numbered file already written for week
func (rl *RotatingLogger) highestSequence(week string) int {
	matches, _ := filepath.Glob(filepath.Join(rl.dir, fmt.Sprintf("remedies-%s_??.log", week)))
	highest := 0
	for _, match := range matches {
		m := numberedLogFile.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// Write implements io.Writer
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := weekKey(time.Now())
	switch {
	case week != rl.week:
		if err := rl.openLocked(week); err != nil {
			return 0, err
		}
	case rl.size > 0 && rl.size+int64(len(p)) > rl.maxFileSize:
		rl.seq++
		if err := rl.openLocked(week); err != nil {
			return 0, err
		}
	}

	if rl.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := rl.file.Write(p)
	rl.size += int64(n)
	return n, err
}

// CurrentFile returns the path being written to
func (rl *RotatingLogger) CurrentFile() string {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.file == nil {
		return ""
	}
	return rl.file.Name()
}

func (rl *RotatingLogger) cleanupLoop(interval time.Duration) {
	defer close(rl.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			if _, err := rl.cleanup(time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "failed to clean up old logs: %v\n", err)
			}
		}
	}
}

// cleanup removes log files last modified before now minus the retention period
func (rl *RotatingLogger) cleanup(now time.Time) (int, error) {
	entries, err := os.ReadDir(rl.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := now.Add(-rl.retention)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "remedies-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(rl.dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Close stops the cleanup goroutine and closes the current file
func (rl *RotatingLogger) Close() error {
	rl.once.Do(func() { close(rl.stop) })

	select {
	case <-rl.done:
	case <-time.After(time.Second):
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.file == nil {
		return nil
	}
	err := rl.file.Close()
	rl.file = nil
	return err
}

// newLogger builds a console text handler and, when a directory is set,
// a JSON handler on a rotating file
func newLogger(opts Options) (*slog.Logger, *RotatingLogger) {
	level := ParseLevel(opts.Level)
	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	if opts.Dir == "" {
		return slog.New(console), nil
	}

	file, err := NewRotatingLogger(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
	if err != nil {
		logger := slog.New(console)
		logger.Error("Failed to initialize rotating logger, logging to console only", "error", err)
		return logger, nil
	}

	jsonHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(&multiHandler{handlers: []slog.Handler{console, jsonHandler}}), file
}

// multiHandler fans records out to several handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
