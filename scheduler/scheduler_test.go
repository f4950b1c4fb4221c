package scheduler

import (
	"errors"
	"testing"
)

type mockLimiter struct{ calls int }

func (m *mockLimiter) Cleanup() int {
	m.calls++
	return 3
}

type mockDrift struct {
	drifted bool
	err     error
	calls   int
}

func (m *mockDrift) CheckDrift() (bool, error) {
	m.calls++
	return m.drifted, m.err
}

func (m *mockDrift) Source() string { return "remedies.csv" }

func TestStartSchedulesJobs(t *testing.T) {
	tests := []struct {
		name     string
		limiter  BucketCleaner
		drift    DriftChecker
		expected int
	}{
		{"all jobs", &mockLimiter{}, &mockDrift{}, 2},
		{"no drift check", &mockLimiter{}, nil, 1},
		{"nothing", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.limiter, tt.drift)
			if err := s.Start(); err != nil {
				t.Fatalf("Start: %v", err)
			}
			defer s.Stop()

			if got := s.scheduler.Len(); got != tt.expected {
				t.Errorf("Expected %d jobs, got %d", tt.expected, got)
			}
		})
	}
}

func TestStartWaitsForSchedule(t *testing.T) {
	limiter := &mockLimiter{}
	s := NewScheduler(limiter, nil)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	s.Stop()

	if limiter.calls != 0 {
		t.Errorf("Expected no immediate run, got %d calls", limiter.calls)
	}
}

func TestJobs(t *testing.T) {
	limiter := &mockLimiter{}
	s := NewScheduler(limiter, nil)

	s.cleanupBuckets()

	if limiter.calls != 1 {
		t.Errorf("Expected 1 cleanup, got %d", limiter.calls)
	}
}

func TestCheckDrift(t *testing.T) {
	tests := []struct {
		name  string
		drift *mockDrift
	}{
		{"unchanged", &mockDrift{}},
		{"changed", &mockDrift{drifted: true}},
		{"stat error", &mockDrift{drifted: true, err: errors.New("missing")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(nil, tt.drift)
			s.checkDrift()
			if tt.drift.calls != 1 {
				t.Errorf("Expected 1 check, got %d", tt.drift.calls)
			}
		})
	}
}
