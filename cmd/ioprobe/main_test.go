package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/torosent/ioprobe/internal/config"
	"github.com/torosent/ioprobe/internal/metrics"
	"github.com/torosent/ioprobe/internal/runner"
)

func TestToRunnerArrivalModel(t *testing.T) {
	tests := []struct {
		input config.ArrivalModel
		want  runner.ArrivalModel
	}{
		{config.ArrivalModelUniform, runner.ArrivalModelUniform},
		{config.ArrivalModelPoisson, runner.ArrivalModelPoisson},
		{"unknown", runner.ArrivalModelUniform}, // Default fallback
	}

	for _, tt := range tests {
		got := toRunnerArrivalModel(tt.input)
		if got != tt.want {
			t.Errorf("toRunnerArrivalModel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToRunnerLoadPatterns(t *testing.T) {
	input := []config.LoadPattern{
		{
			Type:     "ramp",
			FromOPS:  10,
			ToOPS:    100,
			Duration: time.Minute,
		},
	}
	got := toRunnerLoadPatterns(input)
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Type != runner.LoadPatternTypeRamp {
		t.Errorf("Type = %q, want ramp", got[0].Type)
	}
	if got[0].FromOPS != 10 || got[0].ToOPS != 100 {
		t.Errorf("FromOPS/ToOPS = %d/%d, want 10/100", got[0].FromOPS, got[0].ToOPS)
	}
}

func TestToRunnerLoadSteps(t *testing.T) {
	input := []config.LoadStep{
		{OPS: 10, Duration: time.Second},
	}
	got := toRunnerLoadSteps(input)
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].OPS != 10 {
		t.Errorf("OPS = %d, want 10", got[0].OPS)
	}
}

func TestNormalizeAccess(t *testing.T) {
	tests := []struct {
		input config.AccessPattern
		want  config.AccessPattern
	}{
		{"", config.AccessRandom},
		{"Sequential", config.AccessSequential},
		{" random ", config.AccessRandom},
	}

	for _, tt := range tests {
		if got := normalizeAccess(tt.input); got != tt.want {
			t.Errorf("normalizeAccess(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRetryPolicySkipsContextErrors(t *testing.T) {
	policy := newRetryPolicy(3)

	if policy.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", policy.MaxAttempts)
	}
	if policy.ShouldRetry(context.Canceled) {
		t.Error("context.Canceled must not be retried")
	}
	if policy.ShouldRetry(context.DeadlineExceeded) {
		t.Error("context.DeadlineExceeded must not be retried")
	}
	if !policy.ShouldRetry(errors.New("device error")) {
		t.Error("I/O errors should be retried")
	}
}

func TestRetryPolicyBackoffCapped(t *testing.T) {
	policy := newRetryPolicy(10)

	for attempt := 1; attempt <= 10; attempt++ {
		delay := policy.DelayFunc(attempt, errors.New("x"))
		if delay < 0 {
			t.Fatalf("attempt %d: negative delay %s", attempt, delay)
		}
		// Cap plus max jitter of half the cap.
		if delay > maxRetryDelay+maxRetryDelay/2 {
			t.Fatalf("attempt %d: delay %s exceeds cap", attempt, delay)
		}
	}
}

func TestEvaluateThresholds(t *testing.T) {
	stats := metrics.Stats{
		Total:        100,
		OpsPerSec:    500,
		P99LatencyMs: 4.2,
	}

	results, err := evaluateThresholds([]string{"io_op_duration:p99 < 5"}, stats)
	if err != nil {
		t.Fatalf("evaluateThresholds() error = %v", err)
	}
	if len(results) != 1 || !results[0].Pass {
		t.Errorf("expected single passing result, got %+v", results)
	}

	if _, err := evaluateThresholds([]string{"io_op_duration:p99 < 1"}, stats); err == nil {
		t.Error("expected error when threshold fails")
	}

	if _, err := evaluateThresholds([]string{"not a threshold"}, stats); err == nil {
		t.Error("expected error for malformed threshold")
	}

	if results, err := evaluateThresholds(nil, stats); err != nil || results != nil {
		t.Errorf("expected no results for empty thresholds, got %+v, %v", results, err)
	}
}

func TestTimedOperation(t *testing.T) {
	op := &timedOperation{
		inner:   operationFunc(func(ctx context.Context) error { return ctx.Err() }),
		timeout: time.Second,
	}
	if err := op.Do(context.Background()); err != nil {
		t.Errorf("Do() error = %v", err)
	}

	slow := &timedOperation{
		inner: operationFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
		timeout: 10 * time.Millisecond,
	}
	if err := slow.Do(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want deadline exceeded", err)
	}
}

type operationFunc func(ctx context.Context) error

func (f operationFunc) Do(ctx context.Context) error { return f(ctx) }

func TestRunEndToEnd(t *testing.T) {
	target := filepath.Join(t.TempDir(), "bench.dat")

	err := run([]string{
		"--target", target,
		"--file-size", "1MiB",
		"--block-size", "4KiB",
		"--total", "20",
		"--concurrency", "2",
		"--json-output",
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	// The run created the target, so cleanup must have removed it.
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Error("expected created target to be cleaned up")
	}
}

func TestRunWritesResultsHistory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "bench.dat")
	history := filepath.Join(dir, "history.jsonl")

	err := run([]string{
		"--target", target,
		"--file-size", "256KiB",
		"--block-size", "4KiB",
		"--total", "5",
		"--json-output",
		"--results", history,
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	data, err := os.ReadFile(history)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected history file to contain the run report")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	if err := run([]string{"--read-ratio", "2.0", "--target", "/tmp/x.dat"}); err == nil {
		t.Error("expected validation error for read-ratio > 1")
	}
}

func TestRunPrintConfig(t *testing.T) {
	target := filepath.Join(t.TempDir(), "bench.dat")

	err := run([]string{
		"--target", target,
		"--file-size", "1MiB",
		"--print-config",
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	// Printing the configuration must not touch the target.
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Error("expected --print-config to exit before preparing the target")
	}
}
