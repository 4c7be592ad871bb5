package runner

import (
	"testing"

	"golang.org/x/time/rate"
)

func TestOptionsNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Options
		validate func(*testing.T, Options)
	}{
		{
			name:  "defaults",
			input: Options{},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 1 {
					t.Errorf("Concurrency = %d, want 1", o.Concurrency)
				}
				if o.ArrivalModel != ArrivalModelUniform {
					t.Errorf("ArrivalModel = %q, want %q", o.ArrivalModel, ArrivalModelUniform)
				}
				if o.RandomSeed == 0 {
					t.Error("RandomSeed should be non-zero")
				}
				if o.LimiterFactory == nil {
					t.Error("LimiterFactory should not be nil")
				}
			},
		},
		{
			name: "negative values corrected",
			input: Options{
				Concurrency:  -5,
				TotalOps:     -10,
				OpsPerSecond: -1,
			},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 1 {
					t.Errorf("Concurrency = %d, want 1", o.Concurrency)
				}
				if o.TotalOps != 0 {
					t.Errorf("TotalOps = %d, want 0", o.TotalOps)
				}
				if o.OpsPerSecond != 0 {
					t.Errorf("OpsPerSecond = %d, want 0", o.OpsPerSecond)
				}
			},
		},
		{
			name: "preserve valid values",
			input: Options{
				Concurrency:  10,
				TotalOps:     100,
				OpsPerSecond: 50,
				ArrivalModel: ArrivalModelPoisson,
				RandomSeed:   12345,
			},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 10 {
					t.Errorf("Concurrency = %d, want 10", o.Concurrency)
				}
				if o.TotalOps != 100 {
					t.Errorf("TotalOps = %d, want 100", o.TotalOps)
				}
				if o.OpsPerSecond != 50 {
					t.Errorf("OpsPerSecond = %d, want 50", o.OpsPerSecond)
				}
				if o.ArrivalModel != ArrivalModelPoisson {
					t.Errorf("ArrivalModel = %q, want %q", o.ArrivalModel, ArrivalModelPoisson)
				}
				if o.RandomSeed != 12345 {
					t.Errorf("RandomSeed = %d, want 12345", o.RandomSeed)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.input
			opts.normalize()
			tt.validate(t, opts)
		})
	}
}

func TestLimiterFactory(t *testing.T) {
	opts := Options{}
	opts.normalize()

	// Test unlimited
	limiter := opts.LimiterFactory(0)
	if limiter.Limit() != rate.Inf {
		t.Errorf("Limit(0) = %v, want Inf", limiter.Limit())
	}

	// Test limited
	ops := 100
	limiter = opts.LimiterFactory(ops)
	if limiter.Limit() != rate.Limit(ops) {
		t.Errorf("Limit(%d) = %v, want %v", ops, limiter.Limit(), rate.Limit(ops))
	}
	if limiter.Burst() != ops {
		t.Errorf("Burst(%d) = %d, want %d", ops, limiter.Burst(), ops)
	}
}
