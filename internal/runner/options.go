package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Operation abstracts executing a single I/O operation.
// Implementations should return an error for failed operations.
type Operation interface {
	Do(ctx context.Context) error
}

// ArrivalModel selects how operation starts are spaced in time.
type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// LoadPatternType identifies a load pattern shape.
type LoadPatternType string

const (
	LoadPatternTypeRamp  LoadPatternType = "ramp"
	LoadPatternTypeStep  LoadPatternType = "step"
	LoadPatternTypeSpike LoadPatternType = "spike"
)

// LoadPattern describes one segment of a dynamic IOPS schedule.
type LoadPattern struct {
	Type     LoadPatternType
	FromOPS  int
	ToOPS    int
	Duration time.Duration
	Steps    []LoadStep
	OPS      int
}

// LoadStep is a constant-rate step inside a step pattern.
type LoadStep struct {
	OPS      int
	Duration time.Duration
}

// Options configure the Runner.
type Options struct {
	Concurrency  int           // number of worker goroutines
	TotalOps     int           // total operations to execute (0 means unlimited until duration/end)
	Duration     time.Duration // overall time limit (0 means no duration cap)
	OpsPerSecond int           // operations per second pacing (0 means unlimited)
	Op           Operation     // operation executor (required)
	ArrivalModel ArrivalModel  // pacing model (uniform or poisson)
	LoadPatterns []LoadPattern // optional dynamic IOPS schedule

	RandomSeed     int64                       // seed for the poisson sampler
	PoissonSampler func() float64              // optional injection for tests
	LimiterFactory func(ops int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalOps < 0 {
		o.TotalOps = 0
	}
	if o.OpsPerSecond < 0 {
		o.OpsPerSecond = 0
	}
	if o.ArrivalModel == "" {
		o.ArrivalModel = ArrivalModelUniform
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(ops int) *rate.Limiter {
			if ops <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to ops to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(ops), ops)
		}
	}
}
