// Package runner provides the core benchmark execution engine for ioprobe.
//
// The runner package orchestrates concurrent I/O operation execution with
// support for:
//   - Configurable concurrency levels
//   - Rate limiting (operations per second)
//   - Duration-based and count-based run termination
//   - Multiple arrival models (uniform, Poisson)
//   - Dynamic load patterns (ramp, step, spike)
//
// # Basic Usage
//
// Create a runner with options and an operation implementation:
//
//	opts := runner.Options{
//		Concurrency:  10,
//		TotalOps:     1000,
//		Duration:     time.Minute,
//		OpsPerSecond: 100,
//		Op:           myOperation,
//	}
//	r := runner.New(opts)
//	result := r.Run(ctx)
//
// # Operation Interface
//
// The [Operation] interface defines what a runner executes:
//
//	type Operation interface {
//		Do(ctx context.Context) error
//	}
//
// Implement this interface for different workloads (sequential reads, random
// writes, mixed).
//
// # Rate Limiting & Arrival Models
//
// The runner supports different arrival models for operation pacing:
//   - [ArrivalModelUniform]: operations at fixed intervals
//   - [ArrivalModelPoisson]: operations following a Poisson distribution for
//     bursty, realistic disk traffic
//
// # Load Patterns
//
// Define dynamic IOPS profiles using [LoadPattern]:
//   - Ramp: gradual increase/decrease in IOPS
//   - Step: discrete IOPS changes over time
//   - Spike: constant IOPS burst for a duration
//
// # Middleware
//
// Enhance operations with middleware:
//   - [WithLogging]: log operation failures
//   - [WithRetry]: automatic retry with backoff
package runner
