package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/ioprobe/internal/config"
	"github.com/torosent/ioprobe/internal/dashboard"
	"github.com/torosent/ioprobe/internal/iostats"
	"github.com/torosent/ioprobe/internal/metrics"
	"github.com/torosent/ioprobe/internal/output"
	"github.com/torosent/ioprobe/internal/pool"
	"github.com/torosent/ioprobe/internal/results"
	"github.com/torosent/ioprobe/internal/runner"
	"github.com/torosent/ioprobe/internal/threshold"
	"github.com/torosent/ioprobe/internal/tracing"
	"github.com/torosent/ioprobe/internal/workload"
)

const (
	progressInterval = time.Second
	baseRetryDelay   = 50 * time.Millisecond
	maxRetryDelay    = 2 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// timedOperation enforces a per-operation deadline around the inner operation.
type timedOperation struct {
	inner   runner.Operation
	timeout time.Duration
}

type stderrFailureLogger struct {
	mu sync.Mutex
}

type jitterSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.PrintConfig {
		return config.DumpEffective(cfg, os.Stdout)
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	target, err := workload.PrepareTarget(cfg.TargetPath, cfg.FileSize, cfg.Preallocate)
	if err != nil {
		return err
	}
	defer func() {
		if err := target.Cleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "[ioprobe] cleanup: %v\n", err)
		}
	}()

	ioStats := iostats.New(iostats.Config{
		DetailedIO:   cfg.DetailedStats,
		WaitTracking: cfg.WaitStats || cfg.Fsync || cfg.FsyncEvery > 0,
	})
	collector := metrics.NewCollector()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "[ioprobe] tracing shutdown: %v\n", err)
		}
	}()

	wl, err := workload.New(workload.Options{
		Target:     target,
		BlockSize:  cfg.BlockSize,
		ReadRatio:  cfg.ReadRatio,
		Access:     normalizeAccess(cfg.Access),
		Fsync:      cfg.Fsync,
		FsyncEvery: cfg.FsyncEvery,
		Seed:       seed,
		Stats:      ioStats,
		Collector:  collector,
		Tracer:     workloadTracer(provider, cfg),
		Handles:    pool.NewHandlePool(cfg.Concurrency),
	})
	if err != nil {
		return err
	}
	defer wl.Close()

	var wrapped runner.Operation = wl
	if cfg.Timeout > 0 {
		wrapped = &timedOperation{inner: wrapped, timeout: cfg.Timeout}
	}

	if cfg.LogErrors {
		wrapped = runner.WithLogging(wrapped, &stderrFailureLogger{})
	}

	if cfg.Retries > 0 {
		wrapped = runner.WithRetry(wrapped, newRetryPolicy(cfg.Retries))
	}

	opts := runner.Options{
		Concurrency:  cfg.Concurrency,
		TotalOps:     cfg.Total,
		Duration:     cfg.Duration,
		OpsPerSecond: cfg.Rate,
		Op:           wrapped,
		ArrivalModel: toRunnerArrivalModel(cfg.Arrival.Model),
		LoadPatterns: toRunnerLoadPatterns(cfg.LoadPatterns),
		RandomSeed:   seed,
	}

	r := runner.New(opts)

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, ioStats, dashboard.RunConfig{
			Target:      cfg.TargetPath,
			BlockSize:   cfg.BlockSize,
			ReadRatio:   cfg.ReadRatio,
			Access:      string(cfg.Access),
			Concurrency: cfg.Concurrency,
			Duration:    cfg.Duration,
			Total:       cfg.Total,
			Rate:        cfg.Rate,
			ConfigFile:  cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
		defer dash.Stop()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
		defer func() {
			progress.Stop()
			fmt.Fprintln(os.Stdout)
		}()
	}

	// Re-stamp both clocks right before the workload starts so elapsed time
	// excludes target preparation.
	collector.Start()
	ioStats.Reset()

	result := r.Run(ctx)
	stats := collector.Stats(result.Duration)

	report := output.Report{
		Timestamp: time.Now().UTC(),
		Target:    cfg.TargetPath,
		Stats:     stats,
		IO:        ioStats.Snapshot(),
	}

	if cfg.ResultsFile != "" {
		id, err := results.NewHistory(cfg.ResultsFile).Append(report)
		if err != nil {
			return err
		}
		report.ID = id
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, report)
	}

	if cfg.BaselineFile != "" {
		deltas, err := output.CompareBaseline(cfg.BaselineFile, report)
		if err != nil {
			return err
		}
		output.PrintComparison(os.Stdout, cfg.BaselineFile, deltas)
	}

	thresholdResults, thresholdErr := evaluateThresholds(cfg.Thresholds, stats)

	if cfg.HTMLReport != "" {
		f, err := os.Create(cfg.HTMLReport)
		if err != nil {
			return fmt.Errorf("create html report: %w", err)
		}
		genErr := output.GenerateHTMLReport(f, report, thresholdResults)
		closeErr := f.Close()
		if genErr != nil {
			return genErr
		}
		if closeErr != nil {
			return closeErr
		}
	}

	if thresholdErr != nil {
		return thresholdErr
	}

	if result.Errors > 0 {
		return fmt.Errorf("%d operations failed", result.Errors)
	}
	return nil
}

func (t *timedOperation) Do(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Do(opCtx)
}

// evaluateThresholds parses and evaluates thresholds, printing one line per
// result. The returned error is non-nil when any threshold failed.
func evaluateThresholds(specs []string, stats metrics.Stats) ([]threshold.Result, error) {
	thresholds, err := threshold.ParseMultiple(specs)
	if err != nil {
		return nil, err
	}
	if len(thresholds) == 0 {
		return nil, nil
	}

	evaluated := threshold.NewEvaluator(thresholds).Evaluate(stats)

	failed := 0
	fmt.Fprintln(os.Stdout, "\nThresholds:")
	for _, res := range evaluated {
		status := "PASS"
		if !res.Pass {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(os.Stdout, "  [%s] %s (actual: %.2f)\n", status, res.Threshold.Raw, res.Actual)
	}

	if failed > 0 {
		return evaluated, fmt.Errorf("%d of %d thresholds failed", failed, len(evaluated))
	}
	return evaluated, nil
}

func workloadTracer(provider *tracing.Provider, cfg *config.Config) trace.Tracer {
	if !cfg.Tracing.Enabled() {
		return nil
	}
	return provider.Tracer()
}

func normalizeAccess(access config.AccessPattern) config.AccessPattern {
	normalized := config.AccessPattern(strings.ToLower(strings.TrimSpace(string(access))))
	if normalized == "" {
		return config.AccessRandom
	}
	return normalized
}

func toRunnerArrivalModel(model config.ArrivalModel) runner.ArrivalModel {
	switch strings.ToLower(string(model)) {
	case string(config.ArrivalModelPoisson):
		return runner.ArrivalModelPoisson
	default:
		return runner.ArrivalModelUniform
	}
}

func toRunnerLoadPatterns(patterns []config.LoadPattern) []runner.LoadPattern {
	if len(patterns) == 0 {
		return nil
	}
	result := make([]runner.LoadPattern, len(patterns))
	for i, p := range patterns {
		result[i] = runner.LoadPattern{
			Type:     runner.LoadPatternType(p.Type),
			FromOPS:  p.FromOPS,
			ToOPS:    p.ToOPS,
			Duration: p.Duration,
			Steps:    toRunnerLoadSteps(p.Steps),
			OPS:      p.OPS,
		}
	}
	return result
}

func toRunnerLoadSteps(steps []config.LoadStep) []runner.LoadStep {
	if len(steps) == 0 {
		return nil
	}
	result := make([]runner.LoadStep, len(steps))
	for i, s := range steps {
		result[i] = runner.LoadStep{
			OPS:      s.OPS,
			Duration: s.Duration,
		}
	}
	return result
}

func (l *stderrFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[ioprobe] operation failed: %v\n", err)
}

func newRetryPolicy(retries int) runner.RetryPolicy {
	source := &jitterSource{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}

	return runner.RetryPolicy{
		MaxAttempts: retries + 1,
		ShouldRetry: func(err error) bool {
			if err == nil {
				return false
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false
			}
			return true
		},
		DelayFunc: func(attempt int, err error) time.Duration {
			if attempt < 1 {
				attempt = 1
			}
			backoff := time.Duration(1<<uint(attempt-1)) * baseRetryDelay
			if backoff > maxRetryDelay {
				backoff = maxRetryDelay
			}
			return backoff + source.jitter(backoff/2)
		},
	}
}

func (j *jitterSource) jitter(max time.Duration) time.Duration {
	if j == nil || max <= 0 {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return time.Duration(j.rnd.Int63n(int64(max)))
}
