package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// AccessPattern selects how offsets are chosen within the target file.
type AccessPattern string

const (
	AccessSequential AccessPattern = "sequential"
	AccessRandom     AccessPattern = "random"
)

type Config struct {
	TargetPath    string        `mapstructure:"target"`
	FileSize      int64         `mapstructure:"file_size"`
	BlockSize     int64         `mapstructure:"block_size"`
	ReadRatio     float64       `mapstructure:"read_ratio"` // fraction of reads in the mix, 0..1
	Access        AccessPattern `mapstructure:"access"`
	Preallocate   bool          `mapstructure:"preallocate"`
	Fsync         bool          `mapstructure:"fsync"`
	FsyncEvery    int           `mapstructure:"fsync_every"` // fsync after every N writes (0 = per Fsync flag)
	Concurrency   int           `mapstructure:"concurrency"`
	Rate          int           `mapstructure:"rate"`
	Duration      time.Duration `mapstructure:"duration"`
	Total         int           `mapstructure:"total"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Retries       int           `mapstructure:"retries"`
	GracefulStop  time.Duration `mapstructure:"graceful_stop"`
	JSONOutput    bool          `mapstructure:"json_output"`
	Dashboard     bool          `mapstructure:"dashboard"`
	LogErrors     bool          `mapstructure:"log_errors"`
	DetailedStats bool          `mapstructure:"detailed_stats"`
	WaitStats     bool          `mapstructure:"wait_stats"`
	ResultsFile   string        `mapstructure:"results_file"`
	BaselineFile  string        `mapstructure:"baseline"`
	HTMLReport    string        `mapstructure:"html_report"`
	PrintConfig   bool          `mapstructure:"-"`
	ConfigFile    string        `mapstructure:"-"`
	LoadPatterns  []LoadPattern `mapstructure:"load_patterns"`
	Arrival       ArrivalConfig `mapstructure:"arrival"`
	Thresholds    []string      `mapstructure:"thresholds"`
	Tracing       TracingConfig `mapstructure:"tracing"`
	RandomSeed    int64         `mapstructure:"seed"`
}

type LoadPatternType string

const (
	LoadPatternTypeRamp  LoadPatternType = "ramp"
	LoadPatternTypeStep  LoadPatternType = "step"
	LoadPatternTypeSpike LoadPatternType = "spike"
)

type LoadPattern struct {
	Name     string          `mapstructure:"name"`
	Type     LoadPatternType `mapstructure:"type"`
	FromOPS  int             `mapstructure:"from_ops"`
	ToOPS    int             `mapstructure:"to_ops"`
	Duration time.Duration   `mapstructure:"duration"`
	Steps    []LoadStep      `mapstructure:"steps"`
	OPS      int             `mapstructure:"ops"`
}

type LoadStep struct {
	OPS      int           `mapstructure:"ops"`
	Duration time.Duration `mapstructure:"duration"`
}

type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

// TracingConfig controls OpenTelemetry span export.
type TracingConfig struct {
	Enable      bool    `mapstructure:"enable"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
}

func (t TracingConfig) Enabled() bool {
	return t.Enable
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string
	var warnings []string

	if strings.TrimSpace(c.TargetPath) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}

	// Warnings for configurations that can saturate or wear out a device.
	if c.Concurrency > 512 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High concurrency configured (%d workers). This can saturate the target device and starve other processes.", c.Concurrency))
	}
	if c.ReadRatio == 0 && c.Duration > time.Hour {
		warnings = append(warnings, "WARNING: Long write-only run configured. Sustained writes can wear flash media.")
	}

	if len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, w)
		}
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Total < 0 {
		issues = append(issues, "total must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Retries < 0 {
		issues = append(issues, "retries must be >= 0")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be >= 0")
	}
	if c.BlockSize <= 0 {
		issues = append(issues, "block-size must be > 0")
	}
	if c.FileSize <= 0 {
		issues = append(issues, "file-size must be > 0")
	}
	if c.BlockSize > 0 && c.FileSize > 0 && c.BlockSize > c.FileSize {
		issues = append(issues, "block-size must not exceed file-size")
	}
	if c.ReadRatio < 0 || c.ReadRatio > 1 {
		issues = append(issues, "read-ratio must be between 0.0 and 1.0")
	}
	if c.FsyncEvery < 0 {
		issues = append(issues, "fsync-every must be >= 0")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}

	accessIssues := validateAccessPattern(c.Access)
	if len(accessIssues) > 0 {
		issues = append(issues, accessIssues...)
	}

	arrivalIssues := validateArrivalConfig(c.Arrival)
	if len(arrivalIssues) > 0 {
		issues = append(issues, arrivalIssues...)
	}

	patternIssues := validateLoadPatterns(c.LoadPatterns)
	if len(patternIssues) > 0 {
		issues = append(issues, patternIssues...)
	}

	tracingIssues := validateTracingConfig(c.Tracing)
	if len(tracingIssues) > 0 {
		issues = append(issues, tracingIssues...)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

func validateAccessPattern(access AccessPattern) []string {
	if access == "" {
		return nil
	}
	switch AccessPattern(strings.ToLower(string(access))) {
	case AccessSequential, AccessRandom:
		return nil
	default:
		return []string{fmt.Sprintf("access pattern %q is not supported", access)}
	}
}

func validateArrivalConfig(arr ArrivalConfig) []string {
	model := arr.Model
	if model == "" {
		model = ArrivalModelUniform
	}
	switch model {
	case ArrivalModelUniform, ArrivalModelPoisson:
		return nil
	default:
		return []string{fmt.Sprintf("arrival model %q is not supported", model)}
	}
}

func validateLoadPatterns(patterns []LoadPattern) []string {
	var issues []string
	for idx, pattern := range patterns {
		typeLabel := strings.TrimSpace(string(pattern.Type))
		if typeLabel == "" {
			issues = append(issues, fmt.Sprintf("loadPatterns[%d]: type is required", idx))
			continue
		}
		switch LoadPatternType(strings.ToLower(typeLabel)) {
		case LoadPatternTypeRamp:
			if pattern.Duration <= 0 {
				issues = append(issues, fmt.Sprintf("loadPatterns[%d]: duration must be > 0 for ramp", idx))
			}
			if pattern.FromOPS < 0 || pattern.ToOPS < 0 {
				issues = append(issues, fmt.Sprintf("loadPatterns[%d]: from_ops and to_ops must be >= 0", idx))
			}
		case LoadPatternTypeStep:
			if len(pattern.Steps) == 0 {
				issues = append(issues, fmt.Sprintf("loadPatterns[%d]: steps are required for step pattern", idx))
			}
			for stepIdx, step := range pattern.Steps {
				if step.OPS < 0 {
					issues = append(issues, fmt.Sprintf("loadPatterns[%d].steps[%d]: ops must be >= 0", idx, stepIdx))
				}
				if step.Duration <= 0 {
					issues = append(issues, fmt.Sprintf("loadPatterns[%d].steps[%d]: duration must be > 0", idx, stepIdx))
				}
			}
		case LoadPatternTypeSpike:
			if pattern.OPS <= 0 {
				issues = append(issues, fmt.Sprintf("loadPatterns[%d]: ops must be > 0 for spike", idx))
			}
			if pattern.Duration <= 0 {
				issues = append(issues, fmt.Sprintf("loadPatterns[%d]: duration must be > 0 for spike", idx))
			}
		default:
			issues = append(issues, fmt.Sprintf("loadPatterns[%d]: unsupported type %q", idx, pattern.Type))
		}
	}
	return issues
}

func validateTracingConfig(tr TracingConfig) []string {
	var issues []string
	if !tr.Enable {
		return nil
	}
	if tr.SampleRate < 0 || tr.SampleRate > 1 {
		issues = append(issues, "tracing: sample_rate must be between 0.0 and 1.0")
	}
	switch strings.ToLower(tr.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", tr.Protocol))
	}
	return issues
}
