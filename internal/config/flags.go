package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ioprobe",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target flags
	flags.String("target", "", "Path of the file or device to benchmark")
	flags.String("file-size", "1GiB", "Size of the benchmark file (e.g. 256MiB, 4GiB)")
	flags.String("block-size", "4KiB", "I/O block size per operation (e.g. 4KiB, 1MiB)")
	flags.Float64("read-ratio", 1.0, "Fraction of read operations in the mix (0.0 = all writes, 1.0 = all reads)")
	flags.String("access", string(AccessRandom), "Access pattern: 'sequential' or 'random'")
	flags.Bool("preallocate", true, "Preallocate the benchmark file before the run")
	flags.Bool("fsync", false, "Call fsync after every write")
	flags.Int("fsync-every", 0, "Call fsync after every N writes (0 = use --fsync)")

	// Load control flags
	flags.IntP("concurrency", "c", 1, "Number of concurrent workers")
	flags.IntP("rate", "r", 0, "Operations per second limit (0 means unlimited)")
	flags.DurationP("duration", "d", 0, "How long to run the benchmark (e.g. 30s, 1m)")
	flags.IntP("total", "t", 0, "Total number of operations to execute (0 means unlimited)")
	flags.Duration("timeout", 30*time.Second, "Per-operation timeout")
	flags.Duration("graceful-stop", 5*time.Second, "Max time to wait for in-flight operations after the run ends (0=default, negative=cancel immediately)")
	flags.Int("retries", 0, "Number of retries per failed operation")
	flags.String("arrival-model", string(ArrivalModelUniform), "Arrival model to use when pacing operations (uniform or poisson)")
	flags.Int64("seed", 0, "Random seed for offset selection and poisson pacing (0 = time-based)")

	// Statistics flags
	flags.Bool("detailed-stats", true, "Track serial and parallel I/O time per category")
	flags.Bool("wait-stats", false, "Track time spent blocked waiting on I/O completion")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.Bool("log-errors", false, "Log each failed operation to stderr")
	flags.String("results", "", "Append the run result to the given history file")
	flags.String("baseline", "", "Compare the run against a saved JSON report")
	flags.String("html-report", "", "Write a standalone HTML report to the given path")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	flags.Bool("print-config", false, "Print the effective configuration as YAML and exit")

	// Threshold flags
	flags.StringSlice("threshold", nil, "Performance thresholds (repeatable, e.g., 'io_op_duration:p99 < 5')")

	// Tracing flags
	flags.Bool("trace", false, "Enable OpenTelemetry span export")
	flags.String("trace-endpoint", "", "OTLP endpoint for span export")
	flags.String("trace-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
	flags.Bool("trace-insecure", false, "Disable TLS for OTLP export")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetPath = strings.TrimSpace(val)
	}
	if fs.Changed("file-size") {
		val, err := fs.GetString("file-size")
		if err != nil {
			return err
		}
		size, err := parseByteSize(val)
		if err != nil {
			return fmt.Errorf("file-size: %w", err)
		}
		cfg.FileSize = size
	}
	if fs.Changed("block-size") {
		val, err := fs.GetString("block-size")
		if err != nil {
			return err
		}
		size, err := parseByteSize(val)
		if err != nil {
			return fmt.Errorf("block-size: %w", err)
		}
		cfg.BlockSize = size
	}
	if fs.Changed("read-ratio") {
		val, err := fs.GetFloat64("read-ratio")
		if err != nil {
			return err
		}
		cfg.ReadRatio = val
	}
	if fs.Changed("access") {
		val, err := fs.GetString("access")
		if err != nil {
			return err
		}
		cfg.Access = AccessPattern(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("preallocate") {
		val, err := fs.GetBool("preallocate")
		if err != nil {
			return err
		}
		cfg.Preallocate = val
	}
	if fs.Changed("fsync") {
		val, err := fs.GetBool("fsync")
		if err != nil {
			return err
		}
		cfg.Fsync = val
	}
	if fs.Changed("fsync-every") {
		val, err := fs.GetInt("fsync-every")
		if err != nil {
			return err
		}
		cfg.FsyncEvery = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("duration") {
		val, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = val
	}
	if fs.Changed("total") {
		val, err := fs.GetInt("total")
		if err != nil {
			return err
		}
		cfg.Total = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("retries") {
		val, err := fs.GetInt("retries")
		if err != nil {
			return err
		}
		cfg.Retries = val
	}
	if fs.Changed("graceful-stop") {
		val, err := fs.GetDuration("graceful-stop")
		if err != nil {
			return err
		}
		cfg.GracefulStop = val
	}
	if fs.Changed("arrival-model") {
		val, err := fs.GetString("arrival-model")
		if err != nil {
			return err
		}
		cfg.Arrival.Model = ArrivalModel(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("seed") {
		val, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.RandomSeed = val
	}
	if fs.Changed("detailed-stats") {
		val, err := fs.GetBool("detailed-stats")
		if err != nil {
			return err
		}
		cfg.DetailedStats = val
	}
	if fs.Changed("wait-stats") {
		val, err := fs.GetBool("wait-stats")
		if err != nil {
			return err
		}
		cfg.WaitStats = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("results") {
		val, err := fs.GetString("results")
		if err != nil {
			return err
		}
		cfg.ResultsFile = strings.TrimSpace(val)
	}
	if fs.Changed("baseline") {
		val, err := fs.GetString("baseline")
		if err != nil {
			return err
		}
		cfg.BaselineFile = strings.TrimSpace(val)
	}
	if fs.Changed("html-report") {
		val, err := fs.GetString("html-report")
		if err != nil {
			return err
		}
		cfg.HTMLReport = strings.TrimSpace(val)
	}
	if fs.Changed("print-config") {
		val, err := fs.GetBool("print-config")
		if err != nil {
			return err
		}
		cfg.PrintConfig = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("trace") {
		val, err := fs.GetBool("trace")
		if err != nil {
			return err
		}
		cfg.Tracing.Enable = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}

	return nil
}
