package config

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	// If no arguments provided and no config file, show help/usage
	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		FileSize:    1 << 30, // 1 GiB
		BlockSize:   4 << 10, // 4 KiB
		ReadRatio:   1.0,
		Access:      AccessRandom,
		Preallocate: true,
		Concurrency: 1,
		Timeout:     30 * time.Second,
		ConfigFile:  configPath,
		Arrival:     ArrivalConfig{Model: ArrivalModelUniform},
		Tracing:     TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
	cfg.DetailedStats = true

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetPath = strings.TrimSpace(cfg.TargetPath)

	return cfg, nil
}

// DumpEffective writes the effective configuration as YAML, for run records and
// troubleshooting flag/file precedence.
func DumpEffective(cfg *Config, w io.Writer) error {
	doc := map[string]interface{}{
		"target":         cfg.TargetPath,
		"file_size":      cfg.FileSize,
		"block_size":     cfg.BlockSize,
		"read_ratio":     cfg.ReadRatio,
		"access":         string(cfg.Access),
		"preallocate":    cfg.Preallocate,
		"fsync":          cfg.Fsync,
		"fsync_every":    cfg.FsyncEvery,
		"concurrency":    cfg.Concurrency,
		"rate":           cfg.Rate,
		"duration":       cfg.Duration.String(),
		"total":          cfg.Total,
		"timeout":        cfg.Timeout.String(),
		"retries":        cfg.Retries,
		"arrival":        string(cfg.Arrival.Model),
		"detailed_stats": cfg.DetailedStats,
		"wait_stats":     cfg.WaitStats,
	}
	if cfg.RandomSeed != 0 {
		doc["seed"] = cfg.RandomSeed
	}
	if len(cfg.Thresholds) > 0 {
		doc["thresholds"] = cfg.Thresholds
	}
	if cfg.ResultsFile != "" {
		doc["results_file"] = cfg.ResultsFile
	}
	if cfg.BaselineFile != "" {
		doc["baseline"] = cfg.BaselineFile
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.TargetPath = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "filesize", "file_size", "file-size"); ok {
		val, err := asByteSize(raw)
		if err != nil {
			return fmt.Errorf("fileSize: %w", err)
		}
		cfg.FileSize = val
	}

	if raw, ok := lookupSetting(settings, "blocksize", "block_size", "block-size"); ok {
		val, err := asByteSize(raw)
		if err != nil {
			return fmt.Errorf("blockSize: %w", err)
		}
		cfg.BlockSize = val
	}

	if raw, ok := lookupSetting(settings, "readratio", "read_ratio", "read-ratio"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("readRatio: %w", err)
		}
		cfg.ReadRatio = val
	}

	if raw, ok := lookupSetting(settings, "access"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("access: %w", err)
		}
		if val != "" {
			cfg.Access = AccessPattern(strings.ToLower(strings.TrimSpace(val)))
		}
	}

	if raw, ok := lookupSetting(settings, "preallocate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("preallocate: %w", err)
		}
		cfg.Preallocate = val
	}

	if raw, ok := lookupSetting(settings, "fsync"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("fsync: %w", err)
		}
		cfg.Fsync = val
	}

	if raw, ok := lookupSetting(settings, "fsyncevery", "fsync_every", "fsync-every"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("fsyncEvery: %w", err)
		}
		cfg.FsyncEvery = val
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	if raw, ok := lookupSetting(settings, "duration"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = dur
	}

	if raw, ok := lookupSetting(settings, "total"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("total: %w", err)
		}
		cfg.Total = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "retries"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("retries: %w", err)
		}
		cfg.Retries = val
	}

	if raw, ok := lookupSetting(settings, "gracefulstop", "graceful_stop", "graceful-stop"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("gracefulStop: %w", err)
		}
		cfg.GracefulStop = dur
	}

	if raw, ok := lookupSetting(settings, "seed"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.RandomSeed = int64(val)
	}

	if raw, ok := lookupSetting(settings, "detailedstats", "detailed_stats", "detailed-stats"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("detailedStats: %w", err)
		}
		cfg.DetailedStats = val
	}

	if raw, ok := lookupSetting(settings, "waitstats", "wait_stats", "wait-stats"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("waitStats: %w", err)
		}
		cfg.WaitStats = val
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "logerrors", "log_errors", "log-errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logErrors: %w", err)
		}
		cfg.LogErrors = val
	}

	if raw, ok := lookupSetting(settings, "resultsfile", "results_file", "results-file", "results"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("resultsFile: %w", err)
		}
		cfg.ResultsFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "baseline"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		cfg.BaselineFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "htmlreport", "html_report", "html-report"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("htmlReport: %w", err)
		}
		cfg.HTMLReport = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "loadpatterns", "load_patterns", "load-patterns"); ok {
		patterns, err := parseLoadPatterns(raw)
		if err != nil {
			return fmt.Errorf("loadPatterns: %w", err)
		}
		cfg.LoadPatterns = patterns
	}

	if raw, ok := lookupSetting(settings, "arrival"); ok {
		arrival, err := parseArrival(raw)
		if err != nil {
			return fmt.Errorf("arrival: %w", err)
		}
		if arrival.Model != "" {
			cfg.Arrival = arrival
		}
	} else if raw, ok := lookupSetting(settings, "arrivalmodel", "arrival_model", "arrival-model"); ok {
		arrival, err := parseArrival(raw)
		if err != nil {
			return fmt.Errorf("arrivalModel: %w", err)
		}
		if arrival.Model != "" {
			cfg.Arrival = arrival
		}
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		thresholds, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = thresholds
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseLoadPatterns(value interface{}) ([]LoadPattern, error) {
	if value == nil {
		return nil, nil
	}
	items, err := toInterfaceSlice(value)
	if err != nil {
		return nil, err
	}
	patterns := make([]LoadPattern, 0, len(items))
	for idx, item := range items {
		entry, err := toStringKeyMap(item)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		pattern, err := buildLoadPattern(entry)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

func buildLoadPattern(settings map[string]interface{}) (LoadPattern, error) {
	var pattern LoadPattern
	if raw, ok := lookupSetting(settings, "name"); ok {
		val, err := asString(raw)
		if err != nil {
			return LoadPattern{}, fmt.Errorf("name: %w", err)
		}
		pattern.Name = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "type"); ok {
		val, err := asString(raw)
		if err != nil {
			return LoadPattern{}, fmt.Errorf("type: %w", err)
		}
		pattern.Type = LoadPatternType(strings.ToLower(strings.TrimSpace(val)))
	}
	if raw, ok := lookupSetting(settings, "fromops", "from_ops", "from-ops"); ok {
		val, err := asInt(raw)
		if err != nil {
			return LoadPattern{}, fmt.Errorf("from_ops: %w", err)
		}
		pattern.FromOPS = val
	}
	if raw, ok := lookupSetting(settings, "toops", "to_ops", "to-ops"); ok {
		val, err := asInt(raw)
		if err != nil {
			return LoadPattern{}, fmt.Errorf("to_ops: %w", err)
		}
		pattern.ToOPS = val
	}
	if raw, ok := lookupSetting(settings, "duration"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return LoadPattern{}, fmt.Errorf("duration: %w", err)
		}
		pattern.Duration = dur
	}
	if raw, ok := lookupSetting(settings, "steps"); ok {
		steps, err := parseLoadSteps(raw)
		if err != nil {
			return LoadPattern{}, fmt.Errorf("steps: %w", err)
		}
		pattern.Steps = steps
	}
	if raw, ok := lookupSetting(settings, "ops"); ok {
		val, err := asInt(raw)
		if err != nil {
			return LoadPattern{}, fmt.Errorf("ops: %w", err)
		}
		pattern.OPS = val
	}
	return pattern, nil
}

func parseLoadSteps(value interface{}) ([]LoadStep, error) {
	items, err := toInterfaceSlice(value)
	if err != nil {
		return nil, err
	}
	steps := make([]LoadStep, 0, len(items))
	for idx, item := range items {
		entry, err := toStringKeyMap(item)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		var step LoadStep
		if raw, ok := lookupSetting(entry, "ops"); ok {
			val, err := asInt(raw)
			if err != nil {
				return nil, fmt.Errorf("index %d ops: %w", idx, err)
			}
			step.OPS = val
		}
		if raw, ok := lookupSetting(entry, "duration"); ok {
			dur, err := asDuration(raw)
			if err != nil {
				return nil, fmt.Errorf("index %d duration: %w", idx, err)
			}
			step.Duration = dur
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseArrival(value interface{}) (ArrivalConfig, error) {
	if value == nil {
		return ArrivalConfig{}, nil
	}
	switch v := value.(type) {
	case string:
		model := strings.ToLower(strings.TrimSpace(v))
		if model == "" {
			return ArrivalConfig{}, nil
		}
		return ArrivalConfig{Model: ArrivalModel(model)}, nil
	default:
		entry, err := toStringKeyMap(value)
		if err != nil {
			return ArrivalConfig{}, err
		}
		if raw, ok := lookupSetting(entry, "model"); ok {
			val, err := asString(raw)
			if err != nil {
				return ArrivalConfig{}, fmt.Errorf("model: %w", err)
			}
			return ArrivalConfig{Model: ArrivalModel(strings.ToLower(strings.TrimSpace(val)))}, nil
		}
		return ArrivalConfig{}, fmt.Errorf("model field is required")
	}
}

func parseTracing(value interface{}) (TracingConfig, error) {
	tracing := TracingConfig{Protocol: "grpc", SampleRate: 1.0}
	if value == nil {
		return tracing, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	if raw, ok := lookupSetting(entry, "enable", "enabled"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("enable: %w", err)
		}
		tracing.Enable = val
	}
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		tracing.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		if val != "" {
			tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
		}
	}
	if raw, ok := lookupSetting(entry, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		tracing.SampleRate = val
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	return tracing, nil
}
