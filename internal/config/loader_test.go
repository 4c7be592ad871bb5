package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"hello", "hello"},
		{123, "123"},
		{true, "true"},
		{nil, ""},
		{[]byte("bytes"), "bytes"},
	}

	for _, tt := range tests {
		got, err := asString(tt.input)
		if err != nil {
			t.Errorf("asString(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		input interface{}
		want  int
	}{
		{123, 123},
		{"456", 456},
		{int64(789), 789},
		{float64(10.0), 10},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asInt(tt.input)
		if err != nil {
			t.Errorf("asInt(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		input interface{}
		want  bool
	}{
		{true, true},
		{"true", true},
		{"1", true},
		{false, false},
		{"false", false},
		{"0", false},
		{nil, false},
	}

	for _, tt := range tests {
		got, err := asBool(tt.input)
		if err != nil {
			t.Errorf("asBool(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asBool(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAsDuration(t *testing.T) {
	tests := []struct {
		input interface{}
		want  time.Duration
	}{
		{time.Second, time.Second},
		{"1m", time.Minute},
		{10, 10 * time.Second}, // int treated as seconds
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asDuration(tt.input)
		if err != nil {
			t.Errorf("asDuration(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asDuration(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"4KiB", 4096},
		{"1MiB", 1 << 20},
		{"2GiB", 2 << 30},
		{"512", 512},
		{"", 0},
	}

	for _, tt := range tests {
		got, err := parseByteSize(tt.input)
		if err != nil {
			t.Errorf("parseByteSize(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("parseByteSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}

	if _, err := parseByteSize("not-a-size"); err == nil {
		t.Error("parseByteSize(not-a-size) error = nil, want error")
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := &Config{}
	settings := map[string]interface{}{
		"target":      "/mnt/bench/testfile",
		"block_size":  "16KiB",
		"concurrency": 10,
		"timeout":     "5s",
		"access":      "sequential",
		"tracing": map[string]interface{}{
			"enable":   true,
			"endpoint": "localhost:4317",
		},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}

	if cfg.TargetPath != "/mnt/bench/testfile" {
		t.Errorf("TargetPath = %q, want /mnt/bench/testfile", cfg.TargetPath)
	}
	if cfg.BlockSize != 16<<10 {
		t.Errorf("BlockSize = %d, want %d", cfg.BlockSize, 16<<10)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want 10", cfg.Concurrency)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Access != AccessSequential {
		t.Errorf("Access = %q, want sequential", cfg.Access)
	}
	if !cfg.Tracing.Enable {
		t.Errorf("Tracing.Enable = false, want true")
	}
	if cfg.Tracing.Endpoint != "localhost:4317" {
		t.Errorf("Tracing.Endpoint = %q, want localhost:4317", cfg.Tracing.Endpoint)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := &Config{
		Concurrency: 1,
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)

	args := []string{
		"--concurrency=5",
		"--block-size=128KiB",
		"--fsync",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.BlockSize != 128<<10 {
		t.Errorf("BlockSize = %d, want %d", cfg.BlockSize, 128<<10)
	}
	if !cfg.Fsync {
		t.Errorf("Fsync = false, want true")
	}
}

func TestLoader_Load(t *testing.T) {
	loader := NewLoader()
	args := []string{
		"--target=/tmp/bench.dat",
		"--concurrency=2",
	}

	cfg, err := loader.Load(args)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetPath != "/tmp/bench.dat" {
		t.Errorf("TargetPath = %q, want /tmp/bench.dat", cfg.TargetPath)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
	}
}

func TestParseLoadPatterns(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{
			"name":     "ramp-up",
			"type":     "ramp",
			"from_ops": 10,
			"to_ops":   100,
			"duration": "1m",
		},
	}

	patterns, err := parseLoadPatterns(input)
	if err != nil {
		t.Fatalf("parseLoadPatterns() error = %v", err)
	}

	if len(patterns) != 1 {
		t.Fatalf("len(patterns) = %d, want 1", len(patterns))
	}

	p := patterns[0]
	if p.Name != "ramp-up" {
		t.Errorf("Name = %q, want ramp-up", p.Name)
	}
	if p.Type != "ramp" {
		t.Errorf("Type = %q, want ramp", p.Type)
	}
	if p.FromOPS != 10 {
		t.Errorf("FromOPS = %d, want 10", p.FromOPS)
	}
	if p.ToOPS != 100 {
		t.Errorf("ToOPS = %d, want 100", p.ToOPS)
	}
	if p.Duration != time.Minute {
		t.Errorf("Duration = %v, want 1m", p.Duration)
	}
}

func TestLoader_LoadPrintConfig(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"--target=/tmp/bench.dat", "--print-config"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.PrintConfig {
		t.Error("PrintConfig = false, want true")
	}

	cfg, err = NewLoader().Load([]string{"--target=/tmp/bench.dat"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PrintConfig {
		t.Error("PrintConfig = true, want false by default")
	}
}
