package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/ioprobe/internal/config"
)

func TestParseFlagsDefaults(t *testing.T) {
	loader := config.NewLoader()

	cfg, err := loader.Load([]string{"--target", "/tmp/ioprobe.dat"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetPath != "/tmp/ioprobe.dat" {
		t.Errorf("TargetPath = %q, want /tmp/ioprobe.dat", cfg.TargetPath)
	}
	if cfg.FileSize != 1<<30 {
		t.Errorf("FileSize = %d, want %d", cfg.FileSize, 1<<30)
	}
	if cfg.BlockSize != 4<<10 {
		t.Errorf("BlockSize = %d, want %d", cfg.BlockSize, 4<<10)
	}
	if cfg.ReadRatio != 1.0 {
		t.Errorf("ReadRatio = %f, want 1.0", cfg.ReadRatio)
	}
	if cfg.Access != config.AccessRandom {
		t.Errorf("Access = %q, want random", cfg.Access)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.Rate != 0 {
		t.Errorf("Rate = %d, want 0", cfg.Rate)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Timeout)
	}
	if !cfg.DetailedStats {
		t.Errorf("DetailedStats = false, want true")
	}
	if cfg.WaitStats {
		t.Errorf("WaitStats = true, want false")
	}
	if cfg.JSONOutput {
		t.Errorf("JSONOutput = true, want false")
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{
		"target": "/mnt/bench/testfile",
		"file_size": "256MiB",
		"block_size": "64KiB",
		"read_ratio": 0.7,
		"access": "sequential",
		"concurrency": 10,
		"rate": 100,
		"duration": "2m",
		"total": 500,
		"timeout": "45s",
		"retries": 3,
		"jsonOutput": true
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path, "--concurrency", "16"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetPath != "/mnt/bench/testfile" {
		t.Errorf("TargetPath = %q, want /mnt/bench/testfile", cfg.TargetPath)
	}
	if cfg.FileSize != 256<<20 {
		t.Errorf("FileSize = %d, want %d", cfg.FileSize, 256<<20)
	}
	if cfg.BlockSize != 64<<10 {
		t.Errorf("BlockSize = %d, want %d", cfg.BlockSize, 64<<10)
	}
	if cfg.ReadRatio != 0.7 {
		t.Errorf("ReadRatio = %f, want 0.7", cfg.ReadRatio)
	}
	if cfg.Access != config.AccessSequential {
		t.Errorf("Access = %q, want sequential", cfg.Access)
	}
	if cfg.Concurrency != 16 {
		t.Errorf("Concurrency = %d, want 16 (flag override)", cfg.Concurrency)
	}
	if cfg.Rate != 100 {
		t.Errorf("Rate = %d, want 100", cfg.Rate)
	}
	if cfg.Duration != 2*time.Minute {
		t.Errorf("Duration = %s, want 2m", cfg.Duration)
	}
	if cfg.Total != 500 {
		t.Errorf("Total = %d, want 500", cfg.Total)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %s, want 45s", cfg.Timeout)
	}
	if cfg.Retries != 3 {
		t.Errorf("Retries = %d, want 3", cfg.Retries)
	}
	if !cfg.JSONOutput {
		t.Errorf("JSONOutput = false, want true")
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"target: /dev/shm/bench.dat",
		"file_size: 128MiB",
		"block_size: 8KiB",
		"concurrency: 4",
		"rate: 20",
		"duration: 30s",
		"timeout: 15s",
		"total: 40",
		"wait_stats: true",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetPath != "/dev/shm/bench.dat" {
		t.Errorf("TargetPath = %q, want /dev/shm/bench.dat", cfg.TargetPath)
	}
	if cfg.FileSize != 128<<20 {
		t.Errorf("FileSize = %d, want %d", cfg.FileSize, 128<<20)
	}
	if cfg.BlockSize != 8<<10 {
		t.Errorf("BlockSize = %d, want %d", cfg.BlockSize, 8<<10)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.Rate != 20 {
		t.Errorf("Rate = %d, want 20", cfg.Rate)
	}
	if cfg.Duration != 30*time.Second {
		t.Errorf("Duration = %s, want 30s", cfg.Duration)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Timeout = %s, want 15s", cfg.Timeout)
	}
	if cfg.Total != 40 {
		t.Errorf("Total = %d, want 40", cfg.Total)
	}
	if !cfg.WaitStats {
		t.Errorf("WaitStats = false, want true")
	}
}

func TestConfigValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		have config.Config
		want []string
	}{
		{
			name: "missing target",
			have: config.Config{FileSize: 1 << 20, BlockSize: 4 << 10, Concurrency: 1},
			want: []string{"target"},
		},
		{
			name: "negative values",
			have: config.Config{
				TargetPath:  "/tmp/bench.dat",
				FileSize:    1 << 20,
				BlockSize:   4 << 10,
				Concurrency: -1,
				Rate:        -5,
				Total:       -10,
				Timeout:     -1,
				Retries:     -1,
			},
			want: []string{"concurrency", "rate", "total", "timeout", "retries"},
		},
		{
			name: "block larger than file",
			have: config.Config{
				TargetPath:  "/tmp/bench.dat",
				FileSize:    4 << 10,
				BlockSize:   1 << 20,
				Concurrency: 1,
			},
			want: []string{"block-size must not exceed file-size"},
		},
		{
			name: "read ratio out of range",
			have: config.Config{
				TargetPath:  "/tmp/bench.dat",
				FileSize:    1 << 20,
				BlockSize:   4 << 10,
				Concurrency: 1,
				ReadRatio:   1.5,
			},
			want: []string{"read-ratio"},
		},
		{
			name: "dashboard and json conflict",
			have: config.Config{
				TargetPath:  "/tmp/bench.dat",
				FileSize:    1 << 20,
				BlockSize:   4 << 10,
				Concurrency: 1,
				Dashboard:   true,
				JSONOutput:  true,
			},
			want: []string{"dashboard and json-output"},
		},
		{
			name: "bad access pattern",
			have: config.Config{
				TargetPath:  "/tmp/bench.dat",
				FileSize:    1 << 20,
				BlockSize:   4 << 10,
				Concurrency: 1,
				Access:      "stride",
			},
			want: []string{"access pattern"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.have.Validate()
			if err == nil {
				t.Fatalf("Validate() error = nil, want error")
			}
			for _, want := range tc.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error %q missing %q", err.Error(), want)
				}
			}
		})
	}
}

func TestDumpEffective(t *testing.T) {
	cfg := &config.Config{
		TargetPath:  "/tmp/bench.dat",
		FileSize:    1 << 20,
		BlockSize:   4 << 10,
		ReadRatio:   0.5,
		Access:      config.AccessRandom,
		Concurrency: 8,
		Duration:    time.Minute,
		Timeout:     30 * time.Second,
	}

	var buf bytes.Buffer
	if err := config.DumpEffective(cfg, &buf); err != nil {
		t.Fatalf("DumpEffective() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"target: /tmp/bench.dat", "concurrency: 8", "read_ratio: 0.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("DumpEffective() output missing %q:\n%s", want, out)
		}
	}
}
