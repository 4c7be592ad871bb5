// Package dashboard renders a live terminal UI for benchmark metrics.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/dustin/go-humanize"

	"github.com/torosent/ioprobe/internal/iostats"
	"github.com/torosent/ioprobe/internal/metrics"
)

// RunConfig holds benchmark configuration parameters for display.
type RunConfig struct {
	Target      string        // Target file path
	BlockSize   int64         // I/O block size in bytes
	ReadRatio   float64       // Fraction of reads, 0..1
	Access      string        // Access pattern (sequential, random)
	Concurrency int           // Number of concurrent workers
	Duration    time.Duration // Run duration (0 = unlimited)
	Total       int           // Total operations to execute (0 = unlimited)
	Rate        int           // Operations per second (0 = unlimited)
	ConfigFile  string        // Path to config file if used
}

// Dashboard renders a live terminal UI for I/O benchmark metrics.
type Dashboard struct {
	collector    *metrics.Collector
	iostats      *iostats.Stats
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid              *ui.Grid
	latencySparkle    *widgets.SparklineGroup
	latencyPara       *widgets.Paragraph
	iopsGauge         *widgets.Gauge
	errorList         *widgets.List
	summaryPara       *widgets.Paragraph
	metricsPara       *widgets.Paragraph
	ioTimesPara       *widgets.Paragraph
	throughputSparkle *widgets.SparklineGroup
	latencyHistory    []float64
	readBWHistory     []float64
	writeBWHistory    []float64
	startTime         time.Time
	runDuration       time.Duration
	runConfig         RunConfig
}

// New creates a new Dashboard.
func New(collector *metrics.Collector, ioStats *iostats.Stats, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:      collector,
		iostats:        ioStats,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		readBWHistory:  make([]float64, 0, 100),
		writeBWHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		runConfig:      cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	// Latency Sparkline
	latencyLine := widgets.NewSparkline()
	latencyLine.Title = "Latency (ms)"
	latencyLine.LineColor = ui.ColorGreen
	latencyLine.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(latencyLine)
	d.latencySparkle.Title = "Real-time Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	// Throughput Sparklines
	readLine := widgets.NewSparkline()
	readLine.Title = "Read MiB/s"
	readLine.LineColor = ui.ColorGreen
	readLine.Data = []float64{0}

	writeLine := widgets.NewSparkline()
	writeLine.Title = "Write MiB/s"
	writeLine.LineColor = ui.ColorMagenta
	writeLine.Data = []float64{0}

	d.throughputSparkle = widgets.NewSparklineGroup(readLine, writeLine)
	d.throughputSparkle.Title = "Throughput"
	d.throughputSparkle.BorderStyle.Fg = ui.ColorCyan

	// Latency Metrics Paragraph
	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Stats"
	d.latencyPara.Text = "Min: 0ms\nMean: 0ms\nP50: 0ms\nP90: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	// IOPS Gauge
	d.iopsGauge = widgets.NewGauge()
	d.iopsGauge.Title = "Operations Per Second"
	d.iopsGauge.Percent = 0
	d.iopsGauge.BarColor = ui.ColorBlue
	d.iopsGauge.BorderStyle.Fg = ui.ColorCyan
	d.iopsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	// Error List
	d.errorList = widgets.NewList()
	d.errorList.Title = "Errors"
	d.errorList.Rows = []string{"No failures"}
	d.errorList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.errorList.BorderStyle.Fg = ui.ColorCyan

	// Summary Paragraph
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Benchmark Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	// Metrics Paragraph (plain text summary)
	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan

	// I/O Time Accounting Paragraph
	d.ioTimesPara = widgets.NewParagraph()
	d.ioTimesPara.Title = "I/O Time Accounting"
	d.ioTimesPara.Text = "No I/O data"
	d.ioTimesPara.TextStyle = ui.NewStyle(ui.ColorGreen)
	d.ioTimesPara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.18,
			ui.NewCol(0.5, d.iopsGauge),
			ui.NewCol(0.5, d.metricsPara),
		),
		ui.NewRow(0.24,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.24,
			ui.NewCol(1.0, d.throughputSparkle),
		),
		ui.NewRow(0.20,
			ui.NewCol(0.5, d.ioTimesPara),
			ui.NewCol(0.5, d.errorList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and cleans up.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	d.runDuration = time.Since(d.startTime)
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// GetFinalStats returns the final statistics after the dashboard has stopped.
func (d *Dashboard) GetFinalStats() metrics.Stats {
	return d.collector.Stats(d.runDuration)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			// Check if context is done to avoid blocking
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := time.Since(d.startTime)
	stats := d.collector.Stats(elapsed)

	// Update latency history for sparkline
	if stats.MeanLatency > 0 {
		latencyMs := stats.MeanLatencyMs
		d.latencyHistory = append(d.latencyHistory, latencyMs)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		d.latencySparkle.Title = fmt.Sprintf(
			"Real-time Latency | Current: %.2fms | Min: %.2fms | Max: %.2fms",
			latencyMs,
			stats.MinLatencyMs,
			stats.MaxLatencyMs,
		)
	}

	// Update throughput history
	d.readBWHistory = appendCapped(d.readBWHistory, stats.ReadMBps, 100)
	d.writeBWHistory = appendCapped(d.writeBWHistory, stats.WriteMBps, 100)
	d.throughputSparkle.Sparklines[0].Data = d.readBWHistory
	d.throughputSparkle.Sparklines[1].Data = d.writeBWHistory
	d.throughputSparkle.Title = fmt.Sprintf(
		"Throughput | Read: %.1f MiB/s | Write: %.1f MiB/s",
		stats.ReadMBps,
		stats.WriteMBps,
	)

	currentIOPS := stats.OpsPerSec
	maxIOPS := 100.0
	if currentIOPS > maxIOPS {
		maxIOPS = currentIOPS
	}
	iopsPercent := int((currentIOPS / maxIOPS) * 100)
	if iopsPercent > 100 {
		iopsPercent = 100
	}
	d.iopsGauge.Percent = iopsPercent
	d.iopsGauge.Label = fmt.Sprintf("%.1f IOPS", currentIOPS)

	params := d.formatRunParams()

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\n%s\nElapsed: %s | Ops: %d | Failed: %d",
		d.runConfig.Target,
		params,
		elapsed.Round(time.Second),
		stats.Total,
		stats.Failures,
	)

	d.metricsPara.Text = fmt.Sprintf(
		"Total Ops:         %d\nReads:             %d (%s)\nWrites:            %d (%s)\nFailed:            %d\nCurrent IOPS:      %.2f\nMin Latency:       %.2fms\nMean Latency:      %.2fms\nP50/P90/P99:       %.2f / %.2f / %.2f ms",
		stats.Total,
		stats.Reads,
		humanize.IBytes(uint64(stats.BytesRead)),
		stats.Writes,
		humanize.IBytes(uint64(stats.BytesWritten)),
		stats.Failures,
		currentIOPS,
		stats.MinLatencyMs,
		stats.MeanLatencyMs,
		stats.P50LatencyMs,
		stats.P90LatencyMs,
		stats.P99LatencyMs,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %.2fms\nMean: %.2fms\nP50:  %.2fms\nP90:  %.2fms\nP99:  %.2fms",
		stats.MinLatencyMs,
		stats.MeanLatencyMs,
		stats.P50LatencyMs,
		stats.P90LatencyMs,
		stats.P99LatencyMs,
	)

	d.errorList.Rows = formatErrorRows(stats.Errors)
	d.updateIOTimes()
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

// updateIOTimes refreshes the serial/parallel time accounting panel.
func (d *Dashboard) updateIOTimes() {
	if d.iostats == nil {
		d.ioTimesPara.Text = "[Detailed accounting disabled](fg:green)"
		return
	}

	snap := d.iostats.Snapshot()
	if snap.Reads == 0 && snap.Writes == 0 {
		d.ioTimesPara.Text = "[No I/O data yet](fg:green)"
		return
	}

	lines := []string{
		fmt.Sprintf("[Read:](fg:cyan)  serial %s | parallel %s", snap.ReadTime.Round(time.Millisecond), snap.ParallelReadTime.Round(time.Millisecond)),
		fmt.Sprintf("[Write:](fg:cyan) serial %s | parallel %s", snap.WriteTime.Round(time.Millisecond), snap.ParallelWriteTime.Round(time.Millisecond)),
		fmt.Sprintf("[I/O:](fg:cyan)   parallel %s", snap.ParallelIOTime.Round(time.Millisecond)),
	}
	if snap.WaitTime > 0 {
		lines = append(lines, fmt.Sprintf("[Wait:](fg:cyan)  serial %s | parallel %s", snap.WaitTime.Round(time.Millisecond), snap.ParallelWaitTime.Round(time.Millisecond)))
	}
	lines = append(lines, fmt.Sprintf("[Busy:](fg:yellow) %.1f%%", snap.IOBusyRatio()*100))

	d.ioTimesPara.Text = strings.Join(lines, "\n")
}

func appendCapped(history []float64, value float64, max int) []float64 {
	history = append(history, value)
	if len(history) > max {
		history = history[1:]
	}
	return history
}

func formatErrorRows(errors map[string]int) []string {
	if len(errors) == 0 {
		return []string{"[No failures](fg:green)"}
	}

	type errorRow struct {
		name  string
		count int
	}
	rows := make([]errorRow, 0, len(errors))
	for name, count := range errors {
		rows = append(rows, errorRow{name: name, count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count == rows[j].count {
			return rows[i].name < rows[j].name
		}
		return rows[i].count > rows[j].count
	})

	maxRows := len(rows)
	if maxRows > 10 {
		maxRows = 10
	}
	formatted := make([]string, 0, maxRows)
	for i := 0; i < maxRows; i++ {
		formatted = append(formatted, fmt.Sprintf("[%s](fg:red) %d", metrics.FriendlyErrorName(rows[i].name), rows[i].count))
	}
	return formatted
}

// formatRunParams formats the benchmark configuration parameters for display.
func (d *Dashboard) formatRunParams() string {
	var parts []string

	if d.runConfig.BlockSize > 0 {
		parts = append(parts, fmt.Sprintf("Block: %s", humanize.IBytes(uint64(d.runConfig.BlockSize))))
	}

	parts = append(parts, fmt.Sprintf("Read Ratio: %.0f%%", d.runConfig.ReadRatio*100))

	if d.runConfig.Access != "" {
		parts = append(parts, fmt.Sprintf("Access: %s", d.runConfig.Access))
	}

	if d.runConfig.Concurrency > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", d.runConfig.Concurrency))
	}

	if d.runConfig.Rate > 0 {
		parts = append(parts, fmt.Sprintf("Rate: %d/s", d.runConfig.Rate))
	} else {
		parts = append(parts, "Rate: unlimited")
	}

	if d.runConfig.Duration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", d.runConfig.Duration))
	}

	if d.runConfig.Total > 0 {
		parts = append(parts, fmt.Sprintf("Total: %d", d.runConfig.Total))
	}

	if d.runConfig.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.runConfig.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
