package output

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/torosent/ioprobe/internal/iostats"
	"github.com/torosent/ioprobe/internal/metrics"
	"github.com/torosent/ioprobe/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt      string
	Target           string
	Stats            metrics.Stats
	IO               iostats.Snapshot
	BusyPercent      float64
	ThresholdSummary *ThresholdSummary
	ErrorRows        []ErrorRow
}

// ThresholdSummary aggregates threshold evaluation results for the report.
type ThresholdSummary struct {
	Total   int
	Passed  int
	Failed  int
	Results []ThresholdResultRow
}

// ThresholdResultRow is one evaluated threshold rendered in the report table.
type ThresholdResultRow struct {
	Threshold string
	Metric    string
	Aggregate string
	Operator  string
	Expected  float64
	Actual    float64
	Pass      bool
}

// ErrorRow is one error type with its occurrence count.
type ErrorRow struct {
	Name  string
	Count int
}

// GenerateHTMLReport generates a standalone HTML report.
func GenerateHTMLReport(w io.Writer, report Report, thresholdResults []threshold.Result) error {
	var summary *ThresholdSummary
	if len(thresholdResults) > 0 {
		summary = &ThresholdSummary{
			Total:   len(thresholdResults),
			Results: make([]ThresholdResultRow, len(thresholdResults)),
		}
		for i, tr := range thresholdResults {
			summary.Results[i] = ThresholdResultRow{
				Threshold: tr.Threshold.Raw,
				Metric:    tr.Threshold.Metric,
				Aggregate: tr.Threshold.Aggregate,
				Operator:  tr.Threshold.Operator,
				Expected:  tr.Threshold.Value,
				Actual:    tr.Actual,
				Pass:      tr.Pass,
			}
			if tr.Pass {
				summary.Passed++
			} else {
				summary.Failed++
			}
		}
	}

	errorRows := make([]ErrorRow, 0, len(report.Stats.Errors))
	for name, count := range report.Stats.Errors {
		errorRows = append(errorRows, ErrorRow{Name: metrics.FriendlyErrorName(name), Count: count})
	}
	sort.Slice(errorRows, func(i, j int) bool {
		return errorRows[i].Count > errorRows[j].Count
	})

	data := HTMLReportData{
		GeneratedAt:      time.Now().Format(time.RFC3339),
		Target:           report.Target,
		Stats:            report.Stats,
		IO:               report.IO,
		BusyPercent:      report.IO.IOBusyRatio() * 100,
		ThresholdSummary: summary,
		ErrorRows:        errorRows,
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatDuration": func(d time.Duration) string {
			return d.String()
		},
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatBytes": func(n int64) string {
			return humanize.IBytes(uint64(n))
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ioprobe Benchmark Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.success {
            border-left-color: #10b981;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
        }
        .badge-success {
            background: #d1fae5;
            color: #065f46;
        }
        .badge-error {
            background: #fee2e2;
            color: #991b1b;
        }
        .latency-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
            gap: 15px;
            margin-top: 20px;
        }
        .latency-item {
            background: #f8f9fa;
            padding: 15px;
            border-radius: 6px;
            text-align: center;
        }
        .latency-item .label {
            font-size: 0.85rem;
            color: #6c757d;
            margin-bottom: 5px;
        }
        .latency-item .value {
            font-size: 1.3rem;
            font-weight: bold;
            color: #2c3e50;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>ioprobe Benchmark Report</h1>
            {{if .Target}}
            <div class="meta" style="margin-top: 5px;">Target: {{.Target}}</div>
            {{end}}
            <div class="meta">Generated: {{.GeneratedAt}} | Duration: {{formatDuration .Stats.Duration}}</div>
        </header>

        <div class="content">
            <!-- Summary Cards -->
            <div class="grid">
                <div class="card">
                    <h3>Total Operations</h3>
                    <div class="value">{{.Stats.Total}}</div>
                    <div class="subvalue">{{formatFloat .Stats.OpsPerSec}} ops/sec</div>
                </div>
                <div class="card success">
                    <h3>Read Throughput</h3>
                    <div class="value">{{formatFloat .Stats.ReadMBps}} MiB/s</div>
                    <div class="subvalue">{{.Stats.Reads}} reads, {{formatBytes .Stats.BytesRead}}</div>
                </div>
                <div class="card success">
                    <h3>Write Throughput</h3>
                    <div class="value">{{formatFloat .Stats.WriteMBps}} MiB/s</div>
                    <div class="subvalue">{{.Stats.Writes}} writes, {{formatBytes .Stats.BytesWritten}}</div>
                </div>
                <div class="card error">
                    <h3>Failed</h3>
                    <div class="value">{{.Stats.Failures}}</div>
                </div>
            </div>

            <!-- Latency Statistics -->
            <div class="section">
                <h2>Latency Statistics</h2>
                <div class="latency-grid">
                    <div class="latency-item">
                        <div class="label">Min</div>
                        <div class="value">{{formatDuration .Stats.MinLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Max</div>
                        <div class="value">{{formatDuration .Stats.MaxLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Mean</div>
                        <div class="value">{{formatDuration .Stats.MeanLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P50</div>
                        <div class="value">{{formatDuration .Stats.P50Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P90</div>
                        <div class="value">{{formatDuration .Stats.P90Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P99</div>
                        <div class="value">{{formatDuration .Stats.P99Latency}}</div>
                    </div>
                </div>
            </div>

            <!-- I/O Time Accounting -->
            <div class="section">
                <h2>I/O Time Accounting</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Category</th>
                            <th>Serial Time</th>
                            <th>Parallel Time</th>
                        </tr>
                    </thead>
                    <tbody>
                        <tr>
                            <td>Reads</td>
                            <td>{{formatDuration .IO.ReadTime}}</td>
                            <td>{{formatDuration .IO.ParallelReadTime}}</td>
                        </tr>
                        <tr>
                            <td>Writes</td>
                            <td>{{formatDuration .IO.WriteTime}}</td>
                            <td>{{formatDuration .IO.ParallelWriteTime}}</td>
                        </tr>
                        <tr>
                            <td>Combined I/O</td>
                            <td>-</td>
                            <td>{{formatDuration .IO.ParallelIOTime}}</td>
                        </tr>
                        <tr>
                            <td>Waits</td>
                            <td>{{formatDuration .IO.WaitTime}}</td>
                            <td>{{formatDuration .IO.ParallelWaitTime}}</td>
                        </tr>
                    </tbody>
                </table>
                <p style="margin-top: 10px; color: #6c757d;">
                    Elapsed: {{formatDuration .IO.Elapsed}} | Device busy: {{formatFloat .BusyPercent}}%
                </p>
            </div>

            <!-- Thresholds -->
            {{if .ThresholdSummary}}
            <div class="section">
                <h2>Thresholds ({{.ThresholdSummary.Passed}}/{{.ThresholdSummary.Total}} Passed)</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Threshold</th>
                            <th>Metric</th>
                            <th>Expected</th>
                            <th>Actual</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ThresholdSummary.Results}}
                        <tr>
                            <td>{{.Threshold}}</td>
                            <td>{{.Metric}} ({{.Aggregate}})</td>
                            <td>{{.Operator}} {{formatFloat .Expected}}</td>
                            <td>{{formatFloat .Actual}}</td>
                            <td>
                                {{if .Pass}}
                                <span class="badge badge-success">✓ PASS</span>
                                {{else}}
                                <span class="badge badge-error">✗ FAIL</span>
                                {{end}}
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            <!-- Error Breakdown -->
            {{if .ErrorRows}}
            <div class="section">
                <h2>Error Breakdown</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Error</th>
                            <th>Count</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ErrorRows}}
                        <tr>
                            <td>{{.Name}}</td>
                            <td>{{.Count}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
    </div>
</body>
</html>
`
