// Package report renders a benchmark run as a static HTML page.
package report

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"time"
)

// Artifact names the report links to.
const (
	SummaryFile   = "benchmark_summary.csv"
	SustainedFile = "sustained_test.txt"
	CacheFile     = "cache_test.txt"
	ReportFile    = "performance_report.html"
)

const (
	GoodThreshold    = 95.0
	WarningThreshold = 90.0
)

// Row is one concurrency level as it appears in the summary CSV.
type Row struct {
	Timestamp         time.Time
	Concurrency       int
	RequestsPerSecond float64
	AvgResponseMs     float64
	Errors            int
	SuccessRate       float64
}

// Severity returns the CSS class for the row.
func (r Row) Severity() string { return Severity(r.SuccessRate) }

type Sustained struct {
	DurationSeconds   int
	Requests          int
	Errors            int
	RequestsPerSecond float64
	ErrorRate         float64
	ErrorRateDefined  bool
}

type Cache struct {
	Requests          int
	Total             time.Duration
	AvgMs             float64
	RequestsPerSecond float64
}

// Data is everything the page shows. Sustained and Cache are omitted when nil.
type Data struct {
	GeneratedAt time.Time
	Target      string
	Rows        []Row
	Sustained   *Sustained
	Cache       *Cache
}

// Severity classifies a success rate: good at 95 and above, warning from 90, error below.
// The rate is compared at the two decimals the CSV carries.
func Severity(rate float64) string {
	rate = math.Round(rate*100) / 100
	switch {
	case rate >= GoodThreshold:
		return "good"
	case rate >= WarningThreshold:
		return "warning"
	default:
		return "error"
	}
}

var funcs = template.FuncMap{
	"f2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

var page = template.Must(template.New("report").Funcs(funcs).Parse(pageTemplate))

// Render writes the HTML page for d. It has no side effects beyond w.
func Render(w io.Writer, d Data) error {
	view := struct {
		Data
		SummaryFile, SustainedFile, CacheFile string
	}{d, SummaryFile, SustainedFile, CacheFile}
	return page.Execute(w, view)
}

// WriteFile renders d into path.
func WriteFile(path string, d Data) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := Render(f, d); err != nil {
		f.Close()
		return fmt.Errorf("failed to render report: %w", err)
	}
	return f.Close()
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Linea Node Performance Report</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; max-width: 1200px; margin: 0 auto; padding: 20px; background: #f4f4f9; }
        h1, h2 { color: #2c3e50; }
        .header, .section { background: #fff; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); margin-bottom: 20px; }
        table { width: 100%; border-collapse: collapse; margin-top: 15px; }
        th, td { padding: 10px; text-align: left; border-bottom: 1px solid #ddd; }
        th { background-color: #f8f9fa; }
        tr.good { background: #e8f5e9; }
        tr.warning { background: #fff3e0; }
        tr.error { background: #ffebee; }
        dl { display: grid; grid-template-columns: max-content auto; gap: 4px 16px; }
        dt { font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Linea Node Performance Report</h1>
        <p>Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}} | Target: <strong>{{.Target}}</strong></p>
    </div>

    <div class="section">
        <h2>Load Test Results</h2>
        <table>
            <thead>
                <tr>
                    <th>Timestamp</th>
                    <th>Concurrent Clients</th>
                    <th>Requests/sec</th>
                    <th>Avg Response Time (ms)</th>
                    <th>Errors</th>
                    <th>Success Rate (%)</th>
                </tr>
            </thead>
            <tbody>
                {{- range .Rows}}
                <tr class="{{.Severity}}">
                    <td>{{.Timestamp.Format "2006-01-02 15:04:05"}}</td>
                    <td>{{.Concurrency}}</td>
                    <td>{{f2 .RequestsPerSecond}}</td>
                    <td>{{f2 .AvgResponseMs}}</td>
                    <td>{{.Errors}}</td>
                    <td>{{f2 .SuccessRate}}</td>
                </tr>
                {{- end}}
            </tbody>
        </table>
    </div>
    {{with .Sustained}}
    <div class="section">
        <h2>Sustained Load</h2>
        <dl>
            <dt>Duration</dt><dd>{{.DurationSeconds}}s</dd>
            <dt>Total Requests</dt><dd>{{.Requests}}</dd>
            <dt>Errors</dt><dd>{{.Errors}}</dd>
            <dt>Requests per second</dt><dd>{{f2 .RequestsPerSecond}}</dd>
            <dt>Error rate</dt><dd>{{if .ErrorRateDefined}}{{f2 .ErrorRate}}%{{else}}undefined{{end}}</dd>
        </dl>
    </div>
    {{- end}}
    {{with .Cache}}
    <div class="section">
        <h2>Cache Probe</h2>
        <dl>
            <dt>Requests</dt><dd>{{.Requests}}</dd>
            <dt>Total time</dt><dd>{{.Total}}</dd>
            <dt>Average time</dt><dd>{{f2 .AvgMs}} ms</dd>
            <dt>Requests per second</dt><dd>{{f2 .RequestsPerSecond}}</dd>
        </dl>
    </div>
    {{- end}}

    <div class="section">
        <h2>Raw Data</h2>
        <ul>
            <li><a href="{{.SummaryFile}}">{{.SummaryFile}}</a></li>
            <li><a href="{{.SustainedFile}}">{{.SustainedFile}}</a></li>
            <li><a href="{{.CacheFile}}">{{.CacheFile}}</a></li>
        </ul>
    </div>
</body>
</html>
`
