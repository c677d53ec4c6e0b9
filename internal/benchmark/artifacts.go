package benchmark

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lineaops/internal/report"
)

const (
	// TimestampLayout is the CSV timestamp format.
	TimestampLayout = "2006-01-02 15:04:05"
	MetricsFile     = "benchmark_metrics.prom"
)

// SummaryHeader is the first row of benchmark_summary.csv.
var SummaryHeader = []string{"timestamp", "concurrent_clients", "requests_per_second", "avg_response_time", "errors", "success_rate"}

// Artifacts owns the files a run writes into the output directory.
type Artifacts struct {
	Dir string
}

func NewArtifacts(dir string) *Artifacts {
	return &Artifacts{Dir: dir}
}

func (a *Artifacts) path(name string) string { return filepath.Join(a.Dir, name) }

func (a *Artifacts) SummaryPath() string   { return a.path(report.SummaryFile) }
func (a *Artifacts) SustainedPath() string { return a.path(report.SustainedFile) }
func (a *Artifacts) CachePath() string     { return a.path(report.CacheFile) }
func (a *Artifacts) ReportPath() string    { return a.path(report.ReportFile) }
func (a *Artifacts) MetricsPath() string   { return a.path(MetricsFile) }

// LoadDetailPath is the raw generator output for one concurrency level.
func (a *Artifacts) LoadDetailPath(concurrency int) string {
	return a.path(fmt.Sprintf("load_test_%d_clients_detailed.txt", concurrency))
}

// Reset removes every artifact of a previous run and makes sure the directory exists.
// Files it does not own are left alone.
func (a *Artifacts) Reset() error {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", a.Dir, err)
	}
	details, err := filepath.Glob(a.path("load_test_*_clients_detailed.txt"))
	if err != nil {
		return err
	}
	stale := append(details, a.SummaryPath(), a.SustainedPath(), a.CachePath(), a.ReportPath(), a.MetricsPath())
	for _, p := range stale {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear %s: %w", p, err)
		}
	}
	return nil
}

// Exists reports whether path is present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AppendSummaryRow appends one level to the CSV, writing the header first if the file is new.
// The file is synced after every row so a later fatal stage keeps the rows already measured.
func (a *Artifacts) AppendSummaryRow(r LoadResult) error {
	f, err := os.OpenFile(a.SummaryPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open summary: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(SummaryHeader); err != nil {
			return err
		}
	}
	if err := w.Write(summaryRecord(r)); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write summary row: %w", err)
	}
	return f.Sync()
}

func summaryRecord(r LoadResult) []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		strconv.Itoa(r.Concurrency),
		strconv.FormatFloat(r.RequestsPerSecond, 'f', 2, 64),
		strconv.FormatFloat(r.AvgResponseMs, 'f', 2, 64),
		strconv.Itoa(r.Failed),
		strconv.FormatFloat(r.SuccessRate, 'f', 2, 64),
	}
}

// ReadSummary parses the CSV back. A missing file yields no rows.
func (a *Artifacts) ReadSummary() ([]LoadResult, error) {
	f, err := os.Open(a.SummaryPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(SummaryHeader)

	var results []LoadResult
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read summary: %w", err)
		}
		if line == 1 && rec[0] == SummaryHeader[0] {
			continue
		}
		res, err := parseSummaryRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("summary line %d: %w", line, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func parseSummaryRecord(rec []string) (LoadResult, error) {
	var res LoadResult
	var err error
	if res.Timestamp, err = time.ParseInLocation(TimestampLayout, rec[0], time.Local); err != nil {
		return res, err
	}
	if res.Concurrency, err = strconv.Atoi(rec[1]); err != nil {
		return res, err
	}
	if res.RequestsPerSecond, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return res, err
	}
	if res.AvgResponseMs, err = strconv.ParseFloat(rec[3], 64); err != nil {
		return res, err
	}
	if res.Failed, err = strconv.Atoi(rec[4]); err != nil {
		return res, err
	}
	if res.SuccessRate, err = strconv.ParseFloat(rec[5], 64); err != nil {
		return res, err
	}
	return res, nil
}

// WriteLoadDetail stores the raw generator transcript for one level.
func (a *Artifacts) WriteLoadDetail(concurrency int, raw []byte) error {
	return os.WriteFile(a.LoadDetailPath(concurrency), raw, 0644)
}

// WriteSustained writes the sustained summary as key-value lines.
func (a *Artifacts) WriteSustained(s SustainedResult) error {
	errorRate := "undefined"
	if rate, ok := s.ErrorRate(); ok {
		errorRate = fmt.Sprintf("%.2f%%", rate)
	}
	content := fmt.Sprintf("Duration: %ds\nTotal Requests: %d\nErrors: %d\nRequests per second: %.2f\nError rate: %s\n",
		s.ElapsedSeconds(), s.Requests, s.Errors, s.RequestsPerSecond(), errorRate)
	return os.WriteFile(a.SustainedPath(), []byte(content), 0644)
}

// WriteCache writes the cache probe summary as key-value lines.
func (a *Artifacts) WriteCache(c CacheResult) error {
	content := fmt.Sprintf("Requests: %d\nTotal time: %s\nAverage time: %.2fms\nRequests per second: %.2f\n",
		c.Requests, c.Elapsed.Round(time.Millisecond), c.AvgMs(), c.RequestsPerSecond())
	return os.WriteFile(a.CachePath(), []byte(content), 0644)
}

// ReadSustained parses sustained_test.txt. A missing file yields nil.
func (a *Artifacts) ReadSustained() (*SustainedResult, error) {
	kv, err := readKeyValues(a.SustainedPath())
	if err != nil || kv == nil {
		return nil, err
	}
	var s SustainedResult
	if s.Elapsed, err = time.ParseDuration(kv["Duration"]); err != nil {
		return nil, fmt.Errorf("sustained duration: %w", err)
	}
	if s.Requests, err = strconv.Atoi(kv["Total Requests"]); err != nil {
		return nil, fmt.Errorf("sustained requests: %w", err)
	}
	if s.Errors, err = strconv.Atoi(kv["Errors"]); err != nil {
		return nil, fmt.Errorf("sustained errors: %w", err)
	}
	return &s, nil
}

// ReadCache parses cache_test.txt. A missing file yields nil.
func (a *Artifacts) ReadCache() (*CacheResult, error) {
	kv, err := readKeyValues(a.CachePath())
	if err != nil || kv == nil {
		return nil, err
	}
	var c CacheResult
	if c.Requests, err = strconv.Atoi(kv["Requests"]); err != nil {
		return nil, fmt.Errorf("cache requests: %w", err)
	}
	if c.Elapsed, err = time.ParseDuration(kv["Total time"]); err != nil {
		return nil, fmt.Errorf("cache total time: %w", err)
	}
	return &c, nil
}

func readKeyValues(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	kv := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		kv[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return kv, scanner.Err()
}
