// Package results persists benchmark reports to a local history file so runs
// can be listed later and used as comparison baselines.
package results

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"

	"github.com/torosent/ioprobe/internal/output"
)

// NewRunID returns a lexicographically sortable unique identifier for a run.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// History appends and reads benchmark reports in a JSON-lines file. A file
// lock serializes appends so concurrent ioprobe processes sharing one history
// file never interleave partial lines.
type History struct {
	path string
	lock *flock.Flock
}

// NewHistory creates a history handle for the given file path.
func NewHistory(path string) *History {
	return &History{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Append writes one report as a single JSON line. The report's ID is
// populated if empty.
func (h *History) Append(report output.Report) (string, error) {
	if report.ID == "" {
		report.ID = NewRunID()
	}

	if err := h.lock.Lock(); err != nil {
		return "", fmt.Errorf("lock history %s: %w", h.path, err)
	}
	defer h.lock.Unlock()

	f, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open history %s: %w", h.path, err)
	}
	defer f.Close()

	line, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	line = append(line, '\n')
	if _, err := f.Write(line); err != nil {
		return "", fmt.Errorf("append history %s: %w", h.path, err)
	}
	return report.ID, nil
}

// List reads all reports from the history file, oldest first. A missing file
// yields an empty list.
func (h *History) List() ([]output.Report, error) {
	if err := h.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock history %s: %w", h.path, err)
	}
	defer h.lock.Unlock()

	f, err := os.Open(h.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", h.path, err)
	}
	defer f.Close()

	var reports []output.Report
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64<<10), 4<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var report output.Report
		if err := json.Unmarshal(line, &report); err != nil {
			return nil, fmt.Errorf("parse history %s: %w", h.path, err)
		}
		reports = append(reports, report)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history %s: %w", h.path, err)
	}
	return reports, nil
}

// Latest returns the most recent report, or false when the history is empty.
func (h *History) Latest() (output.Report, bool, error) {
	reports, err := h.List()
	if err != nil || len(reports) == 0 {
		return output.Report{}, false, err
	}
	return reports[len(reports)-1], true, nil
}
