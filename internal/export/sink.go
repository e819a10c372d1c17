// Package export mirrors approved donations into an append-only file.
//
// Two formats are supported: CSV, which is a cheap O(1) line append, and a
// spreadsheet workbook, which is a whole-file read-modify-write on every
// append. Writes for a given output path are serialized through a per-path
// lock; overlapping workbook rewrites would corrupt the file, so the lock is
// a correctness requirement, not an optimization.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/extra-life-tools/donation-queue/internal/core"
)

// Header is the fixed column layout shared by both formats.
var Header = []string{"ID", "Name", "Recipient", "Amount", "Message", "Avatar"}

// Sink appends approved donations to the currently configured export file.
// Settings are read per call, so a settings update takes effect on the next
// append without rebuilding the sink.
type Sink struct {
	settings core.SettingsStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSink creates a sink reading its target from settings.
func NewSink(settings core.SettingsStore) *Sink {
	return &Sink{
		settings: settings,
		locks:    make(map[string]*sync.Mutex),
	}
}

// AppendApproved appends one row for rec to the configured export file,
// creating parent directories (and the file itself) as needed. Exactly one
// append happens per call; callers that approve the same donation twice get
// two rows.
func (s *Sink) AppendApproved(rec core.DonationRecord) error {
	cfg := s.settings.Get()
	path := cfg.ResolvePath()

	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &core.ExportWriteError{Path: path, Err: err}
	}

	var err error
	switch cfg.Format {
	case core.FormatSpreadsheet:
		err = appendWorkbookRow(path, rec)
	case core.FormatCSV:
		err = appendCSVRow(path, rec)
	default:
		err = fmt.Errorf("unknown export format %q", cfg.Format)
	}
	if err != nil {
		return &core.ExportWriteError{Path: path, Err: err}
	}
	return nil
}

// pathLock returns the serialization lock for path, creating it on first use.
// Locks are never evicted; the set of export paths over a process lifetime
// is tiny.
func (s *Sink) pathLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[path] = lock
	}
	return lock
}

// row flattens a record into the Header column order.
func row(rec core.DonationRecord) []string {
	return []string{
		rec.ID,
		rec.Name,
		rec.Recipient,
		formatAmount(rec.Amount),
		rec.Message,
		rec.Avatar,
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
