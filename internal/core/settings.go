package core

import (
	"fmt"
	"path/filepath"
)

// ExportFormat selects the on-disk format of the export mirror.
type ExportFormat string

const (
	FormatCSV         ExportFormat = "csv"
	FormatSpreadsheet ExportFormat = "spreadsheet"
)

// Valid reports whether f is a known export format.
func (f ExportFormat) Valid() bool {
	return f == FormatCSV || f == FormatSpreadsheet
}

// Extension returns the file extension for the format, dot included.
func (f ExportFormat) Extension() string {
	if f == FormatSpreadsheet {
		return ".xlsx"
	}
	return ".csv"
}

// ExportSettings is the persisted export configuration: where approved
// donations are mirrored and in which format. It is loaded once at startup
// and written back synchronously on every change.
type ExportSettings struct {
	Dir      string       `json:"path"`
	FileName string       `json:"fileName"`
	Format   ExportFormat `json:"format"`
}

// Validate checks the settings are usable.
func (s ExportSettings) Validate() error {
	if s.Dir == "" {
		return fmt.Errorf("export path is empty")
	}
	if s.FileName == "" {
		return fmt.Errorf("export file name is empty")
	}
	if !s.Format.Valid() {
		return fmt.Errorf("export format %q must be csv or spreadsheet", s.Format)
	}
	return nil
}

// ResolvePath returns the full path of the export file for these settings.
func (s ExportSettings) ResolvePath() string {
	return filepath.Join(s.Dir, s.FileName+s.Format.Extension())
}

// SettingsStore is the persisted-settings collaborator. Implementations
// must write updates through to stable storage before returning.
type SettingsStore interface {
	Get() ExportSettings
	Update(ExportSettings) error
}
