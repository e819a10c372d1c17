package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/extra-life-tools/donation-queue/internal/core"
)

func seedSettings() core.ExportSettings {
	return core.ExportSettings{Dir: "exports", FileName: "donations", Format: core.FormatCSV}
}

func TestOpenSettings_SeedsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export-settings.json")

	sf, err := OpenSettings(path, seedSettings())
	if err != nil {
		t.Fatalf("OpenSettings() error = %v", err)
	}

	if got := sf.Get(); got != seedSettings() {
		t.Errorf("Get() = %+v, want seed %+v", got, seedSettings())
	}

	// The document must exist on disk immediately.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings document not written: %v", err)
	}
}

func TestSettings_UpdatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export-settings.json")

	sf, err := OpenSettings(path, seedSettings())
	if err != nil {
		t.Fatalf("OpenSettings() error = %v", err)
	}

	updated := core.ExportSettings{Dir: "/srv/exports", FileName: "stream", Format: core.FormatSpreadsheet}
	if err := sf.Update(updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// A fresh open must see the updated document, not the seed.
	reopened, err := OpenSettings(path, seedSettings())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := reopened.Get(); got != updated {
		t.Errorf("reopened Get() = %+v, want %+v", got, updated)
	}
}

func TestSettings_UpdateRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export-settings.json")

	sf, err := OpenSettings(path, seedSettings())
	if err != nil {
		t.Fatalf("OpenSettings() error = %v", err)
	}

	err = sf.Update(core.ExportSettings{Dir: "", FileName: "x", Format: core.FormatCSV})
	var configErr *core.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("Update() error = %v, want *ConfigError", err)
	}

	// The previous settings must survive a rejected update.
	if got := sf.Get(); got != seedSettings() {
		t.Errorf("Get() after rejected update = %+v, want seed", got)
	}
}

func TestOpenSettings_MalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export-settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenSettings(path, seedSettings())
	var configErr *core.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("OpenSettings() error = %v, want *ConfigError", err)
	}
}
