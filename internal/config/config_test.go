package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set only required env var
	os.Setenv("EXTRALIFE_TEAM_ID", "67141")
	defer os.Unsetenv("EXTRALIFE_TEAM_ID")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 4400 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 4400)
	}
	if cfg.Store.Path != "donations.db" {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, "donations.db")
	}
	if cfg.Poll.Interval != 30*time.Second {
		t.Errorf("Poll.Interval = %v, want %v", cfg.Poll.Interval, 30*time.Second)
	}
	if cfg.Export.Format != "csv" {
		t.Errorf("Export.Format = %q, want %q", cfg.Export.Format, "csv")
	}
	if cfg.Rate.RequestsPerMinute != 120 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 120)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	os.Setenv("EXTRALIFE_TEAM_ID", "67141")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("POLL_INTERVAL", "1m30s")
	os.Setenv("EXPORT_FORMAT", "spreadsheet")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("EXTRALIFE_TEAM_ID")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("POLL_INTERVAL")
		os.Unsetenv("EXPORT_FORMAT")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Poll.Interval != 90*time.Second {
		t.Errorf("Poll.Interval = %v, want %v", cfg.Poll.Interval, 90*time.Second)
	}
	if cfg.Export.Format != "spreadsheet" {
		t.Errorf("Export.Format = %q, want %q", cfg.Export.Format, "spreadsheet")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("EXTRALIFE_TEAM_ID")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing EXTRALIFE_TEAM_ID")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 99999

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid port")
	}
	if !contains(err.Error(), "SERVER_PORT") {
		t.Errorf("error should mention SERVER_PORT: %v", err)
	}
}

func TestValidate_InvalidExportFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Export.Format = "parquet"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid export format")
	}
	if !contains(err.Error(), "EXPORT_FORMAT") {
		t.Errorf("error should mention EXPORT_FORMAT: %v", err)
	}
}

func TestValidate_PollIntervalRequiredWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Poll.Enabled = true
	cfg.Poll.Interval = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for zero poll interval")
	}
	if !contains(err.Error(), "POLL_INTERVAL") {
		t.Errorf("error should mention POLL_INTERVAL: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid log level")
	}
	if !contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("error should mention LOG_LEVEL: %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 4400, ":4400"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: 4400, ShutdownTimeout: time.Second},
		Store:     StoreConfig{Path: "donations.db"},
		ExtraLife: ExtraLifeConfig{TeamID: "67141", FetchTimeout: 15 * time.Second},
		Poll:      PollConfig{Enabled: true, Interval: 30 * time.Second},
		Export:    ExportConfig{SettingsPath: "export-settings.json", Dir: "exports", FileName: "donations", Format: "csv"},
		Rate:      RateLimitConfig{Enabled: true, RequestsPerMinute: 120},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
