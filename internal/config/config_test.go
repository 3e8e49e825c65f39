package config

import (
	"testing"

	"github.com/moimsport/matchfeed/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FOOTBALLDATA_TOKEN", "test-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AppEnv != EnvDev {
		t.Errorf("AppEnv = %q, want %q", cfg.AppEnv, EnvDev)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.FootballDataBaseURL != "https://api.football-data.org/v4" {
		t.Errorf("FootballDataBaseURL = %q", cfg.FootballDataBaseURL)
	}
	if !cfg.SyncEnabled {
		t.Error("SyncEnabled = false, want true")
	}
	if cfg.SyncDailyHour != 6 || cfg.SyncDailyMinute != 0 {
		t.Errorf("SyncDailyAt = %02d:%02d, want 06:00", cfg.SyncDailyHour, cfg.SyncDailyMinute)
	}
	if cfg.SyncWindowDays != 10 {
		t.Errorf("SyncWindowDays = %d, want 10", cfg.SyncWindowDays)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if len(cfg.SyncCompetitions) == 0 {
		t.Error("SyncCompetitions is empty")
	}
}

func TestLoadRejectsInvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("FOOTBALLDATA_TOKEN", "test-token")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for invalid APP_ENV")
	}
}

func TestLoadRequiresTokenWhenSyncEnabled(t *testing.T) {
	t.Setenv("SYNC_ENABLED", "true")
	t.Setenv("FOOTBALLDATA_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for missing FOOTBALLDATA_TOKEN")
	}
}

func TestLoadAllowsMissingTokenWhenSyncDisabled(t *testing.T) {
	t.Setenv("SYNC_ENABLED", "false")
	t.Setenv("FOOTBALLDATA_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SyncEnabled {
		t.Error("SyncEnabled = true, want false")
	}
}

func TestParseDailyAt(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{in: "06:00", hour: 6, minute: 0},
		{in: "23:59", hour: 23, minute: 59},
		{in: "0:5", hour: 0, minute: 5},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hour, minute, err := parseDailyAt(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseDailyAt(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDailyAt(%q) error = %v", tt.in, err)
			}
			if hour != tt.hour || minute != tt.minute {
				t.Errorf("parseDailyAt(%q) = %d:%d, want %d:%d", tt.in, hour, minute, tt.hour, tt.minute)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" PL, CL ,,SA ")
	want := []string{"PL", "CL", "SA"}
	if len(got) != len(want) {
		t.Fatalf("splitCSV returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
