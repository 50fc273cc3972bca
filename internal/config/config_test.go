package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.RegionName != "Dordogne" || cfg.RegionPostalPrefix != "24" {
		t.Errorf("region = %q / %q", cfg.RegionName, cfg.RegionPostalPrefix)
	}
	if cfg.NominatimURL != "https://nominatim.openstreetmap.org/search" {
		t.Errorf("nominatim url = %q", cfg.NominatimURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("request timeout = %v", cfg.RequestTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CRIEUR_REGION", "Gironde")
	t.Setenv("CRIEUR_POSTAL_PREFIX", "33")
	t.Setenv("CRIEUR_REQUEST_TIMEOUT", "30s")
	t.Setenv("CRIEUR_LOG_LEVEL", "debug")
	t.Setenv("CRIEUR_MAIL_DIR", "/var/mail/crieur")

	cfg := Load()
	if cfg.RegionName != "Gironde" || cfg.RegionPostalPrefix != "33" {
		t.Errorf("region = %q / %q", cfg.RegionName, cfg.RegionPostalPrefix)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("request timeout = %v", cfg.RequestTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.LogLevel)
	}
	if cfg.MailDir != "/var/mail/crieur" {
		t.Errorf("mail dir = %q", cfg.MailDir)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"n'importe quoi", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadBadTimeoutFallsBack(t *testing.T) {
	t.Setenv("CRIEUR_REQUEST_TIMEOUT", "pas une durée")
	if cfg := Load(); cfg.RequestTimeout != 10*time.Second {
		t.Errorf("request timeout = %v, want default", cfg.RequestTimeout)
	}
}
