package config_test

import (
	"os"
	"strings"
	"testing"

	"github.com/samirrijal/refpoint/internal/pkg/config"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("refpoint-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Persistence.Backend != config.BackendMemory {
		t.Errorf("expected memory backend, got %q", cfg.Persistence.Backend)
	}
	if cfg.Positioning.Timeout().Milliseconds() != 8000 {
		t.Errorf("expected 8000 ms timeout, got %v", cfg.Positioning.Timeout())
	}
	if cfg.Telemetry.ServiceName != "refpoint-test" {
		t.Errorf("expected service name from argument, got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REFPOINT_PERSISTENCE_BACKEND", "bolt")
	t.Setenv("REFPOINT_DISPLAY_ALTITUDE_UNIT", "ft")

	cfg, err := config.Load("refpoint-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Persistence.Backend != config.BackendBolt {
		t.Errorf("expected bolt backend, got %q", cfg.Persistence.Backend)
	}
	if cfg.Display.AltitudeUnit != "ft" {
		t.Errorf("expected ft, got %q", cfg.Display.AltitudeUnit)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &config.Config{
		Server:      config.ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Persistence: config.PersistenceConfig{Backend: "sqlite"},
		Positioning: config.PositioningConfig{Device: "a.b", TimeoutMS: 8000},
		Display:     config.DisplayConfig{AltitudeUnit: "m"},
		Map:         config.MapConfig{DefaultLayer: "standard"},
		Log:         config.LogConfig{Format: "json"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "persistence.backend", "positioning.device"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
