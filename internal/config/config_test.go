package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_RequiresDir(t *testing.T) {
	path := writeTempConfig(t, "logger: {}\n")
	_, err := Load(path)
	requireErrEq(t, err, "logger.dir is required")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "logger:\n  dir: /tmp/logs\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logger.Interval.Std() != 50*time.Millisecond {
		t.Fatalf("interval=%s want 50ms", cfg.Logger.Interval.Std())
	}
	if cfg.Logger.FlushEvery != 25 {
		t.Fatalf("flush_every=%d want 25", cfg.Logger.FlushEvery)
	}
	if cfg.Logger.StatusInterval.Std() != 1*time.Second {
		t.Fatalf("status_interval=%s want 1s", cfg.Logger.StatusInterval.Std())
	}
	if cfg.Sensors.I2CBus != 1 {
		t.Fatalf("i2c_bus=%d want 1", cfg.Sensors.I2CBus)
	}
}

func TestLoad_ExplicitValuesKept(t *testing.T) {
	path := writeTempConfig(t, `logger:
  dir: /data/logs
  interval: 100ms
  flush_every: 10
  status_interval: 2s
sensors:
  i2c_bus: 3
  imu_addr: 0x69
sim:
  enable: true
  p0_hpa: 1000
led:
  enable: true
  pin: 22
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logger.Interval.Std() != 100*time.Millisecond || cfg.Logger.FlushEvery != 10 {
		t.Fatalf("logger=%+v want explicit values", cfg.Logger)
	}
	if cfg.Sensors.I2CBus != 3 || cfg.Sensors.IMUAddr != 0x69 {
		t.Fatalf("sensors=%+v want bus 3, imu 0x69", cfg.Sensors)
	}
	if !cfg.Sim.Enable || cfg.Sim.P0HPa != 1000 {
		t.Fatalf("sim=%+v", cfg.Sim)
	}
	if !cfg.LED.Enable || cfg.LED.Pin != 22 {
		t.Fatalf("led=%+v", cfg.LED)
	}
}

func TestLoad_RejectsNegativeInterval(t *testing.T) {
	path := writeTempConfig(t, "logger:\n  dir: /tmp/logs\n  interval: -1s\n")
	_, err := Load(path)
	requireErrEq(t, err, "logger.interval must be >= 0")
}

func TestLoad_InvalidDurationString(t *testing.T) {
	path := writeTempConfig(t, "logger:\n  dir: /tmp/logs\n  interval: fast\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}
