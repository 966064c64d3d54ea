package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML either as a Go
// duration string ("50ms", "1s") or as integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var i int64
	if err := n.Decode(&i); err != nil {
		return fmt.Errorf("invalid duration %q", n.Value)
	}
	*d = Duration(i)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Logger  LoggerConfig  `yaml:"logger"`
	Sensors SensorsConfig `yaml:"sensors"`
	Sim     SimConfig     `yaml:"sim"`
	LED     LEDConfig     `yaml:"led"`
}

type LoggerConfig struct {
	// Dir is the logs directory; files are named log_NNN.csv inside it.
	Dir            string   `yaml:"dir"`
	Interval       Duration `yaml:"interval"`
	FlushEvery     int      `yaml:"flush_every"`
	StatusInterval Duration `yaml:"status_interval"`
}

type SensorsConfig struct {
	I2CBus   int    `yaml:"i2c_bus"`
	IMUAddr  uint16 `yaml:"imu_addr"`
	BaroAddr uint16 `yaml:"baro_addr"`
}

type SimConfig struct {
	Enable    bool     `yaml:"enable"`
	P0HPa     float64  `yaml:"p0_hpa"`
	ClimbAmpM float64  `yaml:"climb_amp_m"`
	Period    Duration `yaml:"period"`
}

type LEDConfig struct {
	Enable bool     `yaml:"enable"`
	Pin    int      `yaml:"pin"`
	Period Duration `yaml:"period"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Logger.Dir == "" {
		return Config{}, fmt.Errorf("logger.dir is required")
	}
	if cfg.Logger.Interval < 0 {
		return Config{}, fmt.Errorf("logger.interval must be >= 0")
	}
	if cfg.Logger.Interval == 0 {
		cfg.Logger.Interval = Duration(50 * time.Millisecond)
	}
	if cfg.Logger.FlushEvery < 0 {
		return Config{}, fmt.Errorf("logger.flush_every must be >= 0")
	}
	if cfg.Logger.FlushEvery == 0 {
		cfg.Logger.FlushEvery = 25
	}
	if cfg.Logger.StatusInterval <= 0 {
		cfg.Logger.StatusInterval = Duration(1 * time.Second)
	}

	if cfg.Sensors.I2CBus == 0 {
		cfg.Sensors.I2CBus = 1
	}
	// Sensor addresses default in main to the chips' fixed addresses.

	if cfg.Sim.Enable {
		if cfg.Sim.P0HPa < 0 {
			return Config{}, fmt.Errorf("sim.p0_hpa must be >= 0")
		}
		if cfg.Sim.Period < 0 {
			return Config{}, fmt.Errorf("sim.period must be >= 0")
		}
	}

	if cfg.LED.Enable {
		if cfg.LED.Pin < 0 {
			return Config{}, fmt.Errorf("led.pin must be >= 0")
		}
		if cfg.LED.Period < 0 {
			return Config{}, fmt.Errorf("led.period must be >= 0")
		}
	}

	return cfg, nil
}
