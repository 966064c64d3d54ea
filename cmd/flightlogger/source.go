package main

import (
	"fmt"

	"flightlogger/internal/config"
	"flightlogger/internal/flightlog"
	"flightlogger/internal/i2c"
	"flightlogger/internal/sensors/bmp180"
	"flightlogger/internal/sensors/mpu6050"
	"flightlogger/internal/sim"
)

type imuReader interface {
	Read() (mpu6050.Sample, error)
}

type baroReader interface {
	Read() (tempC, pressureHPa float64, err error)
}

// hwSource combines one IMU burst read and one barometer conversion cycle
// into a single Sample per poll.
type hwSource struct {
	imu  imuReader
	baro baroReader
}

func (s *hwSource) Sample() (flightlog.Sample, error) {
	m, err := s.imu.Read()
	if err != nil {
		return flightlog.Sample{}, fmt.Errorf("imu: %w", err)
	}
	_, p, err := s.baro.Read()
	if err != nil {
		return flightlog.Sample{}, fmt.Errorf("baro: %w", err)
	}
	return flightlog.Sample{
		Ax: m.Ax, Ay: m.Ay, Az: m.Az,
		Gx: m.Gx, Gy: m.Gy, Gz: m.Gz,
		PressureHPa: p,
	}, nil
}

// openSource builds the configured sensor source: either the deterministic
// simulator or the real MPU-6050 + BMP180 pair on the configured I2C bus.
func openSource(cfg config.Config) (flightlog.Source, func(), error) {
	if cfg.Sim.Enable {
		return &sim.SensorSim{
			P0HPa:     cfg.Sim.P0HPa,
			ClimbAmpM: cfg.Sim.ClimbAmpM,
			Period:    cfg.Sim.Period.Std(),
		}, func() {}, nil
	}

	busPath := fmt.Sprintf("/dev/i2c-%d", cfg.Sensors.I2CBus)
	bus, err := i2c.Open(busPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", busPath, err)
	}

	imuAddr := cfg.Sensors.IMUAddr
	if imuAddr == 0 {
		imuAddr = mpu6050.DefaultAddress()
	}
	baroAddr := cfg.Sensors.BaroAddr
	if baroAddr == 0 {
		baroAddr = bmp180.DefaultAddress()
	}

	imu, err := mpu6050.New(bus.Dev(imuAddr))
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}
	baro, err := bmp180.New(bus.Dev(baroAddr))
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}

	return &hwSource{imu: imu, baro: baro}, func() { _ = bus.Close() }, nil
}
