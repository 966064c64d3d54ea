package main

import (
	"errors"
	"strings"
	"testing"

	"flightlogger/internal/config"
	"flightlogger/internal/sensors/mpu6050"
	"flightlogger/internal/sim"
)

type fakeIMU struct {
	s   mpu6050.Sample
	err error
}

func (f *fakeIMU) Read() (mpu6050.Sample, error) { return f.s, f.err }

type fakeBaro struct {
	p   float64
	err error
}

func (f *fakeBaro) Read() (float64, float64, error) { return 21.5, f.p, f.err }

func TestHWSource_CombinesReadings(t *testing.T) {
	src := &hwSource{
		imu:  &fakeIMU{s: mpu6050.Sample{Ax: 1, Ay: 2, Az: 3, Gx: 4, Gy: 5, Gz: 6}},
		baro: &fakeBaro{p: 1008.4},
	}
	s, err := src.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if s.Ax != 1 || s.Gz != 6 || s.PressureHPa != 1008.4 {
		t.Fatalf("sample=%+v", s)
	}
}

func TestHWSource_IMUErrorPropagates(t *testing.T) {
	src := &hwSource{
		imu:  &fakeIMU{err: errors.New("nak")},
		baro: &fakeBaro{p: 1008.4},
	}
	_, err := src.Sample()
	if err == nil || !strings.Contains(err.Error(), "imu:") {
		t.Fatalf("err=%v want imu error", err)
	}
}

func TestHWSource_BaroErrorPropagates(t *testing.T) {
	src := &hwSource{
		imu:  &fakeIMU{},
		baro: &fakeBaro{err: errors.New("nak")},
	}
	_, err := src.Sample()
	if err == nil || !strings.Contains(err.Error(), "baro:") {
		t.Fatalf("err=%v want baro error", err)
	}
}

func TestOpenSource_SimSelected(t *testing.T) {
	cfg := config.Config{}
	cfg.Sim.Enable = true
	cfg.Sim.P0HPa = 1000

	src, closeFn, err := openSource(cfg)
	if err != nil {
		t.Fatalf("openSource: %v", err)
	}
	defer closeFn()

	if _, ok := src.(*sim.SensorSim); !ok {
		t.Fatalf("source=%T want *sim.SensorSim", src)
	}
	if _, err := src.Sample(); err != nil {
		t.Fatalf("Sample: %v", err)
	}
}
