package mpu6050

import (
	"fmt"
	"time"

	"flightlogger/internal/i2c"
)

var sleep = time.Sleep

// Minimal MPU-6050 driver.
//
// Focus: probe + burst accel/gyro reads for the logging loop.
// - WHO_AM_I at 0x75 should return 0x68.
// - Accel, temperature and gyro registers are one contiguous block, so a
//   single 14-byte read yields a coherent sample.

const (
	addrDefault = 0x68

	regWhoAmI = 0x75
	whoAmIVal = 0x68

	regPwrMgmt1 = 0x6B
	bitReset    = 0x80
	clkPLLGyroX = 0x01

	regSmplrtDiv   = 0x19
	regConfig      = 0x1A
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C

	regAccelXoutH = 0x3B // contiguous accel+temp+gyro block

	fsGyro250dps = 0x00 << 3
	fsAccel4g    = 0x01 << 3

	gravity = 9.80665
)

type Sample struct {
	Time time.Time
	// Accel in m/s².
	Ax, Ay, Az float64
	// Gyro in deg/s.
	Gx, Gy, Gz float64
}

type Device struct {
	dev regIO

	// Scales based on configured full-scale.
	scaleAccel float64
	scaleGyro  float64
}

type regIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

func DefaultAddress() uint16 { return addrDefault }

func New(dev *i2c.Dev) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("mpu6050: dev is nil")
	}
	return newWithIO(dev)
}

func newWithIO(dev regIO) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("mpu6050: dev is nil")
	}
	d := &Device{dev: dev}

	who, err := d.dev.ReadRegU8(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: whoami read failed: %w", err)
	}
	if who != whoAmIVal {
		return nil, fmt.Errorf("mpu6050: whoami=0x%02X want 0x%02X", who, whoAmIVal)
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) init() error {
	// Reset, then wake with the X gyro PLL as clock source (the device boots
	// in sleep mode with the less stable internal oscillator).
	if err := d.dev.WriteReg(regPwrMgmt1, bitReset); err != nil {
		return fmt.Errorf("mpu6050: reset failed: %w", err)
	}
	sleep(100 * time.Millisecond)
	if err := d.dev.WriteReg(regPwrMgmt1, clkPLLGyroX); err != nil {
		return fmt.Errorf("mpu6050: wake failed: %w", err)
	}
	sleep(10 * time.Millisecond)

	// DLPF 0x03: ~44Hz accel / 42Hz gyro bandwidth, gyro base rate 1 kHz.
	_ = d.dev.WriteReg(regConfig, 0x03)
	// Sample rate = 1kHz/(div+1); the loop polls at 20 Hz, 50 Hz output is plenty.
	_ = d.dev.WriteReg(regSmplrtDiv, byte(1000/50-1))

	if err := d.dev.WriteReg(regGyroConfig, fsGyro250dps); err != nil {
		return fmt.Errorf("mpu6050: gyro config failed: %w", err)
	}
	if err := d.dev.WriteReg(regAccelConfig, fsAccel4g); err != nil {
		return fmt.Errorf("mpu6050: accel config failed: %w", err)
	}

	// ±4g -> 8192 LSB/g, ±250 dps -> 131.072 LSB/(deg/s).
	d.scaleAccel = 4.0 / 32768.0 * gravity
	d.scaleGyro = 250.0 / 32768.0
	return nil
}

func (d *Device) Read() (Sample, error) {
	if d == nil {
		return Sample{}, fmt.Errorf("mpu6050: device is nil")
	}

	buf := make([]byte, 14)
	if err := d.dev.ReadReg(regAccelXoutH, buf); err != nil {
		return Sample{}, fmt.Errorf("mpu6050: read sensors failed: %w", err)
	}

	ax := int16(buf[0])<<8 | int16(buf[1])
	ay := int16(buf[2])<<8 | int16(buf[3])
	az := int16(buf[4])<<8 | int16(buf[5])
	// buf[6:8] is die temperature; not used.
	gx := int16(buf[8])<<8 | int16(buf[9])
	gy := int16(buf[10])<<8 | int16(buf[11])
	gz := int16(buf[12])<<8 | int16(buf[13])

	return Sample{
		Time: time.Now(),
		Ax:   float64(ax) * d.scaleAccel,
		Ay:   float64(ay) * d.scaleAccel,
		Az:   float64(az) * d.scaleAccel,
		Gx:   float64(gx) * d.scaleGyro,
		Gy:   float64(gy) * d.scaleGyro,
		Gz:   float64(gz) * d.scaleGyro,
	}, nil
}
