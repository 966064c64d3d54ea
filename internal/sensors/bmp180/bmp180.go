package bmp180

import (
	"encoding/binary"
	"fmt"
	"time"

	"flightlogger/internal/i2c"
)

var sleep = time.Sleep

// Minimal BMP180 driver.
//
// Supports chip ID + triggered temperature/pressure conversions with the
// datasheet integer compensation. Unlike the BMP280 this part has no free
// running mode: every reading is a start-conversion, wait, read-out cycle.

const (
	addrDefault = 0x77

	regID        = 0xD0
	chipIDBMP180 = 0x55

	regReset = 0xE0
	resetCmd = 0xB6

	regCalibAA = 0xAA
	calibLen   = 22

	regCtrlMeas = 0xF4
	regOutMSB   = 0xF6

	cmdReadTemp  = 0x2E
	cmdReadPress = 0x34
)

// Oversampling setting. 2 matches the "high resolution" mode the original
// payload firmware requested from its driver.
const defaultOSS = 2

var conversionDelay = [4]time.Duration{
	4500 * time.Microsecond,
	7500 * time.Microsecond,
	13500 * time.Microsecond,
	25500 * time.Microsecond,
}

type Device struct {
	dev regIO
	oss uint

	// Calibration.
	ac1, ac2, ac3 int16
	ac4, ac5, ac6 uint16
	b1, b2        int16
	mb, mc, md    int16
}

type regIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

func DefaultAddress() uint16 { return addrDefault }

func New(dev *i2c.Dev) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("bmp180: dev is nil")
	}
	return newWithIO(dev)
}

func newWithIO(dev regIO) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("bmp180: dev is nil")
	}
	d := &Device{dev: dev, oss: defaultOSS}

	id, err := d.dev.ReadRegU8(regID)
	if err != nil {
		return nil, fmt.Errorf("bmp180: id read failed: %w", err)
	}
	if id != chipIDBMP180 {
		return nil, fmt.Errorf("bmp180: chip id=0x%02X want 0x%02X", id, chipIDBMP180)
	}

	_ = d.dev.WriteReg(regReset, resetCmd)
	sleep(5 * time.Millisecond)

	if err := d.readCalibration(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) readCalibration() error {
	buf := make([]byte, calibLen)
	if err := d.dev.ReadReg(regCalibAA, buf); err != nil {
		return fmt.Errorf("bmp180: calibration read failed: %w", err)
	}
	d.ac1 = int16(binary.BigEndian.Uint16(buf[0:2]))
	d.ac2 = int16(binary.BigEndian.Uint16(buf[2:4]))
	d.ac3 = int16(binary.BigEndian.Uint16(buf[4:6]))
	d.ac4 = binary.BigEndian.Uint16(buf[6:8])
	d.ac5 = binary.BigEndian.Uint16(buf[8:10])
	d.ac6 = binary.BigEndian.Uint16(buf[10:12])
	d.b1 = int16(binary.BigEndian.Uint16(buf[12:14]))
	d.b2 = int16(binary.BigEndian.Uint16(buf[14:16]))
	d.mb = int16(binary.BigEndian.Uint16(buf[16:18]))
	d.mc = int16(binary.BigEndian.Uint16(buf[18:20]))
	d.md = int16(binary.BigEndian.Uint16(buf[20:22]))

	// Datasheet: none of the words are 0x0000 or 0xFFFF on a working part.
	for i := 0; i < calibLen; i += 2 {
		w := binary.BigEndian.Uint16(buf[i : i+2])
		if w == 0x0000 || w == 0xFFFF {
			return fmt.Errorf("bmp180: calibration word %d invalid (0x%04X)", i/2, w)
		}
	}
	return nil
}

func (d *Device) readUncompTemp() (int32, error) {
	if err := d.dev.WriteReg(regCtrlMeas, cmdReadTemp); err != nil {
		return 0, fmt.Errorf("bmp180: start temp conversion failed: %w", err)
	}
	sleep(conversionDelay[0])
	buf := make([]byte, 2)
	if err := d.dev.ReadReg(regOutMSB, buf); err != nil {
		return 0, fmt.Errorf("bmp180: temp readout failed: %w", err)
	}
	return int32(buf[0])<<8 | int32(buf[1]), nil
}

func (d *Device) readUncompPressure() (int32, error) {
	if err := d.dev.WriteReg(regCtrlMeas, cmdReadPress|byte(d.oss<<6)); err != nil {
		return 0, fmt.Errorf("bmp180: start pressure conversion failed: %w", err)
	}
	sleep(conversionDelay[d.oss])
	buf := make([]byte, 3)
	if err := d.dev.ReadReg(regOutMSB, buf); err != nil {
		return 0, fmt.Errorf("bmp180: pressure readout failed: %w", err)
	}
	up := int32(buf[0])<<16 | int32(buf[1])<<8 | int32(buf[2])
	return up >> (8 - d.oss), nil
}

// Read performs one temperature + pressure conversion cycle.
// Temperature is in °C, pressure in hPa.
func (d *Device) Read() (tempC float64, pressureHPa float64, err error) {
	if d == nil {
		return 0, 0, fmt.Errorf("bmp180: device is nil")
	}
	ut, err := d.readUncompTemp()
	if err != nil {
		return 0, 0, err
	}
	up, err := d.readUncompPressure()
	if err != nil {
		return 0, 0, err
	}
	t10, pa := d.compensate(ut, up)
	return float64(t10) / 10.0, float64(pa) / 100.0, nil
}

// compensate maps raw readings to 0.1°C and Pa using the exact integer
// pipeline from the BMP180 datasheet (section 3.5). The intermediate names
// follow the datasheet so the steps can be checked against it.
func (d *Device) compensate(ut, up int32) (t10 int32, pressurePa int32) {
	x1 := ((ut - int32(d.ac6)) * int32(d.ac5)) >> 15
	x2 := (int32(d.mc) << 11) / (x1 + int32(d.md))
	b5 := x1 + x2
	t10 = (b5 + 8) >> 4

	b6 := b5 - 4000
	x1 = (int32(d.b2) * ((b6 * b6) >> 12)) >> 11
	x2 = (int32(d.ac2) * b6) >> 11
	x3 := x1 + x2
	b3 := (((int32(d.ac1)*4 + x3) << d.oss) + 2) / 4
	x1 = (int32(d.ac3) * b6) >> 13
	x2 = (int32(d.b1) * ((b6 * b6) >> 12)) >> 16
	x3 = ((x1 + x2) + 2) >> 2
	b4 := (uint32(d.ac4) * uint32(x3+32768)) >> 15
	b7 := uint32(up-b3) * (50000 >> d.oss)

	var p int32
	if b7 < 0x80000000 {
		p = int32((b7 * 2) / b4)
	} else {
		p = int32((b7 / b4) * 2)
	}
	x1 = (p >> 8) * (p >> 8)
	x1 = (x1 * 3038) >> 16
	x2 = (-7357 * p) >> 16
	p += (x1 + x2 + 3791) >> 4
	return t10, p
}
