package bmp180

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

type fakeI2C struct {
	regs map[byte][]byte

	// Conversion model: the value written to ctrl_meas selects which
	// out register contents to serve next.
	lastCtrl byte
	tempOut  []byte
	pressOut []byte
}

func (f *fakeI2C) ReadRegU8(reg byte) (byte, error) {
	b, ok := f.regs[reg]
	if !ok || len(b) < 1 {
		return 0, errors.New("no reg")
	}
	return b[0], nil
}

func (f *fakeI2C) ReadReg(reg byte, dst []byte) error {
	if reg == regOutMSB {
		if f.lastCtrl == cmdReadTemp {
			copy(dst, f.tempOut)
		} else {
			copy(dst, f.pressOut)
		}
		return nil
	}
	b, ok := f.regs[reg]
	if !ok {
		return errors.New("no reg")
	}
	copy(dst, b)
	return nil
}

func (f *fakeI2C) WriteReg(reg, value byte) error {
	if reg == regCtrlMeas {
		f.lastCtrl = value
	}
	return nil
}

func silenceSleep(t *testing.T) {
	t.Helper()
	oldSleep := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = oldSleep })
}

// Calibration set from the datasheet worked example (section 3.5).
func datasheetDevice(dev regIO) *Device {
	return &Device{
		dev: dev, oss: 0,
		ac1: 408, ac2: -72, ac3: -14383,
		ac4: 32741, ac5: 32757, ac6: 23153,
		b1: 6190, b2: 4,
		mb: -32768, mc: -8711, md: 2868,
	}
}

// Literal regression against the datasheet: UT=27898, UP=23843 at oss=0
// must give 15.0 degC and 69964 Pa.
func TestCompensate_DatasheetExample(t *testing.T) {
	d := datasheetDevice(nil)
	t10, pa := d.compensate(27898, 23843)
	if t10 != 150 {
		t.Fatalf("t10=%d want 150", t10)
	}
	if pa != 69964 {
		t.Fatalf("p=%d want 69964", pa)
	}
}

func TestRead_ConversionCycle(t *testing.T) {
	silenceSleep(t)
	f := &fakeI2C{
		regs:     map[byte][]byte{},
		tempOut:  []byte{0x6C, 0xFA},       // 27898
		pressOut: []byte{0x5D, 0x23, 0x00}, // 23843 << 8, shifted out at oss=0
	}
	d := datasheetDevice(f)

	tc, hpa, err := d.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if math.Abs(tc-15.0) > 1e-9 {
		t.Fatalf("temp=%v want 15.0", tc)
	}
	if math.Abs(hpa-699.64) > 1e-9 {
		t.Fatalf("pressure=%v hPa want 699.64", hpa)
	}
}

func TestNew_RejectsWrongChipID(t *testing.T) {
	silenceSleep(t)
	f := &fakeI2C{regs: map[byte][]byte{regID: {0x58}}} // a BMP280
	if _, err := newWithIO(f); err == nil {
		t.Fatalf("expected chip id error")
	}
}

func TestNew_RejectsDeadCalibration(t *testing.T) {
	silenceSleep(t)
	calib := make([]byte, calibLen) // all zero words
	f := &fakeI2C{regs: map[byte][]byte{
		regID:      {chipIDBMP180},
		regCalibAA: calib,
	}}
	if _, err := newWithIO(f); err == nil {
		t.Fatalf("expected calibration error")
	}
}

func TestNew_LoadsCalibration(t *testing.T) {
	silenceSleep(t)
	calib := make([]byte, calibLen)
	words := []uint16{
		uint16(408), uint16(0x10000 - 72), uint16(0x10000 - 14383),
		32741, 32757, 23153,
		6190, 4,
		0x8000, uint16(0x10000 - 8711), 2868,
	}
	for i, w := range words {
		binary.BigEndian.PutUint16(calib[i*2:], w)
	}
	f := &fakeI2C{regs: map[byte][]byte{
		regID:      {chipIDBMP180},
		regCalibAA: calib,
	}}
	d, err := newWithIO(f)
	if err != nil {
		t.Fatalf("newWithIO: %v", err)
	}
	if d.ac1 != 408 || d.ac2 != -72 || d.ac4 != 32741 || d.mc != -8711 {
		t.Fatalf("calibration mismatch: %+v", d)
	}
	if d.oss != defaultOSS {
		t.Fatalf("oss=%d want %d", d.oss, defaultOSS)
	}
}
