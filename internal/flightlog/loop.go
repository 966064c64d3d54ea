package flightlog

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"flightlogger/internal/attitude"
	"flightlogger/internal/baro"
)

// Test seams.
var timeNow = time.Now
var sleep = sleepContext

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

const standardGravity = 9.80665

// A sensor that fails this many ticks in a row is treated as gone, not
// glitching, and the run is aborted. At the nominal rate this is ~5 seconds
// of no data.
const maxConsecutiveSensorFailures = 100

type Config struct {
	// Interval is the fixed end-of-iteration sleep. It is not
	// deadline-corrected; the true loop period is Interval plus however long
	// acquisition, fusion and formatting take. Per-update dt comes from the
	// clock, so the timing drift is absorbed by the gyro integration.
	Interval time.Duration
	// FlushEvery bounds data loss on abrupt power failure to FlushEvery-1
	// unflushed records without paying a flush-per-write penalty.
	FlushEvery int
	// StatusEvery is the minimum spacing between status lines.
	StatusEvery time.Duration
}

// Stats counts what the loop has done so far.
type Stats struct {
	Records        int
	Flushes        int
	SensorFailures int
}

// Logger drives the fixed-cadence acquisition/fusion/logging cycle and owns
// all mutable loop state. Single goroutine, no locking.
type Logger struct {
	cfg  Config
	src  Source
	sink RecordSink

	// StatusWriter receives the once-per-second status line.
	StatusWriter io.Writer

	st loopState
}

// loopState is the mutable per-run state, owned exclusively by the loop.
type loopState struct {
	baseline baro.Baseline
	att      attitude.State

	lastT      time.Time
	lastStatus time.Time

	consecFailures int
	stats          Stats
}

func New(cfg Config, src Source, sink RecordSink) *Logger {
	if cfg.Interval <= 0 {
		cfg.Interval = 50 * time.Millisecond // ~20 Hz
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 25
	}
	if cfg.StatusEvery <= 0 {
		cfg.StatusEvery = 1 * time.Second
	}
	return &Logger{cfg: cfg, src: src, sink: sink, StatusWriter: os.Stdout}
}

func (l *Logger) Stats() Stats {
	return l.st.stats
}

// Run executes the startup sequence and then loops until ctx is canceled or
// a fatal error occurs. Sink write failures are fatal: the log is the whole
// point of the system.
func (l *Logger) Run(ctx context.Context) error {
	if err := l.startup(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := l.step(); err != nil {
			return err
		}
		sleep(ctx, l.cfg.Interval)
	}
}

// startup captures the pressure baseline and seeds the attitude estimate
// from a single accel-only tilt, in that order, exactly once. A failed read
// or a non-positive baseline here is fatal: without a valid zero reference
// every later altitude is garbage.
func (l *Logger) startup() error {
	if l.src == nil || l.sink == nil {
		return fmt.Errorf("flightlog: source and sink are required")
	}
	first, err := l.src.Sample()
	if err != nil {
		return fmt.Errorf("flightlog: startup sample: %w", err)
	}
	bl, err := baro.CaptureBaseline(first.PressureHPa)
	if err != nil {
		return err
	}
	l.st.baseline = bl
	l.st.att = attitude.Seed(first.Ax, first.Ay, first.Az)

	now := timeNow()
	l.st.lastT = now
	l.st.lastStatus = now
	return nil
}

// step runs one iteration: dt, acquire, fuse, format, append, maybe flush,
// maybe status.
func (l *Logger) step() error {
	now := timeNow()

	s, err := l.src.Sample()
	if err != nil {
		// Skip the tick rather than feed stale or zero data into the gyro
		// integration. lastT is left alone so the gap is absorbed into the
		// next successful update's dt.
		l.st.consecFailures++
		l.st.stats.SensorFailures++
		if l.st.consecFailures == 1 {
			log.Printf("flightlog: sensor read failed, skipping tick: %v", err)
		}
		if l.st.consecFailures >= maxConsecutiveSensorFailures {
			return fmt.Errorf("flightlog: sensor gone (%d consecutive read failures): %w", l.st.consecFailures, err)
		}
		return nil
	}
	if l.st.consecFailures > 0 {
		log.Printf("flightlog: sensor recovered after %d failed ticks", l.st.consecFailures)
		l.st.consecFailures = 0
	}

	dt := now.Sub(l.st.lastT).Seconds()
	l.st.lastT = now

	alt := l.st.baseline.Altitude(s.PressureHPa)
	l.st.att = l.st.att.Update(s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, dt)
	accelG := math.Sqrt(s.Ax*s.Ax+s.Ay*s.Ay+s.Az*s.Az) / standardGravity

	rec := Record{
		Alt:      alt,
		AccelG:   accelG,
		RollDeg:  l.st.att.RollDeg,
		PitchDeg: l.st.att.PitchDeg,
	}

	if err := l.sink.Append(rec); err != nil {
		return err
	}
	l.st.stats.Records++
	if l.st.stats.Records%l.cfg.FlushEvery == 0 {
		if err := l.sink.Flush(); err != nil {
			return err
		}
		l.st.stats.Flushes++
	}

	if now.Sub(l.st.lastStatus) >= l.cfg.StatusEvery {
		fmt.Fprintln(l.StatusWriter, rec.StatusLine())
		l.st.lastStatus = now
	}
	return nil
}
