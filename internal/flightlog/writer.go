package flightlog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RecordSink is an append-only sink with explicit flush. The logging loop
// owns the flush cadence; the sink just buffers.
type RecordSink interface {
	Append(Record) error
	Flush() error
	Close() error
}

// NextLogPath returns the first unused log_NNN.csv inside dir, probing
// sequentially from log_001.csv. Each boot gets a fresh file; nothing is ever
// appended to an earlier flight's log.
func NextLogPath(dir string) (string, error) {
	for n := 1; ; n++ {
		path := filepath.Join(dir, fmt.Sprintf("log_%03d.csv", n))
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("flightlog: probe %s: %w", path, err)
		}
	}
}

// Writer is a buffered CSV sink for one log file.
//
// Rows pass through the csv encoder into a bufio layer; nothing hits the
// backing store until Flush. The file handle stays open for the life of the
// loop (the loop is the only writer).
type Writer struct {
	f   *os.File
	buf *bufio.Writer
	csv *csv.Writer
}

// NewWriter creates the file and writes the header row. The header is pushed
// to the backing store immediately so even a log cut short by power loss
// identifies its columns.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("flightlog: create %s: %w", path, err)
	}
	w := &Writer{f: f, buf: bufio.NewWriter(f)}
	w.csv = csv.NewWriter(w.buf)

	if _, err := fmt.Fprintln(w.buf, Header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flightlog: write header: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) Append(r Record) error {
	if err := w.csv.Write(r.Fields()); err != nil {
		return fmt.Errorf("flightlog: append: %w", err)
	}
	// Drain the csv encoder into the bufio layer so Flush sees everything.
	// This does not reach the file yet.
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flightlog: append: %w", err)
	}
	return nil
}

func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flightlog: flush: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	if w == nil || w.f == nil {
		return nil
	}
	flushErr := w.Flush()
	err := w.f.Close()
	w.f = nil
	if flushErr != nil {
		return flushErr
	}
	return err
}
