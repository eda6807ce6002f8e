package results

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/golang/snappy"
)

// SnappySuffix marks destinations written as a snappy framed stream.
const SnappySuffix = ".sz"

// flusher is implemented by buffered layers below the CSV writer.
type flusher interface {
	Flush() error
}

// CSVSink writes records as CSV rows, flushing every row through to the
// underlying writer.
type CSVSink struct {
	mu      sync.Mutex
	w       *csv.Writer
	below   flusher // optional, flushed after the CSV writer
	closers []io.Closer
	rows    int
}

// NewCSVSink writes the header to w and returns a sink appending rows to it.
func NewCSVSink(w io.Writer) (*CSVSink, error) {
	s := &CSVSink{w: csv.NewWriter(w)}
	if err := s.writeRow(Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return s, nil
}

// CreateCSVFile creates (truncating) path and returns a CSV sink on it. A
// path ending in ".sz" is compressed with snappy's framing format.
func CreateCSVFile(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	s := &CSVSink{w: csv.NewWriter(f)}
	if strings.HasSuffix(path, SnappySuffix) {
		sw := snappy.NewBufferedWriter(f)
		s.w, s.below = csv.NewWriter(sw), sw
		s.closers = append(s.closers, sw)
	}
	s.closers = append(s.closers, f)

	if err := s.writeRow(Header); err != nil {
		s.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return s, nil
}

// Write appends one row.
func (s *CSVSink) Write(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeRow(r.Row()); err != nil {
		return err
	}
	s.rows++
	return nil
}

// Rows returns the number of records written.
func (s *CSVSink) Rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	if s.below != nil {
		return s.below.Flush()
	}
	return nil
}

// Close flushes and closes every owned layer, outermost first.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.w.Flush()
	errs := []error{s.w.Error()}
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}
