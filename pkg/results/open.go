package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MultiSink fans every record out to several sinks in order.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks. Nil entries are ignored.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Write stops at the first failing sink.
func (m *MultiSink) Write(ctx context.Context, r Record) error {
	for _, s := range m.sinks {
		if err := s.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Kind classifies an output destination.
type Kind string

const (
	KindFile     Kind = "file"
	KindPostgres Kind = "postgres"
	KindS3       Kind = "s3"
	KindPub      Kind = "pub"
)

// Classify decides which sink serves dest.
func Classify(dest string) Kind {
	switch {
	case strings.HasPrefix(dest, "postgres://"), strings.HasPrefix(dest, "postgresql://"):
		return KindPostgres
	case strings.HasPrefix(dest, "s3://"):
		return KindS3
	case IsPubAddress(dest):
		return KindPub
	default:
		return KindFile
	}
}

// Open creates the sink for one destination identifier: a file path (".sz"
// for snappy), a postgres:// URL, an s3://bucket/key URL or an NNG address.
func Open(ctx context.Context, dest, runID string) (Sink, error) {
	if strings.TrimSpace(dest) == "" {
		return nil, errors.New("empty output destination")
	}
	switch Classify(dest) {
	case KindPostgres:
		return NewPGSink(ctx, dest)
	case KindS3:
		return NewS3Sink(ctx, dest, runID)
	case KindPub:
		return NewPubSink(dest)
	default:
		return CreateCSVFile(dest)
	}
}

// OpenAll opens every destination, closing the ones already opened if a
// later one fails.
func OpenAll(ctx context.Context, dests []string, runID string) (*MultiSink, error) {
	opened := make([]Sink, 0, len(dests))
	for _, dest := range dests {
		s, err := Open(ctx, dest, runID)
		if err != nil {
			NewMultiSink(opened...).Close()
			return nil, fmt.Errorf("open output %s: %w", dest, err)
		}
		opened = append(opened, s)
	}
	return NewMultiSink(opened...), nil
}
