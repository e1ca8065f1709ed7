// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package report publishes estimation results.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/luxfi/binfhe-estimator/harness"
)

// ErrNilReport is returned when a sink is asked to publish nothing.
var ErrNilReport = errors.New("nil report")

// Sink receives run reports.
type Sink interface {
	// Publish records one report.
	Publish(ctx context.Context, r *harness.RunReport) error
	// Close releases the sink.
	Close() error
}

// Multi publishes to every sink in order and stops at the first error.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, r *harness.RunReport) error {
	for _, s := range m {
		if err := s.Publish(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// JSONSink writes each report as indented JSON.
type JSONSink struct {
	w io.Writer
}

// NewJSONSink returns a sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w}
}

func (s *JSONSink) Publish(ctx context.Context, r *harness.RunReport) error {
	if r == nil {
		return ErrNilReport
	}
	data, err := r.JSON()
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = fmt.Fprintf(s.w, "%s\n", data)
	return err
}

func (s *JSONSink) Close() error { return nil }
