// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"errors"
	"fmt"

	"github.com/luxfi/binfhe-estimator/engine"
)

// Stage names the step of a run that failed.
type Stage string

const (
	StageConfiguration   Stage = "configuration"
	StageKeyGeneration   Stage = "key generation"
	StageEncryption      Stage = "encryption"
	StageEvaluation      Stage = "evaluation"
	StageDecryption      Stage = "decryption"
	StageInstrumentation Stage = "instrumentation"
)

// StageError wraps an engine failure with the stage it happened in. Trial is
// the zero-based trial index, or -1 outside the trial loop.
type StageError struct {
	Stage Stage
	Trial int
	Err   error
}

func (e *StageError) Error() string {
	if e.Trial >= 0 {
		return fmt.Sprintf("%s failed at trial %d: %v", e.Stage, e.Trial, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, trial int, err error) *StageError {
	return &StageError{Stage: stage, Trial: trial, Err: err}
}

// ErrDecryptionMismatch is the kind of every AssertionError.
var ErrDecryptionMismatch = errors.New("decryption mismatch")

// AssertionError reports a gate whose decryption differs from the expected
// truth table value.
type AssertionError struct {
	Gate     engine.Gate
	Operands []int
	Want     int
	Got      int
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%v: %v%v decrypted to %d, want %d", ErrDecryptionMismatch, e.Gate, e.Operands, e.Got, e.Want)
}

func (e *AssertionError) Unwrap() error {
	return ErrDecryptionMismatch
}
