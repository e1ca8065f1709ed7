// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/luxfi/binfhe-estimator/engine"
	"github.com/luxfi/binfhe-estimator/internal/storage"
	"github.com/luxfi/binfhe-estimator/params"
)

// DefaultTrials is the number of noise trials the command line requests.
const DefaultTrials = 200

// DefaultTargetFailureLog2 is the failure probability, as a log2, the target
// noise of a report is computed for.
const DefaultTargetFailureLog2 = -40

// Mode selects what a run does after key generation.
type Mode int

const (
	// ModeNoise runs repeated all-zero trials and counts failures.
	ModeNoise Mode = iota
	// ModeVerify checks the fixed three-input truth table.
	ModeVerify
)

func (m Mode) String() string {
	switch m {
	case ModeNoise:
		return "noise"
	case ModeVerify:
		return "verify"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "noise" and "verify" to their Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "noise", "":
		return ModeNoise, nil
	case "verify":
		return ModeVerify, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// Request describes one estimation run.
type Request struct {
	Literal params.Literal
	Preset  string
	Arity   int
	Trials  int
	Mode    Mode
	// TargetFailureLog2, when negative, adds the noise deviation that keeps
	// the failure probability at 2^TargetFailureLog2 to noise reports.
	TargetFailureLog2 float64
}

// Options carry the collaborators of a run. The zero value is usable.
type Options struct {
	Clock         Clock
	Logger        *log.Logger
	ProgressEvery int
	// Store receives serialized key material when set.
	Store storage.Storage
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Logger
}

// Estimate resolves the configuration and validates the arity before any key
// material exists, then generates keys, measures their sizes, and runs the
// requested mode.
func Estimate(eng engine.Engine, req Request, opts Options) (*RunReport, error) {
	logger := opts.logger()

	cfg, err := params.Resolve(req.Literal, req.Preset)
	if err != nil {
		return nil, err
	}
	spec, err := NewGateSpec(req.Arity, FamilyOR)
	if err != nil {
		return nil, err
	}
	if req.Mode != ModeNoise && req.Mode != ModeVerify {
		return nil, fmt.Errorf("estimate: unknown mode %v", req.Mode)
	}

	logger.Printf("config %s: %v", cfg.Fingerprint(), cfg)

	keys, err := GenerateKeys(eng, cfg, opts.Clock)
	if err != nil {
		return nil, err
	}
	logger.Printf("bootstrapping keys generated in %v", keys.KeyGenTime)

	p := spec.PlaintextModulus()
	if req.Mode == ModeVerify {
		p = params.PlaintextModulus(3)
	}

	sizes, artifacts, err := Instrument(context.Background(), keys, p, opts.Store)
	if err != nil {
		return nil, err
	}

	report := newRunReport(cfg, spec, req.Mode, keys, sizes, artifacts)

	switch req.Mode {
	case ModeVerify:
		res, err := Verify(keys, p)
		if err != nil {
			return nil, err
		}
		report.setVerify(res)
	case ModeNoise:
		runner := &Runner{Clock: opts.Clock, Logger: logger, ProgressEvery: opts.ProgressEvery}
		stats, err := runner.Run(keys, spec, req.Trials, p)
		if err != nil {
			return nil, err
		}
		if err := report.setTrials(stats, req.TargetFailureLog2); err != nil {
			return nil, err
		}
	}

	return report, nil
}
