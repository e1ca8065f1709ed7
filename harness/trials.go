// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/luxfi/binfhe-estimator/engine"
)

// TrialStatistics accumulates the outcome of a trial run.
type TrialStatistics struct {
	Arity     int
	Plaintext uint64
	Trials    int
	// Failures counts trials whose output did not decrypt to 0.
	Failures  int
	TotalEval time.Duration
	EvalTimes []time.Duration
	// Noise holds the output noise of every trial when the engine can
	// measure it, in units of Modulus.
	Noise   []float64
	Modulus uint64
}

// AverageMillis returns TotalEval / Trials in milliseconds, or 0 when no
// trial ran.
func (s TrialStatistics) AverageMillis() float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.TotalEval) / float64(s.Trials) / float64(time.Millisecond)
}

// Runner executes noise trials. The zero value uses the system clock and
// discards progress output.
type Runner struct {
	Clock  Clock
	Logger *log.Logger
	// ProgressEvery logs progress every that many trials; 0 disables it.
	ProgressEvery int
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return r.Logger
}

// Run performs numTrials trials of spec. Each trial encrypts a fresh set of
// zeros under p, evaluates the gate, decrypts, and counts any non-zero result
// as a failure. Engine errors abort the run with a *StageError.
func (r *Runner) Run(keys *KeyBundle, spec GateSpec, numTrials int, p uint64) (TrialStatistics, error) {
	stats := TrialStatistics{Arity: spec.Arity(), Plaintext: p}
	if numTrials < 0 {
		return stats, fmt.Errorf("run: negative trial count %d", numTrials)
	}
	if numTrials == 0 {
		return stats, nil
	}

	var (
		clock  = clockOrSystem(r.Clock)
		logger = r.logger()
		ctx    = keys.Context
	)
	meter, measure := ctx.(engine.NoiseMeter)

	stats.EvalTimes = make([]time.Duration, 0, numTrials)
	if measure {
		stats.Noise = make([]float64, 0, numTrials)
	}

	for i := 0; i < numTrials; i++ {
		operands := make([]engine.Ciphertext, spec.Arity())
		for j := range operands {
			ct, err := ctx.Encrypt(keys.SecretKey, 0, engine.SmallDim, p)
			if err != nil {
				return stats, stageError(StageEncryption, i, err)
			}
			operands[j] = ct
		}

		start := clock.Now()
		out, err := Dispatch(ctx, spec, operands)
		elapsed := clock.Now().Sub(start)
		if err != nil {
			return stats, stageError(StageEvaluation, i, err)
		}
		stats.TotalEval += elapsed
		stats.EvalTimes = append(stats.EvalTimes, elapsed)

		m, err := ctx.Decrypt(keys.SecretKey, out, p)
		if err != nil {
			return stats, stageError(StageDecryption, i, err)
		}
		if m != 0 {
			stats.Failures++
		}

		if measure {
			noise, err := meter.Noise(keys.SecretKey, out, p)
			if err != nil {
				return stats, stageError(StageDecryption, i, err)
			}
			stats.Noise = append(stats.Noise, noise)
			stats.Modulus = meter.Modulus(out)
		}

		stats.Trials++
		if r.ProgressEvery > 0 && stats.Trials%r.ProgressEvery == 0 {
			logger.Printf("%v: %d/%d trials, %d failures, %.3f ms/gate",
				spec, stats.Trials, numTrials, stats.Failures, stats.AverageMillis())
		}
	}

	return stats, nil
}
