// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
)

// Summary condenses trial statistics.
type Summary struct {
	MeanMillis   float64 `json:"mean_ms"`
	MedianMillis float64 `json:"median_ms"`
	P95Millis    float64 `json:"p95_ms"`
	// NoiseStdDev is the sample standard deviation of the output noise.
	NoiseStdDev float64 `json:"noise_stddev"`
	// FailureLog2 is the log2 of the estimated decryption failure probability.
	// When the probability is below the float64 range it is MinFailureLog2
	// and FailureUnderflow is set.
	FailureLog2      float64 `json:"failure_log2"`
	FailureUnderflow bool    `json:"failure_underflow,omitempty"`
}

// MinFailureLog2 is log2 of the smallest positive float64.
const MinFailureLog2 = -1074

// Summary computes timing percentiles and, when at least two noise samples
// exist, the noise deviation and the failure probability it implies.
func (s TrialStatistics) Summary() (Summary, error) {
	var sum Summary
	if len(s.EvalTimes) == 0 {
		return sum, nil
	}

	millis := make(stats.Float64Data, len(s.EvalTimes))
	for i, d := range s.EvalTimes {
		millis[i] = float64(d) / float64(time.Millisecond)
	}

	var err error
	if sum.MeanMillis, err = millis.Mean(); err != nil {
		return sum, err
	}
	if sum.MedianMillis, err = millis.Median(); err != nil {
		return sum, err
	}
	if sum.P95Millis, err = millis.Percentile(95); err != nil {
		return sum, err
	}

	if len(s.Noise) < 2 {
		return sum, nil
	}
	if sum.NoiseStdDev, err = stats.StandardDeviationSample(s.Noise); err != nil {
		return sum, err
	}
	sum.FailureLog2 = FailureLog2(sum.NoiseStdDev, s.Plaintext, s.Modulus, s.Arity)
	if math.IsInf(sum.FailureLog2, -1) {
		sum.FailureLog2 = MinFailureLog2
		sum.FailureUnderflow = true
	}

	return sum, nil
}

// FailureLog2 estimates log2 of the probability that a gate output with noise
// deviation sigma decrypts wrongly: erfc((q/(2p)) / (sqrt(2k) sigma)). It
// returns -Inf when the probability underflows to zero, which includes a
// noise-free output, and NaN for a negative sigma or a zero p or k.
func FailureLog2(sigma float64, p, q uint64, k int) float64 {
	if !(sigma >= 0) || p == 0 || k <= 0 {
		return math.NaN()
	}
	num := float64(q) / (2 * float64(p))
	return math.Log2(math.Erfc(num / (math.Sqrt(2*float64(k)) * sigma)))
}

// TargetNoise is the inverse of FailureLog2: the largest noise deviation that
// keeps the failure probability at 2^failureLog2.
func TargetNoise(failureLog2 float64, p, q uint64, k int) float64 {
	num := float64(q) / (2 * float64(p))
	return num / (math.Sqrt(2*float64(k)) * math.Erfcinv(math.Exp2(failureLog2)))
}
