// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package params

import "math"

// logModulusFit is the linear relation log2(modulus) = a*dimension + b fitted
// against the lattice estimator for each standard security level.
var logModulusFit = map[SecurityLevel][2]float64{
	Security128:  {0.026243550051145488, -0.19332645282074845},
	Security128Q: {0.024334365322949414, 0.026487788095649},
	Security192:  {0.01843137255110034, -0.6666666695778614},
	Security192Q: {0.017254901960954656, -0.9019607843827292},
	Security256:  {0.014352941174320843, -1.0014705882400903},
	Security256Q: {0.01339285714070515, -1.083333333337455},
}

// EstimateLogModulus returns the largest log2 modulus that keeps an LWE
// instance of the given dimension at the given security level. ok is false for
// levels without a fitted relation (TOY, MEDIUM).
func EstimateLogModulus(level SecurityLevel, dim uint32) (logQ int, ok bool) {
	fit, ok := logModulusFit[level]
	if !ok {
		return 0, false
	}
	return int(math.Ceil(fit[0]*float64(dim) + fit[1])), true
}

// EstimateDimension is the inverse of EstimateLogModulus: the smallest
// dimension for which logQ bits of modulus stay at the given security level.
func EstimateDimension(level SecurityLevel, logQ int) (dim uint32, ok bool) {
	fit, ok := logModulusFit[level]
	if !ok {
		return 0, false
	}
	return uint32(math.Ceil((float64(logQ) - fit[1]) / fit[0])), true
}

// SecurityMargin compares the configuration against a security level: it is
// the estimated admissible log2 ring modulus for the ring dimension minus the
// configured logQ. A negative margin means the ring modulus is too large.
func (c SchemeConfig) SecurityMargin(level SecurityLevel) (int, bool) {
	maxLogQ, ok := EstimateLogModulus(level, c.lit.RingDim)
	if !ok {
		return 0, false
	}
	return maxLogQ - int(c.lit.LogQ), true
}

// SecurityLevel returns the level of the preset the configuration was
// resolved from. ok is false for explicit configurations.
func (c SchemeConfig) SecurityLevel() (SecurityLevel, bool) {
	p, ok := presets[c.preset]
	return p.Security, ok
}
