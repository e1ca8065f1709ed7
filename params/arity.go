// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package params

// Supported gate input counts.
const (
	MinArity = 2
	MaxArity = 4
)

// ValidateArity rejects gate input counts outside [MinArity, MaxArity].
func ValidateArity(arity int) error {
	if arity < MinArity || arity > MaxArity {
		return configErrorf(ErrInvalidArity, "arity", "%d", arity)
	}
	return nil
}

// PlaintextModulus is the modulus p used to encrypt operands of a gate with
// the given number of inputs.
func PlaintextModulus(arity int) uint64 {
	return 2 * uint64(arity)
}
