// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"time"

	"github.com/luxfi/binfhe-estimator/engine"
)

// verifyPlaintexts are the plaintexts of ct1..ct6.
var verifyPlaintexts = [6]int{1, 1, 0, 0, 1, 0}

// verifyTriples index into verifyPlaintexts with the expected AND3 and OR3
// outputs of each triple.
var verifyTriples = []struct {
	operands [3]int
	and, or  int
}{
	{[3]int{0, 2, 3}, 0, 1},
	{[3]int{0, 1, 2}, 0, 1},
	{[3]int{0, 1, 4}, 1, 1},
	{[3]int{2, 3, 5}, 0, 0},
}

// VerifyResult reports a passing correctness check.
type VerifyResult struct {
	Gates    int
	EvalTime time.Duration
}

// Verify evaluates the fixed three-input AND and OR truth table and stops at
// the first output that decrypts to the wrong value with an *AssertionError.
func Verify(keys *KeyBundle, p uint64) (VerifyResult, error) {
	var (
		res   VerifyResult
		ctx   = keys.Context
		clock = clockOrSystem(keys.clock)
	)

	var cts [len(verifyPlaintexts)]engine.Ciphertext
	for i, m := range verifyPlaintexts {
		ct, err := ctx.Encrypt(keys.SecretKey, m, engine.SmallDim, p)
		if err != nil {
			return res, stageError(StageEncryption, -1, err)
		}
		cts[i] = ct
	}

	for _, family := range []Family{FamilyAND, FamilyOR} {
		spec, err := NewGateSpec(3, family)
		if err != nil {
			return res, err
		}

		for _, tc := range verifyTriples {
			operands := []engine.Ciphertext{cts[tc.operands[0]], cts[tc.operands[1]], cts[tc.operands[2]]}

			start := clock.Now()
			out, err := Dispatch(ctx, spec, operands)
			res.EvalTime += clock.Now().Sub(start)
			if err != nil {
				return res, stageError(StageEvaluation, -1, err)
			}
			res.Gates++

			got, err := ctx.Decrypt(keys.SecretKey, out, p)
			if err != nil {
				return res, stageError(StageDecryption, -1, err)
			}

			want := tc.or
			if family == FamilyAND {
				want = tc.and
			}
			if got != want {
				return res, &AssertionError{
					Gate:     spec.Gate(),
					Operands: plaintextsOf(tc.operands),
					Want:     want,
					Got:      got,
				}
			}
		}
	}

	return res, nil
}

func plaintextsOf(idx [3]int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = verifyPlaintexts[j]
	}
	return out
}
