// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package binfhe

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// log2Floor returns floor(log2(v)) for v > 0 and 0 otherwise.
func log2Floor[T constraints.Unsigned](v T) int {
	if v == 0 {
		return 0
	}
	return bits.Len64(uint64(v)) - 1
}

// log2Ceil returns ceil(log2(v)) for v > 0 and 0 otherwise.
func log2Ceil[T constraints.Unsigned](v T) int {
	if v <= 1 {
		return 0
	}
	return bits.Len64(uint64(v) - 1)
}

// scaleRound returns round(a*b/c) without overflow. It requires a < c or
// b < c so that the quotient fits in 64 bits.
func scaleRound(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	lo, carry := bits.Add64(lo, c>>1, 0)
	hi += carry
	q, _ := bits.Div64(hi, lo, c)
	return q
}

// centered maps v in [0, q) to the signed representative in (-q/2, q/2].
func centered(v, q uint64) int64 {
	if v > q>>1 {
		return -int64(q - v)
	}
	return int64(v)
}
