// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package engine

import "fmt"

// Gate identifies a threshold gate.
type Gate int

const (
	OR Gate = iota
	AND
	OR3
	AND3
	OR4
	AND4
)

// Gates lists every gate an engine must support.
var Gates = []Gate{OR, AND, OR3, AND3, OR4, AND4}

func (g Gate) String() string {
	switch g {
	case OR:
		return "OR"
	case AND:
		return "AND"
	case OR3:
		return "OR3"
	case AND3:
		return "AND3"
	case OR4:
		return "OR4"
	case AND4:
		return "AND4"
	default:
		return fmt.Sprintf("Gate(%d)", int(g))
	}
}

// Arity is the number of inputs the gate takes, or 0 for unknown gates.
func (g Gate) Arity() int {
	switch g {
	case OR, AND:
		return 2
	case OR3, AND3:
		return 3
	case OR4, AND4:
		return 4
	default:
		return 0
	}
}

// IsAND reports whether the gate belongs to the AND family.
func (g Gate) IsAND() bool {
	return g == AND || g == AND3 || g == AND4
}

// Eval evaluates the gate in the clear.
func (g Gate) Eval(bits ...int) int {
	ones := 0
	for _, b := range bits {
		if b != 0 {
			ones++
		}
	}
	if g.IsAND() {
		if ones == len(bits) {
			return 1
		}
		return 0
	}
	if ones > 0 {
		return 1
	}
	return 0
}
