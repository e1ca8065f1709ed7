// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"fmt"

	"github.com/luxfi/binfhe-estimator/engine"
	"github.com/luxfi/binfhe-estimator/params"
)

// Family selects the threshold gate evaluated at a given arity.
type Family int

const (
	FamilyOR Family = iota
	FamilyAND
)

func (f Family) String() string {
	switch f {
	case FamilyOR:
		return "OR"
	case FamilyAND:
		return "AND"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Convention is the engine call shape used for a gate.
type Convention int

const (
	// Binary calls EvalBinGate with two operands.
	Binary Convention = iota
	// Vector calls EvalBinGateVector with the full operand set.
	Vector
)

// gateTables maps every family and supported arity to its gate.
var gateTables = map[Family]map[int]engine.Gate{
	FamilyOR:  {2: engine.OR, 3: engine.OR3, 4: engine.OR4},
	FamilyAND: {2: engine.AND, 3: engine.AND3, 4: engine.AND4},
}

// GateSpec is a validated gate selection.
type GateSpec struct {
	arity  int
	family Family
}

// NewGateSpec validates arity and family. An arity outside [2, 4] is a
// *params.ConfigError.
func NewGateSpec(arity int, family Family) (GateSpec, error) {
	if err := params.ValidateArity(arity); err != nil {
		return GateSpec{}, err
	}
	if _, ok := gateTables[family]; !ok {
		return GateSpec{}, fmt.Errorf("gate spec: unknown family %v", family)
	}
	return GateSpec{arity: arity, family: family}, nil
}

// Arity returns the number of operands.
func (s GateSpec) Arity() int { return s.arity }

// Family returns the gate family.
func (s GateSpec) Family() Family { return s.family }

// Gate returns the engine gate identifier.
func (s GateSpec) Gate() engine.Gate { return gateTables[s.family][s.arity] }

// Convention returns Binary at arity 2 and Vector otherwise.
func (s GateSpec) Convention() Convention {
	if s.arity == 2 {
		return Binary
	}
	return Vector
}

// PlaintextModulus returns 2 * arity.
func (s GateSpec) PlaintextModulus() uint64 { return params.PlaintextModulus(s.arity) }

func (s GateSpec) String() string {
	return s.Gate().String()
}

// Dispatch evaluates the gate of spec over operands, which must hold exactly
// spec.Arity() ciphertexts.
func Dispatch(ctx engine.Context, spec GateSpec, operands []engine.Ciphertext) (engine.Ciphertext, error) {
	if len(operands) != spec.arity {
		return nil, fmt.Errorf("dispatch %v: got %d operands, want %d", spec, len(operands), spec.arity)
	}
	if spec.Convention() == Binary {
		return ctx.EvalBinGate(spec.Gate(), operands[0], operands[1])
	}
	return ctx.EvalBinGateVector(spec.Gate(), operands)
}
