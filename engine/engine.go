// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package engine defines the contract between the estimator and a boolean
// FHE engine. The estimator never looks inside keys or ciphertexts; it only
// passes the opaque values an engine hands out back to the same engine.
package engine

import (
	"fmt"

	"github.com/luxfi/binfhe-estimator/params"
)

// Mode selects the ciphertext domain produced by Encrypt.
type Mode int

const (
	// SmallDim ciphertexts live in the LWE domain (n, q) that gates consume.
	SmallDim Mode = iota
	// Fresh ciphertexts live in the large blind rotation domain (N, Q).
	Fresh
)

func (m Mode) String() string {
	switch m {
	case SmallDim:
		return "SMALL_DIM"
	case Fresh:
		return "FRESH"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// SecretKey is an engine-owned secret key.
type SecretKey any

// Ciphertext is an engine-owned ciphertext.
type Ciphertext any

// BootstrapKey is the pair of keys produced by BTKeyGen.
type BootstrapKey interface {
	// RefreshKey returns the blind rotation (refreshing) key.
	RefreshKey() any
	// SwitchKey returns the key switching key.
	SwitchKey() any
}

// Engine creates contexts bound to a scheme configuration.
type Engine interface {
	// NewContext validates cfg and prepares a context. Unsound configurations
	// are reported here.
	NewContext(cfg params.SchemeConfig) (Context, error)
}

// Context is a configured engine. A context holds the bootstrapping key once
// BTKeyGen has succeeded and uses it for every subsequent gate.
type Context interface {
	KeyGen() (SecretKey, error)
	BTKeyGen(sk SecretKey) (BootstrapKey, error)
	Encrypt(sk SecretKey, bit int, mode Mode, p uint64) (Ciphertext, error)
	// EvalBinGate evaluates a two-input gate.
	EvalBinGate(gate Gate, ct1, ct2 Ciphertext) (Ciphertext, error)
	// EvalBinGateVector evaluates a gate over len(cts) inputs.
	EvalBinGateVector(gate Gate, cts []Ciphertext) (Ciphertext, error)
	Decrypt(sk SecretKey, ct Ciphertext, p uint64) (int, error)
	// Serialize encodes a key or ciphertext handed out by this context.
	Serialize(obj any) ([]byte, error)
}

// NoiseMeter is implemented by contexts that can report the decryption noise
// of a ciphertext.
type NoiseMeter interface {
	// Noise returns the centered distance between the phase of ct and the
	// nearest multiple of Modulus(ct)/p.
	Noise(sk SecretKey, ct Ciphertext, p uint64) (float64, error)
	// Modulus returns the ciphertext modulus of ct.
	Modulus(ct Ciphertext) uint64
}
