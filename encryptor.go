// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package binfhe

import (
	"fmt"

	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/luxfi/binfhe-estimator/engine"
)

// Encryptor encrypts plaintexts modulo p into FHE ciphertexts
type Encryptor struct {
	params Parameters
	encLWE *rlwe.Encryptor
	encBR  *rlwe.Encryptor
}

// NewEncryptor creates a new encryptor from secret key
func NewEncryptor(params Parameters, sk *SecretKey) *Encryptor {
	return &Encryptor{
		params: params,
		encLWE: rlwe.NewEncryptor(params.paramsLWE, sk.SKLWE),
		encBR:  rlwe.NewEncryptor(params.paramsBR, sk.SKExt),
	}
}

// Encrypt encrypts m mod p as round(m*q/p) in the domain selected by mode:
// SmallDim under the LWE secret modulo the LWE modulus, Fresh under the
// extended secret modulo the blind rotation modulus.
func (enc *Encryptor) Encrypt(m int, mode engine.Mode, p uint64) (*Ciphertext, error) {
	if p < 2 {
		return nil, fmt.Errorf("encrypt: plaintext modulus %d below 2", p)
	}

	var (
		rp  rlwe.Parameters
		e   *rlwe.Encryptor
		mod uint64
	)
	switch mode {
	case engine.SmallDim:
		rp, e, mod = enc.params.paramsLWE, enc.encLWE, enc.params.QLWE()
	case engine.Fresh:
		rp, e, mod = enc.params.paramsBR, enc.encBR, enc.params.QBR()
	default:
		return nil, fmt.Errorf("encrypt: unknown mode %v", mode)
	}

	if p > mod {
		return nil, fmt.Errorf("encrypt: plaintext modulus %d exceeds ciphertext modulus %d", p, mod)
	}

	pm := int64(p)
	v := uint64(((int64(m) % pm) + pm) % pm)

	pt := rlwe.NewPlaintext(rp, rp.MaxLevel())
	pt.Value.Coeffs[0][0] = scaleRound(v, mod, p)
	if pt.IsNTT {
		rp.RingQ().NTT(pt.Value, pt.Value)
	}

	ct := rlwe.NewCiphertext(rp, 1, rp.MaxLevel())
	if err := e.Encrypt(pt, ct); err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	return &Ciphertext{Ciphertext: ct, Mode: mode}, nil
}
