// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package binfhe

import (
	"fmt"

	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/luxfi/binfhe-estimator/engine"
)

// Decryptor decrypts FHE ciphertexts modulo p
type Decryptor struct {
	params Parameters
	decLWE *rlwe.Decryptor
	decBR  *rlwe.Decryptor
}

// NewDecryptor creates a new decryptor from secret key
func NewDecryptor(params Parameters, sk *SecretKey) *Decryptor {
	return &Decryptor{
		params: params,
		decLWE: rlwe.NewDecryptor(params.paramsLWE, sk.SKLWE),
		decBR:  rlwe.NewDecryptor(params.paramsBR, sk.SKExt),
	}
}

// Phase returns the constant coefficient of the decrypted plaintext and the
// modulus it lives in.
func (dec *Decryptor) Phase(ct *Ciphertext) (phase, modulus uint64, err error) {
	var (
		rp rlwe.Parameters
		d  *rlwe.Decryptor
	)
	switch ct.Mode {
	case engine.SmallDim:
		rp, d, modulus = dec.params.paramsLWE, dec.decLWE, dec.params.QLWE()
	case engine.Fresh:
		rp, d, modulus = dec.params.paramsBR, dec.decBR, dec.params.QBR()
	default:
		return 0, 0, fmt.Errorf("decrypt: unknown mode %v", ct.Mode)
	}

	if ct.Value[0].N() != rp.N() {
		return 0, 0, fmt.Errorf("decrypt: ciphertext ring degree %d does not match %v ring degree %d", ct.Value[0].N(), ct.Mode, rp.N())
	}

	pt := rlwe.NewPlaintext(rp, ct.Level())
	d.Decrypt(ct.Ciphertext, pt)

	if pt.IsNTT {
		rp.RingQ().AtLevel(ct.Level()).INTT(pt.Value, pt.Value)
	}

	return pt.Value.Coeffs[0][0], modulus, nil
}

// Decrypt returns round(p*phase/q) mod p.
func (dec *Decryptor) Decrypt(ct *Ciphertext, p uint64) (int, error) {
	if p < 2 {
		return 0, fmt.Errorf("decrypt: plaintext modulus %d below 2", p)
	}

	phase, q, err := dec.Phase(ct)
	if err != nil {
		return 0, err
	}

	return int(scaleRound(p, phase, q) % p), nil
}

// Noise returns the signed distance between the phase of ct and the encoding
// of its decryption.
func (dec *Decryptor) Noise(ct *Ciphertext, p uint64) (float64, error) {
	if p < 2 {
		return 0, fmt.Errorf("noise: plaintext modulus %d below 2", p)
	}

	phase, q, err := dec.Phase(ct)
	if err != nil {
		return 0, err
	}

	m := scaleRound(p, phase, q) % p
	want := scaleRound(m, q, p)
	return float64(centered((phase+q-want)%q, q)), nil
}
