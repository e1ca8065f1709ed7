// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package binfhe

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/luxfi/lattice/v7/core/rgsw/blindrot"
	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/luxfi/binfhe-estimator/engine"
)

// ========== Ciphertext Serialization ==========

// MarshalBinary serializes a ciphertext as its mode followed by the RLWE
// ciphertext.
func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, uint8(ct.Mode)); err != nil {
		return nil, err
	}
	if err := writeBlob(&buf, ct.Ciphertext); err != nil {
		return nil, fmt.Errorf("serialize ciphertext: %w", err)
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary deserializes a ciphertext from binary format
func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	buf := bytes.NewReader(data)

	var mode uint8
	if err := binary.Read(buf, binary.LittleEndian, &mode); err != nil {
		return err
	}
	ct.Mode = engine.Mode(mode)

	blob, err := readBlob(buf)
	if err != nil {
		return fmt.Errorf("deserialize ciphertext: %w", err)
	}

	ct.Ciphertext = new(rlwe.Ciphertext)
	return ct.Ciphertext.UnmarshalBinary(blob)
}

// ========== Secret Key Serialization ==========

// MarshalBinary serializes the secret key to binary format
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	if err := writeBlob(&buf, sk.SKLWE); err != nil {
		return nil, fmt.Errorf("serialize SKLWE: %w", err)
	}
	if err := writeBlob(&buf, sk.SKBR); err != nil {
		return nil, fmt.Errorf("serialize SKBR: %w", err)
	}
	if err := writeBlob(&buf, sk.SKExt); err != nil {
		return nil, fmt.Errorf("serialize SKExt: %w", err)
	}

	return buf.Bytes(), nil
}

// ========== Bootstrap Key Serialization ==========

// marshalRefreshKey serializes the blind rotation key as a count followed by
// every RGSW ciphertext and then every automorphism key.
func marshalRefreshKey(brk blindrot.MemBlindRotationEvaluationKeySet) ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(brk.BlindRotationKeys))); err != nil {
		return nil, err
	}
	for i, key := range brk.BlindRotationKeys {
		if err := writeBlob(&buf, key); err != nil {
			return nil, fmt.Errorf("blind rotation key %d: %w", i, err)
		}
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(brk.AutomorphismKeys))); err != nil {
		return nil, err
	}
	for i, key := range brk.AutomorphismKeys {
		if err := writeBlob(&buf, key); err != nil {
			return nil, fmt.Errorf("automorphism key %d: %w", i, err)
		}
	}

	return buf.Bytes(), nil
}

// MarshalBinary serializes the refreshing key followed by the switching key.
func (bsk *BootstrapKey) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	brk, err := marshalRefreshKey(bsk.BRK)
	if err != nil {
		return nil, fmt.Errorf("serialize BRK: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(brk))); err != nil {
		return nil, err
	}
	buf.Write(brk)

	if err := writeBlob(&buf, bsk.KSK); err != nil {
		return nil, fmt.Errorf("serialize KSK: %w", err)
	}

	return buf.Bytes(), nil
}

func writeBlob(w io.Writer, m encoding.BinaryMarshaler) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(data))); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func readBlob(r *bytes.Reader) ([]byte, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("blob of %d bytes exceeds remaining %d", n, r.Len())
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
