// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"context"
	"fmt"

	"github.com/luxfi/binfhe-estimator/engine"
	"github.com/luxfi/binfhe-estimator/internal/storage"
)

// Sizes are serialized byte lengths of the run's key material.
type Sizes struct {
	RefreshKey int `json:"bootstrapping_key"`
	SwitchKey  int `json:"key_switching_key"`
	Ciphertext int `json:"ciphertext"`
}

// Artifacts are the storage handles of the serialized key material.
type Artifacts struct {
	RefreshKey storage.Handle `json:"bootstrapping_key"`
	SwitchKey  storage.Handle `json:"key_switching_key"`
	Ciphertext storage.Handle `json:"ciphertext"`
}

// Instrument serializes the refreshing key, the switching key and one SmallDim
// ciphertext under p. With a non-nil store the blobs are also saved and their
// handles returned.
func Instrument(ctx context.Context, keys *KeyBundle, p uint64, store storage.Storage) (Sizes, *Artifacts, error) {
	var sizes Sizes

	ct, err := keys.Context.Encrypt(keys.SecretKey, 1, engine.SmallDim, p)
	if err != nil {
		return sizes, nil, stageError(StageInstrumentation, -1, err)
	}

	items := []struct {
		name   string
		obj    any
		size   *int
		handle func(*Artifacts) *storage.Handle
	}{
		{"refresh key", keys.BootstrapKey.RefreshKey(), &sizes.RefreshKey, func(a *Artifacts) *storage.Handle { return &a.RefreshKey }},
		{"switch key", keys.BootstrapKey.SwitchKey(), &sizes.SwitchKey, func(a *Artifacts) *storage.Handle { return &a.SwitchKey }},
		{"ciphertext", ct, &sizes.Ciphertext, func(a *Artifacts) *storage.Handle { return &a.Ciphertext }},
	}

	var artifacts *Artifacts
	if store != nil {
		artifacts = new(Artifacts)
	}

	for _, it := range items {
		data, err := keys.Context.Serialize(it.obj)
		if err != nil {
			return sizes, nil, stageError(StageInstrumentation, -1, fmt.Errorf("serialize %s: %w", it.name, err))
		}
		*it.size = len(data)

		if store == nil {
			continue
		}
		h, err := store.Store(ctx, data)
		if err != nil {
			return sizes, nil, stageError(StageInstrumentation, -1, fmt.Errorf("store %s: %w", it.name, err))
		}
		*it.handle(artifacts) = h
	}

	return sizes, artifacts, nil
}
