// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package profiling wraps runtime profiling for estimator runs.
package profiling

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/profile"
)

// Mode selects the profile to record.
type Mode string

const (
	None  Mode = ""
	CPU   Mode = "cpu"
	Mem   Mode = "mem"
	Block Mode = "block"
	Mutex Mode = "mutex"
	Trace Mode = "trace"
)

// ParseMode validates a profile name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case None, CPU, Mem, Block, Mutex, Trace:
		return m, nil
	default:
		return None, fmt.Errorf("unknown profile %q", s)
	}
}

// Stopper ends a profile and writes it out.
type Stopper interface {
	Stop()
}

type nop struct{}

func (nop) Stop() {}

// Start begins recording mode into dir. With mode None it returns a no-op
// stopper. The caller must call Stop before the process exits.
func Start(mode Mode, dir string) (Stopper, error) {
	var opt func(*profile.Profile)
	switch mode {
	case None:
		return nop{}, nil
	case CPU:
		opt = profile.CPUProfile
	case Mem:
		opt = profile.MemProfile
	case Block:
		opt = profile.BlockProfile
	case Mutex:
		opt = profile.MutexProfile
	case Trace:
		opt = profile.TraceProfile
	default:
		return nil, fmt.Errorf("unknown profile %q", string(mode))
	}

	opts := []func(*profile.Profile){opt, profile.NoShutdownHook, profile.Quiet}
	if dir != "" {
		opts = append(opts, profile.ProfilePath(dir))
	}
	return profile.Start(opts...), nil
}

// MemStats is a snapshot of heap usage in MiB.
type MemStats struct {
	AllocMB      uint64
	TotalAllocMB uint64
	SysMB        uint64
	NumGC        uint32
	HeapObjects  uint64
}

// ReadMemStats snapshots the runtime memory statistics.
func ReadMemStats() MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemStats{
		AllocMB:      m.Alloc >> 20,
		TotalAllocMB: m.TotalAlloc >> 20,
		SysMB:        m.Sys >> 20,
		NumGC:        m.NumGC,
		HeapObjects:  m.HeapObjects,
	}
}

func (m MemStats) String() string {
	return fmt.Sprintf("alloc=%dMB total=%dMB sys=%dMB gc=%d objects=%d",
		m.AllocMB, m.TotalAllocMB, m.SysMB, m.NumGC, m.HeapObjects)
}
