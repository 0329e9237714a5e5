/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/named-data/yanfd-engine/core"
)

// Profiler writes the CPU, heap, and blocking profiles requested on the command line.
type Profiler struct {
	config  *Config
	cpuFile *os.File
	block   *pprof.Profile
}

// NewProfiler creates a profiler for the output files named in config.
func NewProfiler(config *Config) *Profiler {
	return &Profiler{config: config}
}

func (p *Profiler) String() string {
	return "Profiler"
}

// Start begins CPU and block profiling.
func (p *Profiler) Start() error {
	if p.config.CPUProfile != "" {
		cpuFile, err := os.Create(p.config.CPUProfile)
		if err != nil {
			return fmt.Errorf("unable to open output file for CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			cpuFile.Close()
			return fmt.Errorf("unable to start CPU profile: %w", err)
		}
		p.cpuFile = cpuFile
		core.LogInfo(p, "Profiling CPU - outputting to ", p.config.CPUProfile)
	}

	if p.config.BlockProfile != "" {
		core.LogInfo(p, "Profiling blocking operations - outputting to ", p.config.BlockProfile)
		runtime.SetBlockProfileRate(1)
		p.block = pprof.Lookup("block")
	}
	return nil
}

// Stop finishes the CPU profile and writes the heap and block profiles.
func (p *Profiler) Stop() {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		p.cpuFile = nil
	}

	if p.config.MemProfile != "" {
		runtime.GC()
		if err := writeProfile(p.config.MemProfile, pprof.WriteHeapProfile); err != nil {
			core.LogError(p, "Unable to write memory profile: ", err)
		}
	}

	if p.block != nil {
		if err := writeProfile(p.config.BlockProfile, func(w io.Writer) error {
			return p.block.WriteTo(w, 0)
		}); err != nil {
			core.LogError(p, "Unable to write block profile: ", err)
		}
		runtime.SetBlockProfileRate(0)
		p.block = nil
	}
}

func writeProfile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
