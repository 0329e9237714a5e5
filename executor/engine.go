/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/face"
	"github.com/named-data/yanfd-engine/fw"
	"github.com/named-data/yanfd-engine/sched"
	"github.com/named-data/yanfd-engine/table"
)

// Config holds the command-line settings of the engine.
type Config struct {
	// ConfigFile is the TOML file to load. Defaults are used if empty.
	ConfigFile string

	CPUProfile   string
	MemProfile   string
	BlockProfile string
}

// Engine is a running forwarder: one forwarding thread on the wall clock, fed by the WebSocket listener.
type Engine struct {
	config        *Config
	profiler      *Profiler
	faces         *face.Table
	scheduler     *sched.WallScheduler
	thread        *fw.Thread
	listener      *face.WebSocketListener
	statsInterval time.Duration
}

// NewEngine loads and validates the configuration, then builds the forwarder. Every invalid setting is reported
// in the returned error.
func NewEngine(config *Config) (*Engine, error) {
	if config.ConfigFile != "" {
		if err := core.LoadConfig(config.ConfigFile); err != nil {
			return nil, err
		}
	}
	core.InitializeLogger()

	if err := Configure(); err != nil {
		return nil, err
	}

	e := new(Engine)
	e.config = config
	e.profiler = NewProfiler(config)
	e.faces = face.NewTable()
	e.statsInterval = statsInterval

	opts := fw.DefaultOptions()
	opts.Live = true
	var thread *fw.Thread
	e.scheduler = sched.NewWallScheduler(func(callback func()) {
		thread.Post(callback)
	})
	thread = fw.NewThread(0, e.scheduler, e.faces, opts)
	e.thread = thread

	if face.WebSocketEnabled() {
		e.listener = face.NewWebSocketListener(face.WebSocketConfig(), thread, e.faces, thread.FIB())
	}
	return e, nil
}

// Configure applies the loaded configuration to every package, returning all invalid settings at once.
func Configure() error {
	var result *multierror.Error
	for _, configure := range []func() error{configureEngine, table.Configure, face.Configure, fw.Configure} {
		if err := configure(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (e *Engine) String() string {
	return "Engine"
}

// Thread returns the forwarding thread of the engine.
func (e *Engine) Thread() *fw.Thread {
	return e.thread
}

// Faces returns the face table of the engine.
func (e *Engine) Faces() *face.Table {
	return e.faces
}

// Start starts profiling, the forwarding thread, and the listener.
func (e *Engine) Start() error {
	if err := e.profiler.Start(); err != nil {
		return err
	}
	core.StartTimestamp = time.Now()
	core.LogInfo(e, "Starting forwarder ", e.thread, " with ", e.thread.Admission())

	go e.thread.Run()

	if e.listener != nil {
		go func() {
			if err := e.listener.Run(); err != nil {
				core.LogError(e.listener, "Unable to serve: ", err)
			}
		}()
	}

	if e.statsInterval > 0 {
		e.scheduler.Schedule(e.statsInterval, e.logStats)
	}
	return nil
}

func (e *Engine) logStats() {
	counters := e.thread.Counters().Snapshot()
	core.LogInfo(e, "PIT=", counters.NPitEntries, " CS=", counters.NCsEntries,
		" Interests=", counters.NInInterests, "/", counters.NOutInterests,
		" Data=", counters.NInData, "/", counters.NOutData,
		" Nacks=", counters.NInNacks, "/", counters.NOutNacks,
		" CsHits=", counters.NCsHits, " Satisfied=", counters.NSatisfiedInterests,
		" Unsatisfied=", counters.NUnsatisfiedInterests,
		" Deferred=", counters.NDeferredInterests, "/", counters.NDeferredData)
	e.scheduler.Schedule(e.statsInterval, e.logStats)
}

// Stop closes the listener and its faces, then stops the forwarding thread and writes any profiles.
func (e *Engine) Stop() {
	if e.listener != nil {
		e.listener.Close()
	}

	e.thread.TellToQuit()
	<-e.thread.HasQuit

	e.profiler.Stop()
	core.LogInfo(e, "Stopped after ", time.Since(core.StartTimestamp).Round(time.Second))
}
