/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/executor"
)

// Version of the forwarding engine.
var Version string

// BuildTime contains the timestamp of when the version was built.
var BuildTime string

func main() {
	core.Version = Version
	core.BuildTime = BuildTime

	// Parse command line options
	var shouldPrintVersion bool
	flag.BoolVar(&shouldPrintVersion, "version", false, "Print version and exit")
	flag.BoolVar(&shouldPrintVersion, "V", false, "Print version and exit (short)")
	config := new(executor.Config)
	flag.StringVar(&config.ConfigFile, "config", "", "Configuration file (TOML)")
	flag.StringVar(&config.CPUProfile, "cpu-profile", "", "Enable CPU profiling (output to specified file)")
	flag.StringVar(&config.MemProfile, "mem-profile", "", "Enable memory profiling (output to specified file)")
	flag.StringVar(&config.BlockProfile, "block-profile", "", "Enable block profiling (output to specified file)")
	flag.Parse()

	if shouldPrintVersion {
		fmt.Println("YaNFD forwarding engine")
		fmt.Println("Version " + core.Version + " (Built " + core.BuildTime + ")")
		fmt.Println("Copyright (C) 2020-2021 Eric Newberry")
		fmt.Println("Released under the terms of the MIT License")
		return
	}

	engine, err := executor.NewEngine(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(1)
	}
	if err := engine.Start(); err != nil {
		core.LogFatal("Main", "Unable to start: ", err)
	}

	// Set up signal handler channel and wait for interrupt
	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)
	receivedSig := <-sigChannel
	core.LogInfo("Main", "Received signal ", receivedSig, " - exiting")

	engine.Stop()
}
