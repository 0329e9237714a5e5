/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"fmt"
	"math"
	"time"

	"github.com/pelletier/go-toml"
)

var config *toml.Tree

// LoadConfig loads the configuration from the specified TOML file.
func LoadConfig(file string) error {
	tree, err := toml.LoadFile(file)
	if err != nil {
		return fmt.Errorf("unable to load configuration file %s: %w", file, err)
	}
	config = tree
	return nil
}

// LoadConfigString loads the configuration from a TOML document.
func LoadConfigString(document string) error {
	tree, err := toml.Load(document)
	if err != nil {
		return fmt.Errorf("unable to parse configuration: %w", err)
	}
	config = tree
	return nil
}

// ResetConfig discards any loaded configuration, so that every getter returns its default.
func ResetConfig() {
	config = nil
}

func getConfigValue(key string) interface{} {
	if config == nil {
		return nil
	}
	return config.Get(key)
}

// GetConfigBoolDefault returns the boolean configuration value at the specified key or the specified default value if it does not exist.
func GetConfigBoolDefault(key string, def bool) bool {
	val, ok := getConfigValue(key).(bool)
	if !ok {
		return def
	}
	return val
}

// GetConfigIntDefault returns the integer configuration value at the specified key or the specified default value if it does not exist.
func GetConfigIntDefault(key string, def int) int {
	val, ok := getConfigValue(key).(int64)
	if ok && val >= math.MinInt32 && val <= math.MaxInt32 {
		return int(val)
	}
	return def
}

// GetConfigUint16Default returns the integer configuration value at the specified key or the specified default value if it does not exist.
func GetConfigUint16Default(key string, def uint16) uint16 {
	val, ok := getConfigValue(key).(int64)
	if ok && val > 0 && val <= math.MaxUint16 {
		return uint16(val)
	}
	return def
}

// GetConfigStringDefault returns the string configuration value at the specified key or the specified default value if it does not exist.
func GetConfigStringDefault(key string, def string) string {
	val, ok := getConfigValue(key).(string)
	if !ok {
		return def
	}
	return val
}

// GetConfigDurationDefault reads an integer number of milliseconds at the specified key.
func GetConfigDurationDefault(key string, def time.Duration) time.Duration {
	val, ok := getConfigValue(key).(int64)
	if !ok {
		return def
	}
	return time.Duration(val) * time.Millisecond
}

// GetConfigArrayString returns the configuration array value at the specified key or nil if it does not exist.
func GetConfigArrayString(key string) []string {
	if config == nil {
		return nil
	}
	switch array := config.GetArray(key).(type) {
	case []string:
		return array
	case []interface{}:
		// Empty arrays come back untyped
		ret := make([]string, 0, len(array))
		for _, elem := range array {
			if s, ok := elem.(string); ok {
				ret = append(ret, s)
			}
		}
		return ret
	}
	return nil
}

// CheckConfigNonNegative returns an error if value is negative.
func CheckConfigNonNegative(key string, value int64) error {
	if value < 0 {
		return fmt.Errorf("%s=%d: %w", key, value, ErrConfigRange)
	}
	return nil
}

// CheckConfigEnum returns an error if value is not one of the accepted options.
func CheckConfigEnum(key string, value string, accepted ...string) error {
	for _, option := range accepted {
		if value == option {
			return nil
		}
	}
	return fmt.Errorf("%s=%q (accepted: %v): %w", key, value, accepted, ErrConfigEnum)
}
