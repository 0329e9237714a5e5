/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import "github.com/named-data/yanfd-engine/core"

// webSocketEnabled determines whether the daemon accepts WebSocket faces.
var webSocketEnabled = true

// webSocketConfig is the configuration of the WebSocket listener.
var webSocketConfig = WebSocketListenerConfig{Bind: "", Port: 9696}

// Configure configures the face system.
func Configure() error {
	webSocketEnabled = core.GetConfigBoolDefault("faces.websocket.enabled", true)
	webSocketConfig = WebSocketListenerConfig{
		Bind: core.GetConfigStringDefault("faces.websocket.bind", ""),
		Port: core.GetConfigUint16Default("faces.websocket.port", 9696),
	}
	return nil
}

// WebSocketEnabled returns whether the WebSocket listener should be started.
func WebSocketEnabled() bool {
	return webSocketEnabled
}

// WebSocketConfig returns the configured WebSocket listener settings.
func WebSocketConfig() WebSocketListenerConfig {
	return webSocketConfig
}
