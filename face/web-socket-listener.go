/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
)

// RouteRegistrar accepts the prefixes a newly connected application asks to be reachable under.
type RouteRegistrar interface {
	InsertNextHop(name ndn.Name, nexthop uint64, cost uint64)
}

// WebSocketListenerConfig contains WebSocketListener configuration.
type WebSocketListenerConfig struct {
	Bind string
	Port uint16
}

// URL returns the address the listener serves on.
func (cfg WebSocketListenerConfig) URL() *url.URL {
	addr := net.JoinHostPort(cfg.Bind, strconv.FormatUint(uint64(cfg.Port), 10))
	return &url.URL{Scheme: "ws", Host: addr}
}

func (cfg WebSocketListenerConfig) String() string {
	return "WebSocket listener at " + cfg.URL().String()
}

// WebSocketListener listens for incoming WebSocket connections and creates a face for each one.
// Connecting with one or more "prefix" query parameters registers a route toward the new face for each prefix.
type WebSocketListener struct {
	server   http.Server
	upgrader websocket.Upgrader
	localURL *url.URL
	receiver Receiver
	faces    *Table
	routes   RouteRegistrar

	wg sync.WaitGroup
}

// NewWebSocketListener creates a listener whose faces deliver packets to receiver and are registered in faces.
func NewWebSocketListener(cfg WebSocketListenerConfig, receiver Receiver, faces *Table, routes RouteRegistrar) *WebSocketListener {
	localURL := cfg.URL()
	l := &WebSocketListener{
		server: http.Server{Addr: localURL.Host},
		upgrader: websocket.Upgrader{
			WriteBufferPool: &sync.Pool{},
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		localURL: localURL,
		receiver: receiver,
		faces:    faces,
		routes:   routes,
	}
	l.server.Handler = http.HandlerFunc(l.handler)
	return l
}

func (l *WebSocketListener) String() string {
	return "WebSocketListener, " + l.localURL.String()
}

// Handler returns the HTTP handler that upgrades connections to faces.
func (l *WebSocketListener) Handler() http.Handler {
	return l.server.Handler
}

// Run serves connections until Close is called.
func (l *WebSocketListener) Run() error {
	core.LogInfo(l, "Listening")
	err := l.server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (l *WebSocketListener) handler(w http.ResponseWriter, r *http.Request) {
	var prefixes []ndn.Name
	for _, prefix := range r.URL.Query()["prefix"] {
		name, err := ndn.NameFromString(prefix)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		prefixes = append(prefixes, name)
	}

	c, e := l.upgrader.Upgrade(w, r, nil)
	if e != nil {
		return
	}

	newTransport := NewWebSocketTransport(c, l.receiver, l.faces)
	faceID := l.faces.Add(newTransport)
	core.LogInfo(l, "Accepting new WebSocket face ", newTransport)
	for _, prefix := range prefixes {
		l.routes.InsertNextHop(prefix, faceID, 0)
		core.LogDebug(l, "Registered prefix ", prefix, " toward FaceID=", faceID)
	}

	l.wg.Add(1)
	defer l.wg.Done()
	newTransport.Run()
}

// Close stops the listener and closes every face it created.
func (l *WebSocketListener) Close() {
	core.LogInfo(l, "Stopping listener")
	l.server.Shutdown(context.TODO())
	for _, f := range l.faces.GetAll() {
		if transport, ok := f.(*WebSocketTransport); ok {
			transport.Close()
		}
	}
	l.wg.Wait()
}
