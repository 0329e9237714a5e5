/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Link512/stealthpool"
	"github.com/gorilla/websocket"
	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/ndn/tlv"
)

// maxPoolBlockCnt is the number of receive buffers allocated per WebSocket face.
const maxPoolBlockCnt = 16

// WebSocketTransport communicates with web applications via WebSocket.
// Each binary message carries one TLV frame.
type WebSocketTransport struct {
	faceBase
	c          *websocket.Conn
	remoteAddr string
	receiver   Receiver
	faces      *Table

	writeMutex sync.Mutex
	closeOnce  sync.Once
	closed     int32

	nInBytes  uint64
	nOutBytes uint64
}

var _ Face = &WebSocketTransport{}

// NewWebSocketTransport creates a WebSocket face on an upgraded connection. Received packets go to receiver,
// and the face removes itself from faces when the connection closes.
func NewWebSocketTransport(c *websocket.Conn, receiver Receiver, faces *Table) *WebSocketTransport {
	t := &WebSocketTransport{c: c, receiver: receiver, faces: faces}
	t.remoteAddr = c.RemoteAddr().String()
	t.makeFaceBase(ndn.NonLocal, ndn.PointToPoint)
	return t
}

func (t *WebSocketTransport) String() string {
	return "WebSocketTransport, FaceID=" + strconv.FormatUint(t.FaceID(), 10) + ", RemoteAddr=" + t.remoteAddr
}

// Counters returns the number of bytes received and sent on the face.
func (t *WebSocketTransport) Counters() (nInBytes uint64, nOutBytes uint64) {
	return atomic.LoadUint64(&t.nInBytes), atomic.LoadUint64(&t.nOutBytes)
}

// SendInterest sends an Interest to the web application.
func (t *WebSocketTransport) SendInterest(packet *ndn.PendingPacket) {
	t.sendPacket(packet)
}

// SendData sends a Data packet to the web application.
func (t *WebSocketTransport) SendData(packet *ndn.PendingPacket) {
	t.sendPacket(packet)
}

// SendNack sends a Nack to the web application.
func (t *WebSocketTransport) SendNack(packet *ndn.PendingPacket) {
	t.sendPacket(packet)
}

func (t *WebSocketTransport) sendPacket(packet *ndn.PendingPacket) {
	if atomic.LoadInt32(&t.closed) != 0 {
		return
	}
	// Only the forwarder's own tags are meaningful to the remote end
	outgoing := *packet
	outgoing.IncomingFaceID = nil
	outgoing.NextHopFaceID = nil
	frame, err := ndn.EncodeFrame(&outgoing)
	if err != nil {
		core.LogWarn(t, "Unable to encode frame: ", err, " - DROP")
		return
	}
	t.sendFrame(frame)
}

func (t *WebSocketTransport) sendFrame(frame []byte) {
	if len(frame) > tlv.MaxNDNPacketSize {
		core.LogWarn(t, "Attempted to send frame larger than MTU - DROP")
		return
	}

	core.LogTrace(t, "Sending frame of size ", len(frame))
	t.writeMutex.Lock()
	e := t.c.WriteMessage(websocket.BinaryMessage, frame)
	t.writeMutex.Unlock()
	if e != nil {
		core.LogWarn(t, "Unable to send on socket - DROP and Face DOWN")
		t.Close()
		return
	}
	atomic.AddUint64(&t.nOutBytes, uint64(len(frame)))
}

// Run receives frames until the connection fails or the face is closed.
func (t *WebSocketTransport) Run() {
	core.LogTrace(t, "Starting receive thread")
	defer t.Close()

	// Frames are copied into pooled blocks so the connection's read buffer can be reused right away
	pool, err := stealthpool.New(maxPoolBlockCnt, stealthpool.WithBlockSize(tlv.MaxNDNPacketSize))
	if err != nil {
		core.LogError(t, "Failed to allocate stealthpool: ", err)
		return
	}
	defer pool.Close()

	for {
		mt, message, e := t.c.ReadMessage()
		if e != nil {
			if atomic.LoadInt32(&t.closed) == 0 {
				core.LogInfo(t, "Unable to read from socket (", e, ") - Face DOWN")
			}
			return
		}

		if mt != websocket.BinaryMessage {
			core.LogWarn(t, "Ignored non-binary message")
			continue
		}

		core.LogTrace(t, "Receive of size ", len(message))
		atomic.AddUint64(&t.nInBytes, uint64(len(message)))

		if len(message) > tlv.MaxNDNPacketSize {
			core.LogWarn(t, "Received frame larger than MTU - DROP")
			continue
		}
		t.handleIncomingFrame(pool, message)
	}
}

func (t *WebSocketTransport) handleIncomingFrame(pool *stealthpool.Pool, message []byte) {
	block, err := pool.Get()
	if err != nil {
		core.LogWarn(t, "No receive buffer available (", err, ") - DROP")
		return
	}
	defer pool.Return(block)

	n := copy(block, message)
	packet, err := ndn.DecodeFrame(block[:n])
	if err != nil {
		core.LogWarn(t, "Unable to decode frame (", err, ") - DROP")
		return
	}
	if t.Scope() != ndn.Local && packet.NextHopFaceID != nil {
		// Only local applications may choose the outgoing face
		core.LogDebug(t, "Ignoring NextHopFaceId from non-local peer")
		packet.NextHopFaceID = nil
	}
	faceID := t.FaceID()
	packet.IncomingFaceID = &faceID
	deliver(t.receiver, packet)
}

// Close closes the connection and removes the face from the face table.
func (t *WebSocketTransport) Close() {
	t.closeOnce.Do(func() {
		atomic.StoreInt32(&t.closed, 1)
		core.LogInfo(t, "Closing WebSocket connection")
		t.c.Close()
		if t.faces != nil {
			t.faces.Remove(t.FaceID())
		}
	})
}
