/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/apex/log/handlers/discard"
	"github.com/named-data/yanfd-engine/core"
	"github.com/named-data/yanfd-engine/face"
	"github.com/named-data/yanfd-engine/ndn"
	"github.com/named-data/yanfd-engine/sched"
	"github.com/named-data/yanfd-engine/table"
)

func TestMain(m *testing.M) {
	core.InitializeLoggerWithHandler(discard.New())
	os.Exit(m.Run())
}

// testFace records everything the forwarder sends on it.
type testFace struct {
	faceID   uint64
	scope    ndn.Scope
	linkType ndn.LinkType

	interests []*ndn.Interest
	data      []*ndn.Data
	nacks     []*ndn.Nack
}

func (f *testFace) String() string {
	return "testFace-" + strconv.FormatUint(f.faceID, 10)
}

func (f *testFace) FaceID() uint64 {
	return f.faceID
}

func (f *testFace) SetFaceID(faceID uint64) {
	f.faceID = faceID
}

func (f *testFace) Scope() ndn.Scope {
	return f.scope
}

func (f *testFace) LinkType() ndn.LinkType {
	return f.linkType
}

func (f *testFace) SendInterest(packet *ndn.PendingPacket) {
	f.interests = append(f.interests, packet.Interest)
}

func (f *testFace) SendData(packet *ndn.PendingPacket) {
	f.data = append(f.data, packet.Data)
}

func (f *testFace) SendNack(packet *ndn.PendingPacket) {
	f.nacks = append(f.nacks, packet.Nack)
}

func (f *testFace) Close() {}

func (f *testFace) reset() {
	f.interests = nil
	f.data = nil
	f.nacks = nil
}

type harness struct {
	scheduler *sched.VirtualScheduler
	faces     *face.Table
	thread    *Thread
}

func testOptions() Options {
	return Options{
		DefaultStrategy:       BestRouteName,
		CsCapacity:            16,
		CsServe:               true,
		DeadNonceListLifetime: 6 * time.Second,
		UnsolicitedDataPolicy: DropAllUnsolicited{},
		Admission:             NoAdmission{},
		AdmissionHold:         60 * time.Second,
		AdmissionTick:         time.Second,
	}
}

func newHarness(opts Options) *harness {
	h := new(harness)
	h.scheduler = sched.NewVirtualScheduler()
	h.faces = face.NewTable()
	h.thread = NewThread(0, h.scheduler, h.faces, opts)
	return h
}

func (h *harness) addFace(scope ndn.Scope, linkType ndn.LinkType) *testFace {
	f := &testFace{scope: scope, linkType: linkType}
	h.faces.Add(f)
	return f
}

func (h *harness) addNetworkFace() *testFace {
	return h.addFace(ndn.NonLocal, ndn.PointToPoint)
}

func (h *harness) route(prefix string, f *testFace, cost uint64) {
	h.thread.FIB().InsertNextHop(ndn.MustNameFromString(prefix), f.FaceID(), cost)
}

func makeInterest(name string, nonce uint32) *ndn.Interest {
	interest := ndn.NewInterest(ndn.MustNameFromString(name))
	interest.Nonce = nonce
	return interest
}

func makeData(name string, freshness time.Duration) *ndn.Data {
	data := ndn.NewData(ndn.MustNameFromString(name), []byte("content"))
	data.FreshnessPeriod = freshness
	return data
}

func (h *harness) sendInterest(f *testFace, interest *ndn.Interest) {
	h.thread.HandleInterest(ndn.NewInterestPacket(interest, f.FaceID()))
}

func (h *harness) sendData(f *testFace, data *ndn.Data) {
	h.thread.HandleData(ndn.NewDataPacket(data, f.FaceID()))
}

// sendNack answers the Interest the forwarder sent on f with a Nack.
func (h *harness) sendNack(f *testFace, interest *ndn.Interest, reason ndn.NackReason) {
	h.thread.HandleNack(ndn.NewNackPacket(ndn.NewNack(interest.Clone(), reason), f.FaceID()))
}

func (h *harness) findEntry(name string) *table.PitEntry {
	for _, entry := range h.thread.PitCS().Entries() {
		if entry.Name.Equal(ndn.MustNameFromString(name)) {
			return entry
		}
	}
	return nil
}

// settle runs the scheduler until the current instant has nothing left to do.
func (h *harness) settle() {
	h.scheduler.RunFor(0)
}
