// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"bytes"
	"net"
	"testing"

	"github.com/pion/logging"
	"github.com/stretchr/testify/require"

	"github.com/dtlspsk/client/internal/closer"
	"github.com/dtlspsk/client/pkg/crypto/ciphersuite"
	"github.com/dtlspsk/client/pkg/protocol"
	"github.com/dtlspsk/client/pkg/protocol/handshake"
	"github.com/dtlspsk/client/pkg/protocol/recordlayer"
)

type fakeConn struct {
	written [][]byte
}

func (f *fakeConn) ReadFrom(b []byte) (int, net.Addr, error) { select {} }
func (f *fakeConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	f.written = append(f.written, append([]byte{}, b...))
	return len(b), nil
}
func (f *fakeConn) Close() error { return nil }

func testEndpoint(t *testing.T) (*Endpoint, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	e := &Endpoint{
		conn:     conn,
		family:   FamilyIPv4,
		log:      logging.NewDefaultLoggerFactory().NewLogger("dtls-test"),
		resolver: net.DefaultResolver,
		closed:   closer.NewCloser(),
		refs:     1,
		sessions: map[sessionKey]*Session{},
		byAddr:   map[string]*Session{},
		actions:  make(chan func(), 8),
	}
	return e, conn
}

func decodeRecord(t *testing.T, raw []byte) (*recordlayer.RecordLayer, []byte) {
	t.Helper()
	var rl recordlayer.RecordLayer
	if err := rl.Unmarshal(raw); err != nil {
		t.Fatalf("Unmarshal record: %v", err)
	}
	return &rl, raw[recordlayer.FixedHeaderSize:]
}

func TestSessionStartSendsClientHello(t *testing.T) {
	e, conn := testEndpoint(t)
	remote := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5684}
	key := sessionKey{addr: remote.String(), identity: "id", psk: "psk"}
	s := newSession(e, key, remote, []byte("id"), []byte("psk"))

	require.NoError(t, s.start())
	require.Len(t, conn.written, 1)

	rl, _ := decodeRecord(t, conn.written[0])
	require.Equal(t, protocol.ContentTypeHandshake, rl.Header.ContentType)
	require.EqualValues(t, 0, rl.Header.Epoch)
	require.EqualValues(t, 0, rl.Header.SequenceNumber)
	hs, ok := rl.Content.(*handshake.Handshake)
	require.True(t, ok, "Content type: got %T, want *handshake.Handshake", rl.Content)
	require.Equal(t, handshake.TypeClientHello, hs.Message.Type())
	require.EqualValues(t, 1, s.writeSeq)
}

func TestSessionSendApplicationQueuesBeforeConnected(t *testing.T) {
	e, conn := testEndpoint(t)
	remote := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5684}
	key := sessionKey{addr: remote.String(), identity: "id", psk: "psk"}
	s := newSession(e, key, remote, []byte("id"), []byte("psk"))

	require.NoError(t, s.SendApplication([]byte("hello")))
	require.Empty(t, conn.written, "writes while not connected")
	require.Len(t, s.appQueue, 1)
}

func TestSessionSendApplicationQueueFull(t *testing.T) {
	e, _ := testEndpoint(t)
	remote := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5684}
	key := sessionKey{addr: remote.String(), identity: "id", psk: "psk"}
	s := newSession(e, key, remote, []byte("id"), []byte("psk"))

	for i := 0; i < maxAppDataPacketQueueSize; i++ {
		require.NoErrorf(t, s.SendApplication([]byte{byte(i)}), "SendApplication %d", i)
	}
	require.ErrorIs(t, s.SendApplication([]byte("overflow")), errAppQueueFull)
}

func TestSessionSendApplicationAfterConnected(t *testing.T) {
	e, conn := testEndpoint(t)
	remote := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5684}
	key := sessionKey{addr: remote.String(), identity: "id", psk: "psk"}
	s := newSession(e, key, remote, []byte("id"), []byte("psk"))
	s.connected = true
	s.writeCipher = &ciphersuite.Null{}

	require.NoError(t, s.SendApplication([]byte("hi")))
	require.Len(t, conn.written, 1)
	rl, _ := decodeRecord(t, conn.written[0])
	require.Equal(t, protocol.ContentTypeApplicationData, rl.Header.ContentType)
	ad, ok := rl.Content.(*protocol.ApplicationData)
	require.True(t, ok, "Content type: got %T", rl.Content)
	require.Equal(t, []byte("hi"), ad.Data)
}

func TestSessionTransmitChangeCipherSpecBumpsEpoch(t *testing.T) {
	e, conn := testEndpoint(t)
	remote := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5684}
	key := sessionKey{addr: remote.String(), identity: "id", psk: "psk"}
	s := newSession(e, key, remote, []byte("id"), []byte("psk"))

	suite := ciphersuite.NewCipherSuite(ciphersuite.TLS_PSK_WITH_AES_128_CBC_SHA)
	if err := suite.Init(bytes.Repeat([]byte{1}, 48), bytes.Repeat([]byte{2}, 32), bytes.Repeat([]byte{3}, 32)); err != nil {
		t.Fatal(err)
	}

	require.NoError(t, s.transmitChangeCipherSpec(suite))
	require.EqualValues(t, 1, s.writeEpoch)
	require.EqualValues(t, 0, s.writeSeq, "writeSeq after epoch bump")
	require.Same(t, suite, s.writeCipher, "writeCipher was not swapped to the negotiated suite")
	require.Len(t, conn.written, 1)
	rl, _ := decodeRecord(t, conn.written[0])
	require.EqualValues(t, 0, rl.Header.Epoch, "the ChangeCipherSpec record itself must be sent under the OLD epoch")
}

func TestSessionOnApplicationDataInvokesCallback(t *testing.T) {
	e, _ := testEndpoint(t)
	remote := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5684}
	key := sessionKey{addr: remote.String(), identity: "id", psk: "psk"}
	s := newSession(e, key, remote, []byte("id"), []byte("psk"))

	var got []byte
	s.onMessage = func(payload []byte) { got = payload }

	require.NoError(t, s.onApplicationData(&protocol.ApplicationData{Data: []byte("payload")}))
	require.Equal(t, []byte("payload"), got)
}

func TestSessionHandleRecordRoundTripsNullCipher(t *testing.T) {
	e, conn := testEndpoint(t)
	remote := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5684}
	key := sessionKey{addr: remote.String(), identity: "id", psk: "psk"}
	s := newSession(e, key, remote, []byte("id"), []byte("psk"))

	require.NoError(t, s.start())
	conn.written = nil

	hvr := &handshake.MessageHelloVerifyRequest{Version: protocol.Version1_0, Cookie: []byte{0x01, 0x02, 0x03}}
	hs := &handshake.Handshake{Header: handshake.Header{MessageSequence: 0}}
	hs.Message = hvr
	rl := &recordlayer.RecordLayer{Header: recordlayer.Header{Epoch: 0, SequenceNumber: 0, Version: protocol.Version1_0}, Content: hs}
	raw, err := rl.Marshal()
	require.NoError(t, err)

	require.NoError(t, s.handleRecord(raw))
	require.Len(t, conn.written, 1, "writes after HelloVerifyRequest (retried ClientHello)")
	require.Equal(t, stateClientHelloSent, s.fsm.state)
}
