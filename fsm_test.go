// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dtlspsk/client/pkg/crypto/ciphersuite"
	"github.com/dtlspsk/client/pkg/crypto/prf"
	"github.com/dtlspsk/client/pkg/protocol"
	"github.com/dtlspsk/client/pkg/protocol/handshake"
)

func fixedRNG(seed byte) *bytes.Reader {
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = seed + byte(i)
	}
	return bytes.NewReader(buf)
}

// driveHandshake runs a full client FSM through to Connected against a
// synthetic server, returning the FSM for post-hoc assertions.
func driveHandshake(t *testing.T, identity, psk []byte) *handshakeFSM {
	t.Helper()

	f := newHandshakeFSM(identity, psk)
	f.rng = fixedRNG(0x01)

	if _, err := f.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if f.state != stateClientHelloSent {
		t.Fatalf("state after Start: got %v, want stateClientHelloSent", f.state)
	}

	cipherSuiteID := uint16(ciphersuite.TLS_PSK_WITH_AES_128_CBC_SHA)
	serverRandom, err := handshake.NewClientRandom(time.Now(), fixedRNG(0x02))
	if err != nil {
		t.Fatalf("server random: %v", err)
	}
	shello := &handshake.MessageServerHello{
		Version:           protocol.Version1_0,
		Random:            serverRandom,
		SessionID:         []byte{},
		CipherSuiteID:     &cipherSuiteID,
		CompressionMethod: &protocol.CompressionMethod{ID: protocol.CompressionMethodNull},
	}
	shelloRaw := mustMarshalFlight(t, f, shello)
	if err := f.HandleServerHello(shelloRaw, shello); err != nil {
		t.Fatalf("HandleServerHello: %v", err)
	}

	shdRaw := mustMarshalFlight(t, f, &handshake.MessageServerHelloDone{})
	ckeRaw, masterSecret, err := f.HandleServerHelloDone(shdRaw)
	if err != nil {
		t.Fatalf("HandleServerHelloDone: %v", err)
	}
	if len(ckeRaw) == 0 {
		t.Fatal("HandleServerHelloDone returned empty ClientKeyExchange")
	}
	if len(masterSecret) != 48 {
		t.Fatalf("master secret length: got %d, want 48", len(masterSecret))
	}

	if _, _, err := f.BuildFinished(); err != nil {
		t.Fatalf("BuildFinished: %v", err)
	}
	if f.state != stateFinishedSent {
		t.Fatalf("state after BuildFinished: got %v, want stateFinishedSent", f.state)
	}

	expected, err := prf.VerifyDataServer(f.masterSecret, f.transcript)
	require.NoError(t, err)
	require.NoError(t, f.HandleServerFinished(&handshake.MessageFinished{VerifyData: expected}))
	require.Equal(t, stateConnected, f.state)

	return f
}

func mustMarshalFlight(t *testing.T, f *handshakeFSM, msg handshake.Message) []byte {
	t.Helper()
	hs := &handshake.Handshake{Header: handshake.Header{MessageSequence: 99}}
	hs.Message = msg
	raw, err := hs.Marshal()
	if err != nil {
		t.Fatalf("marshal %T: %v", msg, err)
	}
	return raw
}

func TestHandshakeFSMHappyPath(t *testing.T) {
	driveHandshake(t, []byte("client-identity"), []byte("shared-secret"))
}

func TestHandshakeFSMHelloVerifyRequestResetsTranscript(t *testing.T) {
	f := newHandshakeFSM([]byte("id"), []byte("psk"))
	f.rng = fixedRNG(0x03)

	if _, err := f.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	firstTranscriptLen := len(f.transcript)

	hvr := &handshake.MessageHelloVerifyRequest{Version: protocol.Version1_0, Cookie: []byte{0xAA, 0xBB, 0xCC}}
	raw, err := f.HandleHelloVerifyRequest(hvr)
	require.NoError(t, err)
	require.NotEmpty(t, raw, "HandleHelloVerifyRequest returned empty ClientHello")
	require.Equal(t, uint16(1), f.messageSeq, "messageSeq after retry")
	require.NotEqual(t, firstTranscriptLen+len(raw), len(f.transcript), "transcript was not reset before the retried ClientHello")
	require.Len(t, f.transcript, len(raw), "transcript after retry should be exactly the retried ClientHello")
}

func TestHandshakeFSMRejectsUnsupportedCipherSuite(t *testing.T) {
	f := newHandshakeFSM([]byte("id"), []byte("psk"))
	f.rng = fixedRNG(0x04)
	if _, err := f.Start(); err != nil {
		t.Fatal(err)
	}

	badID := uint16(0x0000)
	shello := &handshake.MessageServerHello{
		Version:           protocol.Version1_0,
		Random:            f.clientRandom,
		CipherSuiteID:     &badID,
		CompressionMethod: &protocol.CompressionMethod{ID: protocol.CompressionMethodNull},
	}
	raw := mustMarshalFlight(t, f, shello)
	require.ErrorIs(t, f.HandleServerHello(raw, shello), errUnsupportedSuite)
}

func TestHandshakeFSMRejectsBadServerFinished(t *testing.T) {
	f := newHandshakeFSM([]byte("id"), []byte("psk"))
	f.rng = fixedRNG(0x05)
	if _, err := f.Start(); err != nil {
		t.Fatal(err)
	}

	cipherSuiteID := uint16(ciphersuite.TLS_PSK_WITH_AES_128_CBC_SHA)
	shello := &handshake.MessageServerHello{
		Version:           protocol.Version1_0,
		Random:            f.clientRandom,
		CipherSuiteID:     &cipherSuiteID,
		CompressionMethod: &protocol.CompressionMethod{ID: protocol.CompressionMethodNull},
	}
	if err := f.HandleServerHello(mustMarshalFlight(t, f, shello), shello); err != nil {
		t.Fatal(err)
	}
	shdRaw := mustMarshalFlight(t, f, &handshake.MessageServerHelloDone{})
	if _, _, err := f.HandleServerHelloDone(shdRaw); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.BuildFinished(); err != nil {
		t.Fatal(err)
	}

	wrongVerify := bytes.Repeat([]byte{0xEE}, 12)
	require.ErrorIs(t, f.HandleServerFinished(&handshake.MessageFinished{VerifyData: wrongVerify}), errBadServerFinished)
	require.Equal(t, stateFailed, f.state)
}
