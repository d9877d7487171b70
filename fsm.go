// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/rand"
	"crypto/subtle"
	"io"
	"time"

	"github.com/dtlspsk/client/pkg/crypto/ciphersuite"
	"github.com/dtlspsk/client/pkg/crypto/prf"
	"github.com/dtlspsk/client/pkg/protocol"
	"github.com/dtlspsk/client/pkg/protocol/handshake"
)

// handshakeState walks NotConnected -> ClientHelloSent -> FinishedSent
// -> Connected, with an out-of-band Failed state any protocol violation
// or MAC failure jumps to.
type handshakeState int

const (
	stateNotConnected handshakeState = iota
	stateClientHelloSent
	stateFinishedSent
	stateConnected
	stateFailed
)

// handshakeFSM drives the client side of the handshake. It is pure: it
// never touches the network or the record layer directly. Session owns
// the transport; it calls into the FSM with
// parsed handshake messages and their raw (as-received) bytes, and the
// FSM returns the raw bytes of whatever it wants transmitted next.
type handshakeFSM struct {
	state handshakeState

	identity []byte
	psk      []byte

	transcript []byte

	clientRandom handshake.Random
	serverRandom handshake.Random

	cipherSuiteID ciphersuite.ID
	masterSecret  []byte

	messageSeq uint16

	rng io.Reader
}

func newHandshakeFSM(identity, psk []byte) *handshakeFSM {
	return &handshakeFSM{identity: identity, psk: psk, rng: rand.Reader}
}

func (f *handshakeFSM) nextMessageSeq() uint16 {
	v := f.messageSeq
	f.messageSeq++
	return v
}

// Start builds Flight 1, the cookie-less ClientHello, and returns its
// raw bytes for the caller to transmit.
func (f *handshakeFSM) Start() ([]byte, error) {
	return f.clientHello(nil)
}

func (f *handshakeFSM) clientHello(cookie []byte) ([]byte, error) {
	rnd, err := handshake.NewClientRandom(time.Now(), f.rng)
	if err != nil {
		return nil, err
	}
	f.clientRandom = rnd

	msg := &handshake.MessageClientHello{
		Version: protocol.Version1_0,
		Random:  rnd,
		Cookie:  cookie,
		CipherSuiteIDs: []uint16{
			uint16(ciphersuite.TLS_PSK_WITH_AES_256_CBC_SHA),
			uint16(ciphersuite.TLS_PSK_WITH_AES_128_CBC_SHA),
		},
		CompressionMethods: []*protocol.CompressionMethod{{ID: protocol.CompressionMethodNull}},
	}

	raw, err := f.marshalFlight(msg)
	if err != nil {
		return nil, err
	}
	f.transcript = append(f.transcript, raw...)
	f.state = stateClientHelloSent
	return raw, nil
}

func (f *handshakeFSM) marshalFlight(msg handshake.Message) ([]byte, error) {
	hs := &handshake.Handshake{Header: handshake.Header{MessageSequence: f.nextMessageSeq()}}
	hs.Message = msg
	return hs.Marshal()
}

// HandleHelloVerifyRequest resets the transcript and message sequence,
// then re-emits the ClientHello carrying the server's cookie.
func (f *handshakeFSM) HandleHelloVerifyRequest(m *handshake.MessageHelloVerifyRequest) ([]byte, error) {
	if f.state != stateClientHelloSent {
		return nil, errUnexpectedMessage
	}
	f.transcript = nil
	f.messageSeq = 0
	return f.clientHello(m.Cookie)
}

// HandleServerHello appends to the transcript, validates the negotiated
// suite and compression, and remembers the server random.
func (f *handshakeFSM) HandleServerHello(raw []byte, m *handshake.MessageServerHello) error {
	if f.state != stateClientHelloSent {
		return errUnexpectedMessage
	}
	f.transcript = append(f.transcript, raw...)

	if m.CompressionMethod == nil || m.CompressionMethod.ID != protocol.CompressionMethodNull {
		return errUnsupportedCompress
	}
	if m.CipherSuiteID == nil {
		return errUnsupportedSuite
	}
	id := ciphersuite.ID(*m.CipherSuiteID)
	if id != ciphersuite.TLS_PSK_WITH_AES_128_CBC_SHA && id != ciphersuite.TLS_PSK_WITH_AES_256_CBC_SHA {
		return errUnsupportedSuite
	}

	f.cipherSuiteID = id
	f.serverRandom = m.Random
	return nil
}

// HandleServerHelloDone appends ServerHelloDone and the freshly built
// ClientKeyExchange to the transcript and derives the master secret,
// wiping the premaster secret immediately after use. The caller
// (Session) is responsible for sending ClientKeyExchange, swapping in
// the negotiated write cipher, and calling BuildFinished.
func (f *handshakeFSM) HandleServerHelloDone(raw []byte) (clientKeyExchangeRaw []byte, masterSecret []byte, err error) {
	if f.state != stateClientHelloSent {
		return nil, nil, errUnexpectedMessage
	}
	f.transcript = append(f.transcript, raw...)

	cke := &handshake.MessagePskClientKeyExchange{Identity: f.identity}
	ckeRaw, err := f.marshalFlight(cke)
	if err != nil {
		return nil, nil, err
	}
	f.transcript = append(f.transcript, ckeRaw...)

	premaster := prf.PreMasterSecretPSK(f.psk)
	clientRandom := f.clientRandom.MarshalFixed()
	serverRandom := f.serverRandom.MarshalFixed()
	master, err := prf.MasterSecret(premaster, clientRandom[:], serverRandom[:])
	for i := range premaster {
		premaster[i] = 0
	}
	if err != nil {
		return nil, nil, err
	}

	f.masterSecret = master
	return ckeRaw, master, nil
}

// BuildFinished computes the client verify data over the transcript as
// it stands before Finished itself is appended, then builds and appends
// Finished. State moves to FinishedSent.
func (f *handshakeFSM) BuildFinished() (finishedRaw []byte, clientVerify []byte, err error) {
	clientVerify, err = prf.VerifyDataClient(f.masterSecret, f.transcript)
	if err != nil {
		return nil, nil, err
	}

	finishedRaw, err = f.marshalFlight(&handshake.MessageFinished{VerifyData: clientVerify})
	if err != nil {
		return nil, nil, err
	}
	f.transcript = append(f.transcript, finishedRaw...)
	f.state = stateFinishedSent
	return finishedRaw, clientVerify, nil
}

// HandleServerFinished computes the expected verify data over the
// transcript as it stood just before this Finished arrived (the
// server's Finished is never itself appended to the transcript, since
// the handshake ends here).
func (f *handshakeFSM) HandleServerFinished(m *handshake.MessageFinished) error {
	if f.state != stateFinishedSent {
		return errUnexpectedMessage
	}

	expected, err := prf.VerifyDataServer(f.masterSecret, f.transcript)
	if err != nil {
		return err
	}
	if len(expected) != len(m.VerifyData) || subtle.ConstantTimeCompare(expected, m.VerifyData) != 1 {
		f.state = stateFailed
		return errBadServerFinished
	}

	f.state = stateConnected
	return nil
}
