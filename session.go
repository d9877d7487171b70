// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"net"

	"github.com/pion/logging"
	"github.com/pion/transport/v3/replaydetector"

	"github.com/dtlspsk/client/pkg/crypto/ciphersuite"
	"github.com/dtlspsk/client/pkg/protocol"
	"github.com/dtlspsk/client/pkg/protocol/alert"
	"github.com/dtlspsk/client/pkg/protocol/handshake"
	"github.com/dtlspsk/client/pkg/protocol/recordlayer"
)

// sessionKey identifies a Session by peer address/port plus the PSK
// identity/secret pair used to reach it, so two different credentials
// to the same peer never share state.
type sessionKey struct {
	addr     string
	identity string
	psk      string
}

// Session is the per-peer handshake and record state: epoch/sequence
// counters, the negotiated cipher states, the transcript-driven
// handshake engine, the pre-connect outbound queue, and the three
// user callbacks.
type Session struct {
	endpoint *Endpoint
	key      sessionKey
	remote   *net.UDPAddr

	log logging.LeveledLogger

	fsm *handshakeFSM

	writeEpoch uint16
	writeSeq   uint64

	writeCipher ciphersuite.CipherSuite
	readCipher  ciphersuite.CipherSuite
	readEpoch   uint16

	replayProtectionWindow uint
	replayDetectors        []replaydetector.ReplayDetector

	connected bool
	closed    bool

	appQueue [][]byte

	onConnect    func()
	onDisconnect func()
	onMessage    func(payload []byte)
}

func newSession(e *Endpoint, key sessionKey, remote *net.UDPAddr, identity, psk []byte) *Session {
	return &Session{
		endpoint:               e,
		key:                    key,
		remote:                 remote,
		log:                    e.log,
		fsm:                    newHandshakeFSM(identity, psk),
		writeCipher:            &ciphersuite.Null{},
		readCipher:             &ciphersuite.Null{},
		replayProtectionWindow: e.replayProtectionWindow,
	}
}

// start kicks off the handshake by transmitting Flight 1.
func (s *Session) start() error {
	raw, err := s.fsm.Start()
	if err != nil {
		return err
	}
	return s.transmitHandshake(raw)
}

// SendApplication queues data until the session reaches Connected,
// otherwise encrypts and transmits it immediately.
func (s *Session) SendApplication(data []byte) error {
	if s.closed {
		return errSessionClosed
	}
	if !s.connected {
		if len(s.appQueue) >= maxAppDataPacketQueueSize {
			return errAppQueueFull
		}
		s.appQueue = append(s.appQueue, append([]byte{}, data...))
		return nil
	}
	return s.transmitApplication(data)
}

func (s *Session) transmitHandshake(raw []byte) error {
	return s.encryptAndSend(protocol.ContentTypeHandshake, raw, s.writeCipher)
}

func (s *Session) transmitApplication(data []byte) error {
	return s.encryptAndSend(protocol.ContentTypeApplicationData, data, s.writeCipher)
}

func (s *Session) transmitChangeCipherSpec(suite ciphersuite.CipherSuite) error {
	ccs := &protocol.ChangeCipherSpec{}
	body, err := ccs.Marshal()
	if err != nil {
		return err
	}
	if err := s.encryptAndSend(protocol.ContentTypeChangeCipherSpec, body, s.writeCipher); err != nil {
		return err
	}
	// The ChangeCipherSpec record itself goes out under the old epoch;
	// only afterward do the write epoch and cipher change.
	s.writeEpoch++
	s.writeSeq = 0
	s.writeCipher = suite
	return nil
}

func (s *Session) encryptAndSend(ct protocol.ContentType, fragment []byte, suite ciphersuite.CipherSuite) error {
	header := &recordlayer.Header{
		ContentType:    ct,
		Version:        protocol.Version1_0,
		Epoch:          s.writeEpoch,
		SequenceNumber: s.writeSeq,
	}
	if header.SequenceNumber > recordlayer.MaxSequenceNumber {
		return recordlayer.ErrSequenceNumberOverflow
	}

	record, err := suite.Encrypt(header, fragment)
	if err != nil {
		return err
	}
	s.writeSeq++

	return s.endpoint.writeTo(record, s.remote)
}

// handleRecord decodes a single record already split out of its
// datagram by recordlayer.UnpackDatagram: it peeks the plaintext header
// to pick the right read cipher and run replay detection, decrypts, and
// dispatches the result.
func (s *Session) handleRecord(raw []byte) error {
	var peek recordlayer.Header
	if err := peek.Unmarshal(raw); err != nil {
		return nil // malformed header: drop silently
	}

	if s.replayProtectionWindow > 0 {
		if !s.checkReplay(peek.Epoch, peek.SequenceNumber) {
			s.log.Debugf("dtls: dropped replayed record (epoch %d, seq %d)", peek.Epoch, peek.SequenceNumber)
			return nil
		}
	}

	cipher := s.readCipher
	if peek.Epoch == 0 {
		cipher = &ciphersuite.Null{}
	}

	decrypted, err := cipher.Decrypt(raw)
	if err != nil {
		// MAC/padding failures are folded into one opaque outcome: the
		// record is dropped, and the error makes the caller abandon the
		// rest of the datagram.
		return err
	}

	var rl recordlayer.RecordLayer
	if err := rl.Unmarshal(decrypted); err != nil {
		return err
	}

	rawContent := decrypted[recordlayer.FixedHeaderSize:]
	return s.onRecord(&rl, rawContent)
}

func (s *Session) checkReplay(epoch uint16, seq uint64) bool {
	for len(s.replayDetectors) <= int(epoch) {
		s.replayDetectors = append(s.replayDetectors, replaydetector.New(s.replayProtectionWindow, recordlayer.MaxSequenceNumber))
	}
	markValid, ok := s.replayDetectors[epoch].Check(seq)
	if ok {
		markValid()
	}
	return ok
}

// onRecord dispatches a single decoded, already-decrypted record by
// content type.
func (s *Session) onRecord(rl *recordlayer.RecordLayer, rawContent []byte) error {
	switch content := rl.Content.(type) {
	case *protocol.ChangeCipherSpec:
		return s.onChangeCipherSpec()
	case *alert.Alert:
		return s.onAlert(content)
	case *handshake.Handshake:
		return s.onHandshake(content, rawContent)
	case *protocol.ApplicationData:
		return s.onApplicationData(content)
	default:
		return protocol.ErrInvalidContentType
	}
}

func (s *Session) onChangeCipherSpec() error {
	// Swap the read state to the suite already negotiated via
	// ServerHello. readEpoch is left unchanged: the read cipher is
	// chosen from each record header's epoch instead. This is not
	// DTLS-compliant; DTLS advances the read epoch at this point.
	suite := ciphersuite.NewCipherSuite(s.fsm.cipherSuiteID)
	if suite == nil {
		return errUnsupportedSuite
	}
	if err := suite.Init(s.fsm.masterSecret, fixedRandom(s.fsm.clientRandom), fixedRandom(s.fsm.serverRandom)); err != nil {
		return err
	}
	s.readCipher = suite
	return nil
}

func (s *Session) onAlert(a *alert.Alert) error {
	switch a.Description {
	case alert.CloseNotify, alert.BadRecordMac:
		s.fireDisconnect()
		return s.endpoint.removeSession(s.key)
	default:
		return nil
	}
}

func (s *Session) onHandshake(hs *handshake.Handshake, raw []byte) error {
	switch msg := hs.Message.(type) {
	case *handshake.MessageHelloVerifyRequest:
		reply, err := s.fsm.HandleHelloVerifyRequest(msg)
		if err != nil {
			return s.abort(err)
		}
		return s.transmitHandshake(reply)

	case *handshake.MessageServerHello:
		if err := s.fsm.HandleServerHello(raw, msg); err != nil {
			return s.abort(err)
		}
		return nil

	case *handshake.MessageServerHelloDone:
		return s.onServerHelloDone(raw)

	case *handshake.MessageFinished:
		if err := s.fsm.HandleServerFinished(msg); err != nil {
			return s.abort(err)
		}
		s.connected = true
		s.fireConnect()
		return s.drainAppQueue()

	default:
		return s.abort(errUnexpectedMessage)
	}
}

func (s *Session) onServerHelloDone(raw []byte) error {
	ckeRaw, masterSecret, err := s.fsm.HandleServerHelloDone(raw)
	if err != nil {
		return s.abort(err)
	}
	if err := s.transmitHandshake(ckeRaw); err != nil {
		return err
	}

	suite := ciphersuite.NewCipherSuite(s.fsm.cipherSuiteID)
	if suite == nil {
		return s.abort(errUnsupportedSuite)
	}
	clientRandom := fixedRandom(s.fsm.clientRandom)
	serverRandom := fixedRandom(s.fsm.serverRandom)
	if err := suite.Init(masterSecret, clientRandom, serverRandom); err != nil {
		return s.abort(err)
	}

	if err := s.transmitChangeCipherSpec(suite); err != nil {
		return err
	}

	finishedRaw, _, err := s.fsm.BuildFinished()
	if err != nil {
		return s.abort(err)
	}
	return s.transmitHandshake(finishedRaw)
}

func (s *Session) onApplicationData(data *protocol.ApplicationData) error {
	if s.onMessage != nil {
		s.onMessage(data.Data)
	}
	return nil
}

// abort tears the session down on any unexpected message or protocol
// violation, silently and with no alert transmitted.
func (s *Session) abort(_ error) error {
	s.fireDisconnect()
	return s.endpoint.removeSession(s.key)
}

func (s *Session) drainAppQueue() error {
	queued := s.appQueue
	s.appQueue = nil
	for _, data := range queued {
		if err := s.transmitApplication(data); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) fireConnect() {
	if s.onConnect != nil {
		s.onConnect()
	}
}

func (s *Session) fireDisconnect() {
	s.closed = true
	if s.onDisconnect != nil {
		s.onDisconnect()
	}
}

func fixedRandom(r handshake.Random) []byte {
	b := r.MarshalFixed()
	return b[:]
}
