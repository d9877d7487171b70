// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/dtlspsk/client/pkg/protocol"
)

// maxCookieLength is DTLS 1.0's cookie size limit.
const maxCookieLength = 32

// MessageClientHello is the first flight of the client handshake.
// session_id is always empty in this client; cookie is empty on the
// first ClientHello and echoes the server's cookie after a
// HelloVerifyRequest.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.2
type MessageClientHello struct {
	Version            protocol.Version
	Random             Random
	SessionID          []byte
	Cookie             []byte
	CipherSuiteIDs     []uint16
	CompressionMethods []*protocol.CompressionMethod
}

// Type returns the Handshake Type.
func (m MessageClientHello) Type() Type {
	return TypeClientHello
}

// Marshal encodes the ClientHello.
func (m *MessageClientHello) Marshal() ([]byte, error) {
	if len(m.Cookie) > maxCookieLength {
		return nil, errCookieTooLong
	}
	if len(m.CipherSuiteIDs) == 0 {
		return nil, errNoCipherSuites
	}

	out := make([]byte, 2+RandomLength)
	out[0] = m.Version.Major
	out[1] = m.Version.Minor
	rnd := m.Random.MarshalFixed()
	copy(out[2:], rnd[:])

	out = append(out, byte(len(m.SessionID)))
	out = append(out, m.SessionID...)

	out = append(out, byte(len(m.Cookie)))
	out = append(out, m.Cookie...)

	suitesLen := len(m.CipherSuiteIDs) * 2
	suites := make([]byte, 2+suitesLen)
	binary.BigEndian.PutUint16(suites[0:2], uint16(suitesLen)) //nolint:gosec
	for i, id := range m.CipherSuiteIDs {
		binary.BigEndian.PutUint16(suites[2+2*i:], id)
	}
	out = append(out, suites...)

	out = append(out, byte(len(m.CompressionMethods)))
	for _, cm := range m.CompressionMethods {
		out = append(out, byte(cm.ID))
	}

	return out, nil
}

// Unmarshal populates the ClientHello from wire bytes.
func (m *MessageClientHello) Unmarshal(data []byte) error {
	if len(data) < 2+RandomLength+1 {
		return errBufferTooSmall
	}
	m.Version = protocol.Version{Major: data[0], Minor: data[1]}
	var rnd [RandomLength]byte
	copy(rnd[:], data[2:2+RandomLength])
	m.Random.UnmarshalFixed(rnd)

	offset := 2 + RandomLength
	n := int(data[offset])
	offset++
	if len(data) < offset+n {
		return errBufferTooSmall
	}
	m.SessionID = append([]byte{}, data[offset:offset+n]...)
	offset += n

	if len(data) <= offset {
		return errBufferTooSmall
	}
	cookieLen := int(data[offset])
	offset++
	if len(data) < offset+cookieLen {
		return errBufferTooSmall
	}
	m.Cookie = append([]byte{}, data[offset:offset+cookieLen]...)
	offset += cookieLen

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	suitesLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if suitesLen%2 != 0 || len(data) < offset+suitesLen {
		return errBufferTooSmall
	}
	m.CipherSuiteIDs = make([]uint16, suitesLen/2)
	for i := range m.CipherSuiteIDs {
		m.CipherSuiteIDs[i] = binary.BigEndian.Uint16(data[offset+2*i:])
	}
	offset += suitesLen

	if len(data) <= offset {
		return errBufferTooSmall
	}
	compCount := int(data[offset])
	offset++
	if len(data) < offset+compCount {
		return errBufferTooSmall
	}
	methods := protocol.CompressionMethods()
	m.CompressionMethods = make([]*protocol.CompressionMethod, 0, compCount)
	for i := 0; i < compCount; i++ {
		id := protocol.CompressionMethodID(data[offset+i])
		cm, ok := methods[id]
		if !ok {
			return errInvalidCompressionMethod
		}
		m.CompressionMethods = append(m.CompressionMethods, cm)
	}
	return nil
}
