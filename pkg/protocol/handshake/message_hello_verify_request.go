// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/dtlspsk/client/pkg/protocol"

// MessageHelloVerifyRequest is sent by the server in response to an
// initial ClientHello to force a return-routability check before any
// per-connection state is allocated.
//
// https://tools.ietf.org/html/rfc6347#section-4.2.1
type MessageHelloVerifyRequest struct {
	Version protocol.Version
	Cookie  []byte
}

// Type returns the Handshake Type.
func (m MessageHelloVerifyRequest) Type() Type {
	return TypeHelloVerifyRequest
}

// Marshal encodes the HelloVerifyRequest.
func (m *MessageHelloVerifyRequest) Marshal() ([]byte, error) {
	if len(m.Cookie) > maxCookieLength {
		return nil, errCookieTooLong
	}
	out := make([]byte, 0, 3+len(m.Cookie))
	out = append(out, m.Version.Major, m.Version.Minor)
	out = append(out, byte(len(m.Cookie)))
	out = append(out, m.Cookie...)
	return out, nil
}

// Unmarshal populates the HelloVerifyRequest from wire bytes.
func (m *MessageHelloVerifyRequest) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errBufferTooSmall
	}
	m.Version = protocol.Version{Major: data[0], Minor: data[1]}
	n := int(data[2])
	if len(data) < 3+n {
		return errBufferTooSmall
	}
	m.Cookie = append([]byte{}, data[3:3+n]...)
	return nil
}
