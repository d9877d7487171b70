// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "encoding/binary"

// maxIdentityLength is the wire limit on a PSK identity: the length
// prefix is 16 bits, so 2^16-1.
const maxIdentityLength = (1 << 16) - 1

// MessagePskClientKeyExchange is the PSK ClientKeyExchange sent in
// response to ServerHelloDone: it carries only the PSK identity, never
// key material.
//
// https://tools.ietf.org/html/rfc4279#section-2
type MessagePskClientKeyExchange struct {
	Identity []byte
}

// Type returns the Handshake Type.
func (m MessagePskClientKeyExchange) Type() Type {
	return TypeClientKeyExchange
}

// Marshal encodes the PskClientKeyExchange.
func (m *MessagePskClientKeyExchange) Marshal() ([]byte, error) {
	if len(m.Identity) > maxIdentityLength {
		return nil, errIdentityTooLong
	}
	out := make([]byte, 2, 2+len(m.Identity))
	binary.BigEndian.PutUint16(out, uint16(len(m.Identity))) //nolint:gosec
	return append(out, m.Identity...), nil
}

// Unmarshal populates the PskClientKeyExchange from wire bytes.
func (m *MessagePskClientKeyExchange) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	n := int(binary.BigEndian.Uint16(data))
	if len(data) < 2+n {
		return errBufferTooSmall
	}
	m.Identity = append([]byte{}, data[2:2+n]...)
	return nil
}
