// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// MessageServerHelloDone is sent to indicate the end of the ServerHello
// and associated messages flight. It carries no content.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.5
type MessageServerHelloDone struct{}

// Type returns the Handshake Type.
func (m MessageServerHelloDone) Type() Type {
	return TypeServerHelloDone
}

// Marshal encodes the (empty) ServerHelloDone.
func (m *MessageServerHelloDone) Marshal() ([]byte, error) {
	return []byte{}, nil
}

// Unmarshal populates the ServerHelloDone from wire bytes. Any input,
// including empty, is accepted: the message carries no fields.
func (m *MessageServerHelloDone) Unmarshal(_ []byte) error {
	return nil
}
