// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

// ChangeCipherSpec is the record body that signals the swap of the
// pending cipher state into the active read or write state.
//
// https://tools.ietf.org/html/rfc5246#section-7.1
type ChangeCipherSpec struct{}

// ContentType returns the ContentType of a ChangeCipherSpec.
func (c ChangeCipherSpec) ContentType() ContentType {
	return ContentTypeChangeCipherSpec
}

// Marshal encodes the ChangeCipherSpec.
func (c *ChangeCipherSpec) Marshal() ([]byte, error) {
	return []byte{0x01}, nil
}

// Unmarshal populates the ChangeCipherSpec from wire bytes.
func (c *ChangeCipherSpec) Unmarshal(data []byte) error {
	if len(data) != 1 {
		return ErrBufferTooSmall
	}
	if data[0] != 0x01 {
		return ErrChangeCipherSpecInvalidValue
	}
	return nil
}
