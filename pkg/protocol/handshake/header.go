// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "encoding/binary"

// HeaderLength is the size, in bytes, of a DTLS handshake header:
// msg_type(1) | length(3) | message_seq(2) |
// fragment_offset(3) | fragment_length(3).
const HeaderLength = 12

// Header is the 12-byte handshake header prepended to every handshake
// message body, both standalone and as part of a fragment.
type Header struct {
	Type            Type
	Length          uint32 // 24 bits significant
	MessageSequence uint16
	FragmentOffset  uint32 // 24 bits significant
	FragmentLength  uint32 // 24 bits significant
}

// Marshal encodes the Header to its 12-byte wire form.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, HeaderLength)
	out[0] = byte(h.Type)
	putUint24(out[1:4], h.Length)
	binary.BigEndian.PutUint16(out[4:6], h.MessageSequence)
	putUint24(out[6:9], h.FragmentOffset)
	putUint24(out[9:12], h.FragmentLength)
	return out, nil
}

// Unmarshal populates the Header from the first HeaderLength bytes of
// data.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderLength {
		return errBufferTooSmall
	}
	h.Type = Type(data[0])
	h.Length = uint24(data[1:4])
	h.MessageSequence = binary.BigEndian.Uint16(data[4:6])
	h.FragmentOffset = uint24(data[6:9])
	h.FragmentLength = uint24(data[9:12])
	return nil
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
