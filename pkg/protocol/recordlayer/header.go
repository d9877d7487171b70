// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package recordlayer implements the 13-byte DTLS record header and the
// RecordLayer envelope that couples a header to a content body.
//
// https://tools.ietf.org/html/rfc6347#section-4.1
package recordlayer

import (
	"encoding/binary"

	"github.com/dtlspsk/client/pkg/protocol"
)

// FixedHeaderSize is the size, in bytes, of a DTLS record header.
const FixedHeaderSize = 13

// MaxSequenceNumber is the largest value a 48-bit record sequence number
// may take before the session must be abandoned.
const MaxSequenceNumber = (1 << 48) - 1

// MaxEpoch is the largest value a 16-bit epoch may take.
const MaxEpoch = (1 << 16) - 1

// MaxFragmentSize is the largest permitted plaintext fragment, 2^14 bytes.
const MaxFragmentSize = 1 << 14

// Header is the fixed 13-byte DTLS record header.
type Header struct {
	ContentType    protocol.ContentType
	Version        protocol.Version
	Epoch          uint16
	SequenceNumber uint64 // only the low 48 bits are significant
	ContentLen     uint16
}

// Marshal encodes the Header to its 13-byte wire form.
func (h *Header) Marshal() ([]byte, error) {
	if h.SequenceNumber > MaxSequenceNumber {
		return nil, ErrSequenceNumberOverflow
	}

	out := make([]byte, FixedHeaderSize)
	out[0] = byte(h.ContentType)
	out[1] = h.Version.Major
	out[2] = h.Version.Minor
	binary.BigEndian.PutUint16(out[3:5], h.Epoch)
	putUint48(out[5:11], h.SequenceNumber)
	binary.BigEndian.PutUint16(out[11:13], h.ContentLen)
	return out, nil
}

// Unmarshal populates the Header from the first FixedHeaderSize bytes of
// data. A short buffer returns ErrBufferTooSmall so the caller can treat
// it as "need more data" rather than a malformed record.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < FixedHeaderSize {
		return ErrBufferTooSmall
	}

	h.ContentType = protocol.ContentType(data[0])
	h.Version = protocol.Version{Major: data[1], Minor: data[2]}
	h.Epoch = binary.BigEndian.Uint16(data[3:5])
	h.SequenceNumber = uint48(data[5:11])
	h.ContentLen = binary.BigEndian.Uint16(data[11:13])
	return nil
}

// Size returns FixedHeaderSize; it exists so callers can write
// `h.Size()` the way they write `len(fragment)`.
func (h *Header) Size() int {
	return FixedHeaderSize
}

func putUint48(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

func uint48(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}
