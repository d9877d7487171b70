// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"time"
)

// RandomLength is the wire size of a Random: 4-byte time field plus
// 28 random bytes.
const RandomLength = 32

// Random is the 32-byte ClientHello/ServerHello random.
type Random struct {
	GMTUnixTime time.Time
	RandomBytes [28]byte
}

// MarshalFixed encodes the Random to its 32-byte wire form.
func (r *Random) MarshalFixed() [RandomLength]byte {
	var out [RandomLength]byte
	binary.BigEndian.PutUint32(out[0:4], uint32(r.GMTUnixTime.Unix())) //nolint:gosec
	copy(out[4:], r.RandomBytes[:])
	return out
}

// UnmarshalFixed populates the Random from its 32-byte wire form.
func (r *Random) UnmarshalFixed(in [RandomLength]byte) {
	r.GMTUnixTime = time.Unix(int64(binary.BigEndian.Uint32(in[0:4])), 0)
	copy(r.RandomBytes[:], in[4:])
}

// NewClientRandom builds the client's ClientHello random: a 4-byte
// big-endian field equal to floor(now_seconds) plus a signed 24-bit
// CSPRNG-drawn offset in [-2^23, 2^23) to deter fingerprinting by real
// clock skew, followed by 28 CSPRNG bytes. A nil rng means defaultRNG.
func NewClientRandom(now time.Time, rng io.Reader) (Random, error) {
	if rng == nil {
		rng = defaultRNG
	}
	var offsetBuf [3]byte
	if _, err := io.ReadFull(rng, offsetBuf[:]); err != nil {
		return Random{}, err
	}
	offset := int32(offsetBuf[0])<<16 | int32(offsetBuf[1])<<8 | int32(offsetBuf[2])
	// Sign-extend the 24-bit value into the low 24 bits of a signed 32-bit int.
	offset = (offset << 8) >> 8

	r := Random{GMTUnixTime: time.Unix(now.Unix()+int64(offset), 0)}
	if _, err := io.ReadFull(rng, r.RandomBytes[:]); err != nil {
		return Random{}, err
	}
	return r, nil
}

// defaultRNG is the CSPRNG source used when callers don't supply one.
var defaultRNG = rand.Reader //nolint:gochecknoglobals
