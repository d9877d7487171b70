// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import "errors"

var (
	// ErrBufferTooSmall is returned when a buffer is too short to contain
	// a declared structure; it signals NeedMore to the caller.
	ErrBufferTooSmall = errors.New("recordlayer: buffer too small to decode")
	// ErrInvalidPacketLength is returned when the header's declared
	// content length does not fit a well-formed record.
	ErrInvalidPacketLength = errors.New("recordlayer: invalid packet length")
	// ErrSequenceNumberOverflow is returned when a sequence number would
	// exceed the 48-bit wire field.
	ErrSequenceNumberOverflow = errors.New("recordlayer: sequence number overflow")
	// ErrContentTooLarge is returned when a plaintext fragment exceeds
	// MaxFragmentSize.
	ErrContentTooLarge = errors.New("recordlayer: content too large")
)
