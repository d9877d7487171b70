// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

import "errors"

// Sentinel errors returned by wire codecs in this package and its
// subpackages. Callers distinguish InvalidArgument/OutOfRange (structural
// problems supplied by the caller) from a short-buffer NeedMore.
var (
	ErrBufferTooSmall          = errors.New("protocol: buffer too small")
	ErrInvalidCipherSuite      = errors.New("protocol: invalid cipher suite")
	ErrInvalidCompressionMethod = errors.New("protocol: invalid compression method")
	ErrInvalidContentType      = errors.New("protocol: invalid content type")
	ErrChangeCipherSpecInvalidValue = errors.New("protocol: change cipher spec: invalid value")
)
