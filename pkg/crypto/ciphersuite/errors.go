// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import "errors"

var (
	// errCipherSuiteNotInitialized is returned when Encrypt/Decrypt is
	// called before Init has derived keys.
	errCipherSuiteNotInitialized = errors.New("ciphersuite: not initialized")
	// errMalformedRecord is the single opaque error returned for both MAC
	// and padding failures, so a caller can never distinguish MAC from
	// padding failure externally and build a padding oracle from it.
	errMalformedRecord = errors.New("ciphersuite: malformed record")
	// errNotEnoughRoomForIV names a record fragment too short to contain
	// an IV. cbc.Decrypt does not return it: it reports that case as
	// errMalformedRecord.
	errNotEnoughRoomForIV = errors.New("ciphersuite: not enough room for IV")
)
