// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

// Version is the two-byte DTLS protocol version field.
type Version struct {
	Major, Minor byte
}

// Version1_0 is the DTLS 1.0 version constant, 0xFEFF.
//
// https://tools.ietf.org/html/rfc4347
var Version1_0 = Version{Major: 0xFE, Minor: 0xFF} //nolint:gochecknoglobals
