// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package protocol contains the wire-level leaf types shared by every
// other layer of the DTLS stack: content types, the protocol version,
// compression methods and the content bodies that are not handshake
// messages (ChangeCipherSpec, ApplicationData).
package protocol

// ContentType identifies the payload carried by a DTLS record.
//
// https://tools.ietf.org/html/rfc5246#section-6.2.1
type ContentType byte

// ContentType values defined by RFC 5246/6347 that this implementation
// recognizes.
const (
	ContentTypeChangeCipherSpec ContentType = 0x14
	ContentTypeAlert            ContentType = 0x15
	ContentTypeHandshake        ContentType = 0x16
	ContentTypeApplicationData  ContentType = 0x17
)

// String returns a human-readable name for the content type.
func (c ContentType) String() string {
	switch c {
	case ContentTypeChangeCipherSpec:
		return "ChangeCipherSpec"
	case ContentTypeAlert:
		return "Alert"
	case ContentTypeHandshake:
		return "Handshake"
	case ContentTypeApplicationData:
		return "ApplicationData"
	default:
		return "Unknown"
	}
}
