// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package ciphersuite implements the record-layer bulk/MAC algorithms
// negotiated during the handshake: NULL and the two PSK/AES-CBC/HMAC-SHA1
// suites this client supports.
package ciphersuite

import (
	"github.com/dtlspsk/client/pkg/protocol/recordlayer"
)

// ID is a TLS/DTLS cipher suite identifier.
type ID uint16

// Recognized cipher suite IDs.
const (
	TLS_PSK_WITH_AES_128_CBC_SHA ID = 0x008C
	TLS_PSK_WITH_AES_256_CBC_SHA ID = 0x008D
)

func (i ID) String() string {
	switch i {
	case TLS_PSK_WITH_AES_128_CBC_SHA:
		return "TLS_PSK_WITH_AES_128_CBC_SHA"
	case TLS_PSK_WITH_AES_256_CBC_SHA:
		return "TLS_PSK_WITH_AES_256_CBC_SHA"
	default:
		return "Unknown"
	}
}

// CipherSuite is the record layer's view of a negotiated bulk+MAC
// algorithm pair. One instance is shared by the read and write
// directions: Init derives both
// directions' keys from the master secret and randoms, then Encrypt
// always uses the client ("local") write keys and Decrypt always uses
// the server ("remote") write keys, matching this client-only
// implementation's fixed roles.
type CipherSuite interface {
	ID() ID
	String() string
	// IsInitialized reports whether Init has derived keys yet. Before
	// initialization, the suite must not be used to Encrypt or Decrypt.
	IsInitialized() bool
	// Init derives client/server write MAC and bulk keys from the
	// master secret and the two handshake randoms.
	Init(masterSecret, clientRandom, serverRandom []byte) error
	// Encrypt produces the on-wire fragment for the given record header
	// and plaintext fragment, and returns the full record (header +
	// fragment) ready to transmit.
	Encrypt(header *recordlayer.Header, fragment []byte) ([]byte, error)
	// Decrypt reverses Encrypt. It is given the still-encrypted full
	// record bytes (header + IV/ciphertext) and must run in constant
	// time regardless of whether padding or MAC verification fails.
	// On success it returns a record byte buffer
	// whose header ContentLen has been corrected to the plaintext
	// fragment length.
	Decrypt(raw []byte) ([]byte, error)
}

// KeyLength returns the bulk cipher key length, in bytes, for a
// recognized suite ID, or 0 for NULL/unknown.
func KeyLength(id ID) int {
	switch id {
	case TLS_PSK_WITH_AES_128_CBC_SHA:
		return 16
	case TLS_PSK_WITH_AES_256_CBC_SHA:
		return 32
	default:
		return 0
	}
}

// MacKeyLength is the HMAC-SHA1 MAC key length used by every suite this
// client negotiates.
const MacKeyLength = 20

// NewCipherSuite constructs the CipherSuite for a negotiated ID, or nil
// for an ID this client does not offer/accept.
func NewCipherSuite(id ID) CipherSuite {
	switch id {
	case TLS_PSK_WITH_AES_128_CBC_SHA:
		return newCBC(id)
	case TLS_PSK_WITH_AES_256_CBC_SHA:
		return newCBC(id)
	default:
		return nil
	}
}
