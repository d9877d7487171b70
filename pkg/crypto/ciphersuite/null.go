// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"github.com/dtlspsk/client/pkg/protocol/recordlayer"
)

// Null is the cipher suite in effect before the handshake negotiates a
// bulk algorithm: the fragment is sent and received as cleartext, with
// no IV and no MAC.
type Null struct{}

// ID returns 0; NULL has no assigned cipher suite ID in this client.
func (n *Null) ID() ID { return 0 }

func (n *Null) String() string { return "TLS_NULL_WITH_NULL_NULL" }

// IsInitialized always returns true: NULL requires no key material.
func (n *Null) IsInitialized() bool { return true }

// Init is a no-op for NULL.
func (n *Null) Init(_, _, _ []byte) error { return nil }

// Encrypt passes the fragment through unchanged, framed by header.
func (n *Null) Encrypt(header *recordlayer.Header, fragment []byte) ([]byte, error) {
	header.ContentLen = uint16(len(fragment)) //nolint:gosec
	out, err := header.Marshal()
	if err != nil {
		return nil, err
	}
	return append(out, fragment...), nil
}

// Decrypt passes the already-framed record through unchanged.
func (n *Null) Decrypt(raw []byte) ([]byte, error) {
	var h recordlayer.Header
	if err := h.Unmarshal(raw); err != nil {
		return nil, err
	}
	if len(raw) < recordlayer.FixedHeaderSize+int(h.ContentLen) {
		return nil, recordlayer.ErrBufferTooSmall
	}
	return raw[:recordlayer.FixedHeaderSize+int(h.ContentLen)], nil
}
