// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import "errors"

// Sentinel errors returned by the handshake engine, session and
// endpoint. Codec-level InvalidArgument/OutOfRange/NeedMore distinctions
// live in pkg/protocol and its subpackages; these are the kinds a caller
// of the public API can actually observe.
var (
	errNilPacketConn       = errors.New("dtls: packet conn is nil")
	errEndpointClosed      = errors.New("dtls: endpoint is closed")
	errSessionClosed       = errors.New("dtls: session is closed")
	errNoSuchSession       = errors.New("dtls: no session for peer")
	errResolveFailed       = errors.New("dtls: hostname resolution failed")
	errUnsupportedFamily   = errors.New("dtls: unsupported address family")
	errAppQueueFull        = errors.New("dtls: pre-connect send queue is full")
	errHandshakeAborted    = errors.New("dtls: handshake aborted")
	errUnexpectedMessage   = errors.New("dtls: unexpected handshake message")
	errUnsupportedSuite    = errors.New("dtls: server negotiated an unsupported cipher suite")
	errUnsupportedCompress = errors.New("dtls: server negotiated non-NULL compression")
	errBadServerFinished   = errors.New("dtls: server Finished verify data mismatch")
	errBadChangeCipherSpec = errors.New("dtls: unexpected ChangeCipherSpec value")
)
