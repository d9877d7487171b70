// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// Type identifies the kind of handshake message carried by a Handshake
// envelope.
type Type byte

// Message types this client emits or consumes.
const (
	TypeClientHello        Type = 0x01
	TypeServerHello        Type = 0x02
	TypeHelloVerifyRequest Type = 0x03
	TypeServerHelloDone    Type = 0x0E
	TypeClientKeyExchange  Type = 0x10
	TypeFinished           Type = 0x14
)

func (t Type) String() string {
	switch t {
	case TypeClientHello:
		return "ClientHello"
	case TypeServerHello:
		return "ServerHello"
	case TypeHelloVerifyRequest:
		return "HelloVerifyRequest"
	case TypeServerHelloDone:
		return "ServerHelloDone"
	case TypeClientKeyExchange:
		return "ClientKeyExchange"
	case TypeFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}
