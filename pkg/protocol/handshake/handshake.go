// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"github.com/dtlspsk/client/pkg/protocol"
)

// Handshake is the record fragment body for ContentTypeHandshake: a
// 12-byte Header followed by the type-specific Message.
// Fragmentation/reassembly across multiple records is not supported,
// so Header.FragmentOffset is always 0 and Header.FragmentLength always
// equals Header.Length.
type Handshake struct {
	Header  Header
	Message Message
}

// ContentType returns protocol.ContentTypeHandshake.
func (h Handshake) ContentType() protocol.ContentType {
	return protocol.ContentTypeHandshake
}

// Marshal encodes the full handshake record fragment: header followed
// by the marshaled message body.
func (h *Handshake) Marshal() ([]byte, error) {
	body, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}

	h.Header.Type = h.Message.Type()
	h.Header.Length = uint32(len(body)) //nolint:gosec
	h.Header.FragmentOffset = 0
	h.Header.FragmentLength = h.Header.Length

	headerBytes, err := h.Header.Marshal()
	if err != nil {
		return nil, err
	}
	return append(headerBytes, body...), nil
}

// Unmarshal decodes a Handshake envelope: the 12-byte header, then
// dispatches to the message type named by the header.
func (h *Handshake) Unmarshal(data []byte) error {
	if err := h.Header.Unmarshal(data); err != nil {
		return err
	}
	if uint32(len(data)) < HeaderLength+h.Header.Length { //nolint:gosec
		return errBufferTooSmall
	}
	body := data[HeaderLength : HeaderLength+h.Header.Length]

	msg, err := newMessage(h.Header.Type)
	if err != nil {
		return err
	}
	if err := msg.Unmarshal(body); err != nil {
		return err
	}
	h.Message = msg
	return nil
}

func newMessage(t Type) (Message, error) {
	switch t {
	case TypeClientHello:
		return &MessageClientHello{}, nil
	case TypeServerHello:
		return &MessageServerHello{}, nil
	case TypeHelloVerifyRequest:
		return &MessageHelloVerifyRequest{}, nil
	case TypeServerHelloDone:
		return &MessageServerHelloDone{}, nil
	case TypeClientKeyExchange:
		return &MessagePskClientKeyExchange{}, nil
	case TypeFinished:
		return &MessageFinished{}, nil
	default:
		return nil, errUnknownMessageType
	}
}
