// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"github.com/dtlspsk/client/pkg/protocol"
	"github.com/dtlspsk/client/pkg/protocol/alert"
	"github.com/dtlspsk/client/pkg/protocol/handshake"
)

// RecordLayer couples a Header to its Content body.
type RecordLayer struct {
	Header  Header
	Content protocol.Content
}

// Marshal encodes the full record: header followed by the marshaled
// content. The header's ContentType and ContentLen are (re)derived from
// Content before encoding.
func (r *RecordLayer) Marshal() ([]byte, error) {
	if r.Content == nil {
		return nil, ErrContentTooLarge
	}

	payload, err := r.Content.Marshal()
	if err != nil {
		return nil, err
	}
	if len(payload) > MaxFragmentSize {
		return nil, ErrContentTooLarge
	}

	r.Header.ContentType = r.Content.ContentType()
	r.Header.ContentLen = uint16(len(payload)) //nolint:gosec

	headerBytes, err := r.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(headerBytes, payload...), nil
}

// Unmarshal decodes a single record starting at the beginning of data.
// It returns ErrBufferTooSmall if data does not yet contain a complete
// record.
func (r *RecordLayer) Unmarshal(data []byte) error {
	if err := r.Header.Unmarshal(data); err != nil {
		return err
	}
	if len(data) < FixedHeaderSize+int(r.Header.ContentLen) {
		return ErrBufferTooSmall
	}
	payload := data[FixedHeaderSize : FixedHeaderSize+int(r.Header.ContentLen)]

	switch r.Header.ContentType {
	case protocol.ContentTypeChangeCipherSpec:
		r.Content = &protocol.ChangeCipherSpec{}
	case protocol.ContentTypeAlert:
		r.Content = &alert.Alert{}
	case protocol.ContentTypeHandshake:
		r.Content = &handshake.Handshake{}
	case protocol.ContentTypeApplicationData:
		r.Content = &protocol.ApplicationData{}
	default:
		return protocol.ErrInvalidContentType
	}

	return r.Content.Unmarshal(payload)
}

// UnpackDatagram splits one inbound UDP datagram into the individual
// records it contains. DTLS allows a single datagram to carry multiple
// records back-to-back; this walks the buffer header-by-header. Any
// trailing bytes that don't form a complete header/record are dropped
// silently, abandoning the remainder of the datagram.
func UnpackDatagram(buf []byte) ([][]byte, error) {
	out := make([][]byte, 0)

	for offset := 0; offset < len(buf); {
		if len(buf)-offset < FixedHeaderSize {
			break
		}
		var h Header
		if err := h.Unmarshal(buf[offset:]); err != nil {
			break
		}
		recordLen := FixedHeaderSize + int(h.ContentLen)
		if len(buf)-offset < recordLen {
			break
		}
		out = append(out, buf[offset:offset+recordLen])
		offset += recordLen
	}

	if len(out) == 0 {
		return nil, ErrInvalidPacketLength
	}
	return out, nil
}
