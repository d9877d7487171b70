// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package alert implements the DTLS Alert content type.
//
// https://tools.ietf.org/html/rfc5246#section-7.2
package alert

import (
	"fmt"

	"github.com/dtlspsk/client/pkg/protocol"
)

// Level is the alert severity.
type Level byte

// Level values.
const (
	Warning Level = 1
	Fatal   Level = 2
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "Warning"
	case Fatal:
		return "Fatal"
	default:
		return "Invalid"
	}
}

// Description identifies the specific alert condition. Only the
// descriptions this client needs to recognize are named; any other value
// still round-trips but is reported as "Unknown".
type Description byte

// Description values recognized by this client.
const (
	CloseNotify   Description = 0
	BadRecordMac  Description = 20
	HandshakeFail Description = 40
	UnexpectedMsg Description = 10
	DecodeError   Description = 50
)

func (d Description) String() string {
	switch d {
	case CloseNotify:
		return "CloseNotify"
	case UnexpectedMsg:
		return "UnexpectedMessage"
	case BadRecordMac:
		return "BadRecordMac"
	case DecodeError:
		return "DecodeError"
	case HandshakeFail:
		return "HandshakeFailure"
	default:
		return "Unknown"
	}
}

// Alert is the DTLS Alert record body.
type Alert struct {
	Level       Level
	Description Description
}

// ContentType returns protocol.ContentTypeAlert.
func (a Alert) ContentType() protocol.ContentType {
	return protocol.ContentTypeAlert
}

// String implements fmt.Stringer.
func (a *Alert) String() string {
	return fmt.Sprintf("Alert %s: %s", a.Level, a.Description)
}

// Marshal encodes the Alert as its two-byte wire form.
func (a *Alert) Marshal() ([]byte, error) {
	return []byte{byte(a.Level), byte(a.Description)}, nil
}

// Unmarshal populates the Alert from wire bytes.
func (a *Alert) Unmarshal(data []byte) error {
	if len(data) != 2 {
		return errBufferTooSmall
	}
	a.Level = Level(data[0])
	a.Description = Description(data[1])
	return nil
}
