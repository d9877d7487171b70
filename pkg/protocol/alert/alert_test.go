// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package alert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlertRoundTrip(t *testing.T) {
	cases := []Alert{
		{Level: Warning, Description: CloseNotify},
		{Level: Fatal, Description: BadRecordMac},
		{Level: Fatal, Description: HandshakeFail},
	}

	for _, want := range cases {
		raw, err := want.Marshal()
		require.NoError(t, err)
		require.Len(t, raw, 2)

		var got Alert
		require.NoError(t, got.Unmarshal(raw))
		require.Equal(t, want, got)
	}
}

func TestAlertUnmarshalWrongLength(t *testing.T) {
	var a Alert
	require.Error(t, a.Unmarshal([]byte{0x01}))
	require.Error(t, a.Unmarshal([]byte{0x01, 0x02, 0x03}))
}

func TestAlertStringDoesNotPanicOnUnknown(t *testing.T) {
	a := Alert{Level: Level(99), Description: Description(99)}
	require.Contains(t, a.String(), "Invalid")
}
