// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package prf

import (
	"bytes"
	"testing"
)

func TestPreMasterSecretPSK(t *testing.T) {
	psk := []byte{0x01, 0x02, 0x03, 0x04}
	got := PreMasterSecretPSK(psk)

	want := []byte{0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04, 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(got, want) {
		t.Fatalf("PreMasterSecretPSK: got % 02x, want % 02x", got, want)
	}
}

func TestPRFDeterministicAndLengthBound(t *testing.T) {
	secret := []byte("test secret for PRF")
	label := []byte("test label")
	seed := []byte("test seed value")

	a, err := PRF(secret, label, seed, 48)
	if err != nil {
		t.Fatal(err)
	}
	b, err := PRF(secret, label, seed, 48)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("PRF is not deterministic for identical inputs")
	}
	if len(a) != 48 {
		t.Fatalf("PRF length: got %d, want 48", len(a))
	}

	c, err := PRF(secret, label, []byte("a different seed"), 48)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, c) {
		t.Fatal("PRF output did not change with the seed")
	}
}

func TestMasterSecretLength(t *testing.T) {
	preMasterSecret := PreMasterSecretPSK([]byte("shared-secret"))
	clientRandom := bytes.Repeat([]byte{0x11}, 32)
	serverRandom := bytes.Repeat([]byte{0x22}, 32)

	master, err := MasterSecret(preMasterSecret, clientRandom, serverRandom)
	if err != nil {
		t.Fatal(err)
	}
	if len(master) != 48 {
		t.Fatalf("MasterSecret length: got %d, want 48", len(master))
	}
}

func TestGenerateEncryptionKeysSplitsKeyBlock(t *testing.T) {
	masterSecret := bytes.Repeat([]byte{0x33}, 48)
	clientRandom := bytes.Repeat([]byte{0x11}, 32)
	serverRandom := bytes.Repeat([]byte{0x22}, 32)

	keys, err := GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom, 20, 16)
	if err != nil {
		t.Fatal(err)
	}

	if len(keys.ClientWriteMAC) != 20 || len(keys.ServerWriteMAC) != 20 {
		t.Fatalf("unexpected MAC key lengths: client=%d server=%d", len(keys.ClientWriteMAC), len(keys.ServerWriteMAC))
	}
	if len(keys.ClientWriteKey) != 16 || len(keys.ServerWriteKey) != 16 {
		t.Fatalf("unexpected bulk key lengths: client=%d server=%d", len(keys.ClientWriteKey), len(keys.ServerWriteKey))
	}
	if bytes.Equal(keys.ClientWriteMAC, keys.ServerWriteMAC) {
		t.Fatal("client and server MAC keys must differ")
	}
	if bytes.Equal(keys.ClientWriteKey, keys.ServerWriteKey) {
		t.Fatal("client and server write keys must differ")
	}
	if !bytes.Equal(keys.MasterSecret, masterSecret) {
		t.Fatal("GenerateEncryptionKeys must carry the master secret through unchanged")
	}
}

func TestVerifyDataClientServerDiffer(t *testing.T) {
	masterSecret := bytes.Repeat([]byte{0x44}, 48)
	transcript := []byte("fake handshake transcript bytes")

	clientVerify, err := VerifyDataClient(masterSecret, transcript)
	if err != nil {
		t.Fatal(err)
	}
	serverVerify, err := VerifyDataServer(masterSecret, transcript)
	if err != nil {
		t.Fatal(err)
	}

	if len(clientVerify) != 12 || len(serverVerify) != 12 {
		t.Fatalf("verify data length: client=%d server=%d, want 12", len(clientVerify), len(serverVerify))
	}
	if bytes.Equal(clientVerify, serverVerify) {
		t.Fatal("client and server Finished verify data must differ")
	}

	again, err := VerifyDataClient(masterSecret, transcript)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(clientVerify, again) {
		t.Fatal("VerifyDataClient is not deterministic for identical inputs")
	}

	otherTranscript := []byte("a different handshake transcript")
	differentVerify, err := VerifyDataClient(masterSecret, otherTranscript)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(clientVerify, differentVerify) {
		t.Fatal("VerifyDataClient must depend on the transcript")
	}
}
