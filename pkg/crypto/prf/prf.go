// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package prf implements the TLS 1.0 pseudorandom function and the
// handful of secrets derived from it: the PSK premaster secret, the
// master secret, the key block and the Finished verify data.
package prf

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // TLS 1.0's PRF mandates MD5 as one half of its dual construction
	"crypto/sha1" //nolint:gosec // ...and SHA1 as the other half
	"encoding/binary"
	"hash"
)

// EncryptionKeys is the split key block, in the order it is produced:
// client MAC, server MAC, client bulk key, server bulk key.
type EncryptionKeys struct {
	MasterSecret   []byte
	ClientWriteMAC []byte
	ServerWriteMAC []byte
	ClientWriteKey []byte
	ServerWriteKey []byte
}

// PreMasterSecretPSK builds the PSK premaster secret:
// u16(|psk|) || 0^|psk| || u16(|psk|) || psk.
func PreMasterSecretPSK(psk []byte) []byte {
	n := len(psk)
	out := make([]byte, 0, 2+n+2+n)
	out = appendUint16(out, n)
	out = append(out, make([]byte, n)...)
	out = appendUint16(out, n)
	out = append(out, psk...)
	return out
}

// MasterSecret derives the 48-byte master secret from a premaster secret
// and the two handshake randoms.
func MasterSecret(preMasterSecret, clientRandom, serverRandom []byte) ([]byte, error) {
	seed := append(append([]byte{}, clientRandom...), serverRandom...)
	return PRF(preMasterSecret, []byte("master secret"), seed, 48)
}

// GenerateEncryptionKeys derives the key block and splits it into the
// four keys, in key-block order.
func GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom []byte, macKeyLen, bulkKeyLen int) (*EncryptionKeys, error) {
	seed := append(append([]byte{}, serverRandom...), clientRandom...)
	total := 2*macKeyLen + 2*bulkKeyLen
	keyBlock, err := PRF(masterSecret, []byte("key expansion"), seed, total)
	if err != nil {
		return nil, err
	}

	offset := 0
	next := func(n int) []byte {
		v := keyBlock[offset : offset+n]
		offset += n
		return v
	}

	return &EncryptionKeys{
		MasterSecret:   append([]byte{}, masterSecret...),
		ClientWriteMAC: next(macKeyLen),
		ServerWriteMAC: next(macKeyLen),
		ClientWriteKey: next(bulkKeyLen),
		ServerWriteKey: next(bulkKeyLen),
	}, nil
}

// VerifyDataClient computes the client's own Finished verify data:
// PRF(master, "client finished", MD5(transcript) || SHA1(transcript), 12).
func VerifyDataClient(masterSecret, transcript []byte) ([]byte, error) {
	return verifyData(masterSecret, "client finished", transcript)
}

// VerifyDataServer computes the verify data this client expects from the
// server's Finished message, using the same transcript-hash construction.
func VerifyDataServer(masterSecret, transcript []byte) ([]byte, error) {
	return verifyData(masterSecret, "server finished", transcript)
}

func verifyData(masterSecret []byte, label string, transcript []byte) ([]byte, error) {
	md5Sum := md5.Sum(transcript)     //nolint:gosec
	sha1Sum := sha1.Sum(transcript)   //nolint:gosec
	seed := append(append([]byte{}, md5Sum[:]...), sha1Sum[:]...)
	return PRF(masterSecret, []byte(label), seed, 12)
}

// PRF implements the TLS 1.0 dual pseudorandom function:
//
//	PRF(secret, label, seed, n) = P_MD5(S1, label||seed) XOR P_SHA1(S2, label||seed)
//
// truncated to n bytes, where S1 and S2 are the two halves of secret; if
// |secret| is odd, the middle byte is included in both halves.
func PRF(secret, label, seed []byte, n int) ([]byte, error) {
	s1, s2 := splitSecret(secret)

	labelSeed := append(append([]byte{}, label...), seed...)

	a := pHash(s1, labelSeed, n, md5.New)
	b := pHash(s2, labelSeed, n, sha1.New)

	out := make([]byte, n)
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

func splitSecret(secret []byte) (s1, s2 []byte) {
	half := (len(secret) + 1) / 2
	s1 = secret[:half]
	s2 = secret[len(secret)-half:]
	return s1, s2
}

// pHash implements P_hash(secret, seed, n, H): A(0) = seed,
// A(i) = HMAC_H(secret, A(i-1)), output block i = HMAC_H(secret, A(i) || seed).
func pHash(secret, seed []byte, n int, newHash func() hash.Hash) []byte {
	out := make([]byte, 0, n+newHashSize(newHash))

	a := seed
	for len(out) < n {
		aMac := hmac.New(newHash, secret)
		aMac.Write(a)
		a = aMac.Sum(nil)

		outMac := hmac.New(newHash, secret)
		outMac.Write(a)
		outMac.Write(seed)
		out = append(out, outMac.Sum(nil)...)
	}
	return out[:n]
}

func newHashSize(newHash func() hash.Hash) int {
	return newHash().Size()
}

func appendUint16(b []byte, v int) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v)) //nolint:gosec
	return append(b, tmp[:]...)
}
