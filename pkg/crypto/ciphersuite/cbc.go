// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is the only MAC this suite family supports
	"encoding/binary"
	"io"

	"github.com/dtlspsk/client/pkg/crypto/prf"
	"github.com/dtlspsk/client/pkg/protocol/recordlayer"
)

const (
	macLength  = 20 // HMAC-SHA1 output size
	blockSize  = aes.BlockSize
)

// cbc implements the TLS_PSK_WITH_AES_{128,256}_CBC_SHA cipher suites:
// AES-CBC bulk encryption with an explicit per-record IV and HMAC-SHA1
// integrity.
type cbc struct {
	id ID

	initialized bool

	writeMACKey, readMACKey []byte
	writeBlock, readBlock   cipher.Block
}

func newCBC(id ID) *cbc {
	return &cbc{id: id}
}

func (c *cbc) ID() ID { return c.id }

func (c *cbc) String() string { return c.id.String() }

func (c *cbc) IsInitialized() bool { return c.initialized }

// Init derives the four keys of the TLS 1.0 key block and builds the
// AES block ciphers for both directions. Client write keys are used for
// Encrypt (this is a client-only implementation); server write keys are
// used for Decrypt.
func (c *cbc) Init(masterSecret, clientRandom, serverRandom []byte) error {
	keyLen := KeyLength(c.id)

	keys, err := prf.GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom, MacKeyLength, keyLen)
	if err != nil {
		return err
	}

	writeBlock, err := aes.NewCipher(keys.ClientWriteKey)
	if err != nil {
		return err
	}
	readBlock, err := aes.NewCipher(keys.ServerWriteKey)
	if err != nil {
		return err
	}

	c.writeMACKey = keys.ClientWriteMAC
	c.readMACKey = keys.ServerWriteMAC
	c.writeBlock = writeBlock
	c.readBlock = readBlock
	c.initialized = true
	return nil
}

// Encrypt MACs the fragment, pads it to a block boundary, and encrypts
// it under a fresh random IV.
func (c *cbc) Encrypt(header *recordlayer.Header, fragment []byte) ([]byte, error) {
	if !c.initialized {
		return nil, errCipherSuiteNotInitialized
	}

	mac := computeMAC(c.writeMACKey, header, fragment)

	payload := make([]byte, 0, len(fragment)+len(mac)+blockSize)
	payload = append(payload, fragment...)
	payload = append(payload, mac...)

	padLen := blockSize - ((len(payload) + 1) % blockSize)
	for i := 0; i < padLen; i++ {
		payload = append(payload, byte(padLen))
	}
	payload = append(payload, byte(padLen))

	iv := make([]byte, blockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	ciphertext := make([]byte, len(payload))
	cipher.NewCBCEncrypter(c.writeBlock, iv).CryptBlocks(ciphertext, payload)

	out := *header
	out.ContentLen = uint16(blockSize + len(ciphertext)) //nolint:gosec
	headerBytes, err := out.Marshal()
	if err != nil {
		return nil, err
	}

	record := make([]byte, 0, len(headerBytes)+blockSize+len(ciphertext))
	record = append(record, headerBytes...)
	record = append(record, iv...)
	record = append(record, ciphertext...)
	return record, nil
}

// Decrypt performs constant-time padding and MAC verification that
// never reveals, by timing or by a distinguishable error, whether
// padding or the MAC was the failure.
func (c *cbc) Decrypt(raw []byte) ([]byte, error) {
	if !c.initialized {
		return nil, errCipherSuiteNotInitialized
	}

	var header recordlayer.Header
	if err := header.Unmarshal(raw); err != nil {
		return nil, err
	}
	if len(raw)-recordlayer.FixedHeaderSize < int(header.ContentLen) {
		return nil, recordlayer.ErrBufferTooSmall
	}

	fragment := raw[recordlayer.FixedHeaderSize : recordlayer.FixedHeaderSize+int(header.ContentLen)]
	if len(fragment) <= blockSize || len(fragment)%blockSize != 0 {
		return nil, errMalformedRecord
	}

	iv := fragment[:blockSize]
	ciphertext := fragment[blockSize:]

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.readBlock, iv).CryptBlocks(plaintext, ciphertext)

	fragmentLen, ok := verifyPaddingAndMAC(c.readMACKey, &header, plaintext)
	if !ok {
		return nil, errMalformedRecord
	}

	newHeader := header
	newHeader.ContentLen = uint16(fragmentLen) //nolint:gosec
	headerBytes, err := newHeader.Marshal()
	if err != nil {
		return nil, err
	}

	return append(headerBytes, plaintext[:fragmentLen]...), nil
}

// computeMAC is HMAC-SHA1 over
// epoch||seq||type||version||fragment_len||fragment.
func computeMAC(key []byte, header *recordlayer.Header, fragment []byte) []byte {
	h := hmac.New(sha1.New, key)
	writeMACHeader(h, header, len(fragment))
	h.Write(fragment)
	return h.Sum(nil)
}

func writeMACHeader(h io.Writer, header *recordlayer.Header, fragmentLen int) {
	var seq [8]byte
	binary.BigEndian.PutUint16(seq[0:2], header.Epoch)
	seq[2] = byte(header.SequenceNumber >> 40)
	seq[3] = byte(header.SequenceNumber >> 32)
	seq[4] = byte(header.SequenceNumber >> 24)
	seq[5] = byte(header.SequenceNumber >> 16)
	seq[6] = byte(header.SequenceNumber >> 8)
	seq[7] = byte(header.SequenceNumber)
	h.Write(seq[:])
	h.Write([]byte{byte(header.ContentType)})
	h.Write([]byte{header.Version.Major, header.Version.Minor})
	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], uint16(fragmentLen)) //nolint:gosec
	h.Write(lenBytes[:])
}

// verifyPaddingAndMAC checks padding and the MAC in constant time: every
// byte of plaintext is touched regardless of outcome, and the two
// validity flags are combined with bitwise OR rather than short-circuit
// boolean logic.
func verifyPaddingAndMAC(macKey []byte, header *recordlayer.Header, plaintext []byte) (fragmentLen int, ok bool) {
	n := len(plaintext)
	if n == 0 {
		return 0, false
	}

	padLen := int(plaintext[n-1])

	var badPadding byte
	if padLen+1 > n {
		badPadding = 1
	}
	// safePadLen bounds the window the loop below indexes into; actual
	// out-of-range padLen values are already flagged in badPadding.
	safePadLen := padLen
	if safePadLen >= n {
		safePadLen = n - 1
	}

	// Touch every byte of plaintext, regardless of where the padding
	// region turns out to be, so elapsed time does not depend on padLen.
	padStart := n - 1 - safePadLen
	for i := 0; i < n-1; i++ {
		inPadZone := boolToByte(i >= padStart)
		mismatch := boolToByte(plaintext[i] != byte(padLen))
		badPadding |= mismatch & inPadZone
	}

	macEnd := n - 1 - safePadLen
	macStart := macEnd - macLength

	var badMAC byte
	if macStart < 0 {
		badMAC = 1
		macStart, macEnd = 0, 0
	}

	computed := computeMAC(macKey, header, plaintext[:macStart])
	badMAC |= constantTimeCompareBad(computed, plaintext[macStart:macEnd])

	if badPadding != 0 || badMAC != 0 {
		return 0, false
	}
	return macStart, true
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// constantTimeCompareBad returns 0 if a and b are byte-equal and of
// equal length, 1 otherwise; it always iterates the full length of a
// rather than returning early on the first mismatch.
func constantTimeCompareBad(a, b []byte) byte {
	if len(a) != len(b) {
		return 1
	}
	var acc byte
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	if acc != 0 {
		return 1
	}
	return 0
}
