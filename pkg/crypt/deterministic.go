package crypt

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

// ErrNonceMismatch is returned when a deterministic ciphertext decrypts but
// its nonce was not derived from the recovered plaintext.
var ErrNonceMismatch = errors.New("synthetic nonce does not match plaintext")

// Deterministic is AES-256-GCM with a synthetic nonce:
// nonce = HMAC-SHA256(macKey, len(aad) || aad || plaintext)[:12].
//
// Identical (aad, plaintext) pairs always produce identical ciphertexts, so
// it must only be used where equality must survive encryption.
type Deterministic struct {
	aesgcm cipher.AEAD
	macKey []byte
}

var _ Cipher = (*Deterministic)(nil)

// NewDeterministic creates a deterministic cipher keyed from dataKey.
func NewDeterministic(dataKey []byte) (*Deterministic, error) {
	encKey, err := DeriveKey(dataKey, "inscricao/deterministic/enc")
	if err != nil {
		return nil, err
	}
	macKey, err := DeriveKey(dataKey, "inscricao/deterministic/mac")
	if err != nil {
		return nil, err
	}

	aesgcm, err := newGCM(encKey)
	if err != nil {
		return nil, err
	}

	return &Deterministic{aesgcm: aesgcm, macKey: macKey}, nil
}

func (d *Deterministic) syntheticNonce(aad, plainText []byte) []byte {
	mac := hmac.New(sha256.New, d.macKey)

	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(aad)))
	mac.Write(length[:])
	mac.Write(aad)
	mac.Write(plainText)

	return mac.Sum(nil)[:nonceSize]
}

func (d *Deterministic) Encrypt(aad, plainText []byte) ([]byte, error) {
	return seal(d.aesgcm, magicDeterministic, d.syntheticNonce(aad, plainText), aad, plainText), nil
}

func (d *Deterministic) Decrypt(aad, packedText []byte) ([]byte, error) {
	nonce, cipherText, err := unpack(d.aesgcm, magicDeterministic, packedText)
	if err != nil {
		return nil, err
	}

	plainText, err := d.aesgcm.Open(nil, nonce, cipherText, aad)
	if err != nil {
		return nil, err
	}

	if !hmac.Equal(nonce, d.syntheticNonce(aad, plainText)) {
		return nil, ErrNonceMismatch
	}
	return plainText, nil
}
