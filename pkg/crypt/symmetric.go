package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

const nonceSize = 12

const (
	magicRandom        = byte('G')
	magicDeterministic = byte('S')
)

var (
	// ErrMalformed is returned when a ciphertext is too short or carries an
	// unexpected version byte.
	ErrMalformed = errors.New("malformed ciphertext")
)

// Symmetric is AES-256-GCM with a random nonce per message.
type Symmetric struct {
	aesgcm cipher.AEAD
}

var _ Cipher = (*Symmetric)(nil)

// NewSymmetric creates a randomized cipher keyed from dataKey.
func NewSymmetric(dataKey []byte) (*Symmetric, error) {
	key, err := DeriveKey(dataKey, "inscricao/symmetric")
	if err != nil {
		return nil, err
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	return &Symmetric{aesgcm: aesgcm}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(c)
}

func (s *Symmetric) Encrypt(aad, plainText []byte) ([]byte, error) {
	// Never use more than 2^32 random nonces with a given key because of
	// the risk of a repeat.
	nonce, err := RandomBytes(nonceSize)
	if err != nil {
		return nil, err
	}

	return seal(s.aesgcm, magicRandom, nonce, aad, plainText), nil
}

func (s *Symmetric) Decrypt(aad, packedText []byte) ([]byte, error) {
	nonce, cipherText, err := unpack(s.aesgcm, magicRandom, packedText)
	if err != nil {
		return nil, err
	}

	return s.aesgcm.Open(nil, nonce, cipherText, aad)
}

// seal packs "#{magic}#{nonce}#{ctext}#{tag}".
func seal(aead cipher.AEAD, magic byte, nonce, aad, plainText []byte) []byte {
	out := make([]byte, 1+nonceSize, 1+nonceSize+len(plainText)+aead.Overhead())
	out[0] = magic
	copy(out[1:], nonce)

	return aead.Seal(out, nonce, plainText, aad)
}

func unpack(aead cipher.AEAD, magic byte, packedText []byte) (nonce, cipherText []byte, err error) {
	if len(packedText) < 1+nonceSize+aead.Overhead() || packedText[0] != magic {
		return nil, nil, ErrMalformed
	}

	return packedText[1 : 1+nonceSize], packedText[1+nonceSize:], nil
}
