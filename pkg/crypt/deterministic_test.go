package crypt

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicEncryptionIsStable(t *testing.T) {
	cipher, err := NewDeterministic(testDataKey())
	require.NoError(t, err)

	aad := []byte("users.name")

	first, err := cipher.Encrypt(aad, []byte("alice"))
	require.NoError(t, err)
	second, err := cipher.Encrypt(aad, []byte("alice"))
	require.NoError(t, err)
	other, err := cipher.Encrypt(aad, []byte("bob"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Equal(t, magicDeterministic, first[0])

	plain, err := cipher.Decrypt(aad, first)
	require.NoError(t, err)
	assert.Equal(t, "alice", string(plain))
}

func TestDeterministicBindsAAD(t *testing.T) {
	cipher, err := NewDeterministic(testDataKey())
	require.NoError(t, err)

	a, _ := cipher.Encrypt([]byte("row-a"), []byte("10"))
	b, _ := cipher.Encrypt([]byte("row-b"), []byte("10"))
	assert.NotEqual(t, a, b, "same value under different AAD must differ")

	_, err = cipher.Decrypt([]byte("row-b"), a)
	assert.Error(t, err)
}

func TestDeterministicAADLengthIsFramed(t *testing.T) {
	cipher, err := NewDeterministic(testDataKey())
	require.NoError(t, err)

	// "ab"+"c" and "a"+"bc" must not collide.
	x, _ := cipher.Encrypt([]byte("ab"), []byte("c"))
	y, _ := cipher.Encrypt([]byte("a"), []byte("bc"))
	assert.NotEqual(t, x[1:1+nonceSize], y[1:1+nonceSize])
}

func TestDeterministicRejectsOtherFormats(t *testing.T) {
	det, err := NewDeterministic(testDataKey())
	require.NoError(t, err)
	sym, err := NewSymmetric(testDataKey())
	require.NoError(t, err)

	randomized, err := sym.Encrypt(nil, []byte("alice"))
	require.NoError(t, err)

	_, err = det.Decrypt(nil, randomized)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestDeterministicKeysAreIndependent(t *testing.T) {
	other := bytes.Repeat([]byte{0x42}, KeySize)

	c1, _ := NewDeterministic(testDataKey())
	c2, _ := NewDeterministic(other)

	a, _ := c1.Encrypt(nil, []byte("alice"))
	b, _ := c2.Encrypt(nil, []byte("alice"))
	assert.NotEqual(t, a, b)

	_, err := c2.Decrypt(nil, a)
	assert.Error(t, err)
}

func TestDecodeDataKey(t *testing.T) {
	encoded, err := GenerateDataKey()
	require.NoError(t, err)

	key, err := DecodeDataKey(encoded)
	require.NoError(t, err)
	assert.Len(t, key, KeySize)

	_, err = DecodeDataKey("not base64!")
	assert.Error(t, err)

	_, err = DecodeDataKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}

func TestDeriveKeyIsPurposeBound(t *testing.T) {
	a, err := DeriveKey(testDataKey(), "one")
	require.NoError(t, err)
	b, err := DeriveKey(testDataKey(), "two")
	require.NoError(t, err)

	assert.Len(t, a, KeySize)
	assert.NotEqual(t, a, b)

	_, err = DeriveKey(nil, "one")
	assert.Error(t, err)
}
