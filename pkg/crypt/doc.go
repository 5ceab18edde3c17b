// Package crypt provides the encryption used for data at rest and for
// short-lived cookie secrets.
//
// # Keys
//
// A single base64-encoded 256-bit data key is configured at startup. Every
// cipher derives its own subkey from it with HKDF, so the same data key can
// back several ciphers without key reuse:
//
//	dataKey, err := crypt.DecodeDataKey(os.Getenv("INSCRICAO_DATA_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Randomized Encryption
//
// Symmetric is AES-256-GCM with a random nonce. Encrypting the same value
// twice yields different ciphertexts:
//
//	cipher, err := crypt.NewSymmetric(dataKey)
//	ciphertext, err := cipher.Encrypt([]byte("context"), []byte("secret"))
//	plaintext, err := cipher.Decrypt([]byte("context"), ciphertext)
//
// # Deterministic Encryption
//
// Deterministic is AES-256-GCM with a synthetic nonce computed from the
// associated data and the plaintext. Equal inputs produce equal ciphertexts,
// which lets the database compare and index encrypted columns:
//
//	cipher, err := crypt.NewDeterministic(dataKey)
//	name, err := cipher.Encrypt([]byte("users.name"), []byte("alice"))
//	// SELECT * FROM users WHERE name = $1
package crypt
