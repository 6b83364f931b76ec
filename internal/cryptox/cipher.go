package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
)

func newGCM(secret string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

// EncryptString encrypts plaintext with AES-256-GCM under a key derived
// from secret and returns hex(nonce || ciphertext). A fresh random nonce
// is used for every call.
func EncryptString(plaintext, secret string) (string, error) {
	aesgcm, err := newGCM(secret)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())

	sealed := aesgcm.Seal(nonce, nonce, []byte(plaintext), nil)

	return hex.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString. It returns common.ErrDecryption if
// the input is not valid hex, is too short, or was produced under a
// different secret.
func DecryptString(ciphertext, secret string) (string, error) {
	aesgcm, err := newGCM(secret)
	if err != nil {
		return "", err
	}

	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	ns := aesgcm.NonceSize()
	if len(raw) < ns+aesgcm.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}

	plaintext, err := aesgcm.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	return string(plaintext), nil
}
