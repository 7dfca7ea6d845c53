// Package crypto implements symmetric sealing of stored preference values
// using NaCl primitives (XSalsa20 and Poly1305).
package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Seal encrypts value with the secret key. The random nonce is prepended to
// the returned ciphertext.
func Seal(value []byte, secretKey *[32]byte) ([]byte, error) {
	nonce := new([nonceSize]byte)
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed generating nonce: %w", err)
	}

	return secretbox.Seal(nonce[:], value, nonce, secretKey), nil
}

// Open decrypts a value produced by Seal with the same secret key.
func Open(sealed []byte, secretKey *[32]byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, errors.New("sealed value is too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	value, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, secretKey)
	if !ok {
		return nil, errors.New("failed decrypting value")
	}

	return value, nil
}

// DecodeKey decodes and validates a base58-encoded encryption key.
func DecodeKey(keyEnc string) (*[32]byte, error) {
	keyDec, err := base58.Decode(keyEnc)
	if err != nil {
		return nil, err
	}
	if len(keyDec) != 32 {
		return nil, fmt.Errorf("expected key length of 32; got %d", len(keyDec))
	}

	var key [32]byte
	copy(key[:], keyDec)

	return &key, nil
}
