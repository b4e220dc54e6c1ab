package backoffice

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

const sealNonceSize = 24

var errUnsealable = errors.New("stored value cannot be unsealed")

// sealValue encrypts a persisted value with the configured seal key. The
// random nonce is prepended to the box.
func sealValue(key *[32]byte, plaintext []byte) ([]byte, error) {
	var nonce [sealNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, key), nil
}

// openValue reverses sealValue. Failure to open is treated by the caller as
// storage corruption, not as an authentication error.
func openValue(key *[32]byte, sealed []byte) ([]byte, error) {
	if len(sealed) < sealNonceSize {
		return nil, errUnsealable
	}
	var nonce [sealNonceSize]byte
	copy(nonce[:], sealed[:sealNonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[sealNonceSize:], &nonce, key)
	if !ok {
		return nil, errUnsealable
	}
	return plaintext, nil
}
