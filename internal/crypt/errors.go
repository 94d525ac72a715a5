package crypt

import "errors"

var (
	// ErrKeyDerivation is returned when the key derivation parameters are unusable.
	ErrKeyDerivation = errors.New("key derivation failed")
	// ErrCipher is returned when the AEAD rejects the derived key or the configured nonce.
	ErrCipher = errors.New("initializing cipher failed")
	// ErrAuthentication is returned when a chunk's authentication tag does not verify.
	ErrAuthentication = errors.New("authentication failed: wrong password or corrupted data")
)
