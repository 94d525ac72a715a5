package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length produced by DeriveKey.
	KeySize = 32
	// NonceSize is the GCM nonce length the codec operates with.
	NonceSize = 12
	// TagSize is the GCM authentication tag appended to every sealed chunk.
	TagSize = 16
	// DefaultIterations is the PBKDF2 iteration count.
	DefaultIterations = 100_000
	// DefaultFileChunkSize is the plaintext chunk size for local codec runs.
	DefaultFileChunkSize = 4096
)

// Fixed application-wide cryptographic constants. Objects and files sealed by
// earlier releases used exactly these values, so they must not change.
//
//nolint:gochecknoglobals
var (
	// DefaultSalt seeds the password KDF. Application-wide rather than
	// per-file: the same password always reproduces the same key.
	DefaultSalt = []byte("5462d05a-cbf4-465a-956f-2b98770beabb")

	// DefaultNonce is the base GCM nonce.
	DefaultNonce = []byte{200, 200, 200, 200, 200, 200, 200, 200, 200, 200, 200, 200}

	// DefaultAAD is the associated data authenticated with every chunk.
	DefaultAAD = []byte("cfaf0256-beec-4495-9175-b9800dd2e2d7")
)

// NonceMode selects how the per-chunk GCM nonce is produced.
type NonceMode int

const (
	// NonceFixed seals every chunk with the base nonce. Required for
	// compatibility with previously sealed data; any two chunks sealed with
	// the same password then share key and nonce.
	NonceFixed NonceMode = iota

	// NonceCounter derives a distinct nonce per chunk by adding the chunk
	// index to the trailing 64 bits of the base nonce.
	NonceCounter
)

// Options carries the cryptographic parameters for a Cipher. The zero value
// is not usable; start from DefaultOptions and override as needed.
type Options struct {
	// Salt seeds the password KDF.
	Salt []byte

	// Iterations is the PBKDF2 iteration count.
	Iterations int

	// Nonce is the base GCM nonce, NonceSize bytes.
	Nonce []byte

	// AAD is authenticated alongside every chunk.
	AAD []byte

	// NonceMode selects fixed or per-chunk nonces.
	NonceMode NonceMode
}

// DefaultOptions returns the production parameters: fixed salt, nonce and
// associated data, and fixed-nonce sealing.
func DefaultOptions() Options {
	return Options{
		Salt:       DefaultSalt,
		Iterations: DefaultIterations,
		Nonce:      DefaultNonce,
		AAD:        DefaultAAD,
		NonceMode:  NonceFixed,
	}
}

// DeriveKey stretches password into a KeySize-byte key with
// PBKDF2-HMAC-SHA256. Deterministic: identical inputs always yield identical
// key bytes, which is what lets decrypt-on-download reproduce the exact key
// used at encrypt-on-upload.
func DeriveKey(password string, salt []byte, iterations int) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", ErrKeyDerivation)
	}

	if iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", ErrKeyDerivation, iterations)
	}

	return pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New), nil
}

// Cipher seals and opens chunks with AES-256-GCM under a password-derived
// key. A Cipher is bound to one key and one nonce policy for its lifetime,
// is stateless per call, and is safe for concurrent use.
type Cipher struct {
	aead  cipher.AEAD
	nonce []byte
	aad   []byte
	mode  NonceMode
}

// New derives the key for password and prepares the AEAD.
func New(password string, opts Options) (*Cipher, error) {
	key, err := DeriveKey(password, opts.Salt, opts.Iterations)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}

	if len(opts.Nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrCipher, aead.NonceSize(), len(opts.Nonce))
	}

	return &Cipher{
		aead:  aead,
		nonce: append([]byte(nil), opts.Nonce...),
		aad:   append([]byte(nil), opts.AAD...),
		mode:  opts.NonceMode,
	}, nil
}

// Seal encrypts chunk and appends the authentication tag. index is the
// zero-based chunk position within the stream, consulted only in
// NonceCounter mode.
func (c *Cipher) Seal(index uint64, chunk []byte) []byte {
	return c.aead.Seal(nil, c.nonceFor(index), chunk, c.aad)
}

// Open verifies and decrypts a sealed chunk. It fails closed with
// ErrAuthentication when the tag does not verify: wrong password, tampered
// data, or a misaligned chunk boundary.
func (c *Cipher) Open(index uint64, chunk []byte) ([]byte, error) {
	plain, err := c.aead.Open(nil, c.nonceFor(index), chunk, c.aad)
	if err != nil {
		return nil, ErrAuthentication
	}

	return plain, nil
}

// Overhead reports the per-chunk ciphertext expansion, i.e. the tag length.
func (c *Cipher) Overhead() int {
	return c.aead.Overhead()
}

// nonceFor returns the nonce for the chunk at index under the configured
// mode. NonceFixed always returns the base nonce.
func (c *Cipher) nonceFor(index uint64) []byte {
	if c.mode == NonceFixed {
		return c.nonce
	}

	nonce := append([]byte(nil), c.nonce...)
	tail := nonce[len(nonce)-8:]
	binary.BigEndian.PutUint64(tail, binary.BigEndian.Uint64(tail)+index)

	return nonce
}
