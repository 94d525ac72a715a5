package crypt_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ravenoss/rot/internal/crypt"
)

func testOptions() crypt.Options {
	opts := crypt.DefaultOptions()
	// Keep the production values out of test fixtures.
	opts.Salt = []byte("test-salt")
	opts.Iterations = 1000

	return opts
}

func newCipher(t *testing.T, password string, opts crypt.Options) *crypt.Cipher {
	t.Helper()

	c, err := crypt.New(password, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return c
}

func TestDeriveKeyDeterministic(t *testing.T) {
	t.Parallel()

	first, err := crypt.DeriveKey("correct horse", []byte("salt"), 1000)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}

	second, err := crypt.DeriveKey("correct horse", []byte("salt"), 1000)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("identical inputs produced different keys")
	}

	if len(first) != crypt.KeySize {
		t.Errorf("key length = %d, want %d", len(first), crypt.KeySize)
	}

	other, err := crypt.DeriveKey("correct horse", []byte("other salt"), 1000)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}

	if bytes.Equal(first, other) {
		t.Error("different salts produced the same key")
	}
}

func TestDeriveKeyValidation(t *testing.T) {
	t.Parallel()

	if _, err := crypt.DeriveKey("pw", nil, 1000); !errors.Is(err, crypt.ErrKeyDerivation) {
		t.Errorf("empty salt: error = %v, want ErrKeyDerivation", err)
	}

	if _, err := crypt.DeriveKey("pw", []byte("salt"), 0); !errors.Is(err, crypt.ErrKeyDerivation) {
		t.Errorf("zero iterations: error = %v, want ErrKeyDerivation", err)
	}
}

func TestNewRejectsBadNonce(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.Nonce = []byte{1, 2, 3}

	if _, err := crypt.New("pw", opts); !errors.Is(err, crypt.ErrCipher) {
		t.Errorf("short nonce: error = %v, want ErrCipher", err)
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	c := newCipher(t, "hunter2", testOptions())

	payloads := [][]byte{
		[]byte(""),
		[]byte("x"),
		[]byte("HELLO WORLD!"),
		bytes.Repeat([]byte{0xAB}, 4096),
	}

	for _, plaintext := range payloads {
		sealed := c.Seal(0, plaintext)

		if len(sealed) != len(plaintext)+c.Overhead() {
			t.Errorf("sealed length = %d, want %d", len(sealed), len(plaintext)+c.Overhead())
		}

		opened, err := c.Open(0, sealed)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}

		if !bytes.Equal(opened, plaintext) {
			t.Errorf("round trip: got %q, want %q", opened, plaintext)
		}
	}
}

func TestSealDeterministicPerKey(t *testing.T) {
	t.Parallel()

	first := newCipher(t, "hunter2", testOptions())
	second := newCipher(t, "hunter2", testOptions())

	plaintext := []byte("same password, same nonce, same bytes")

	if !bytes.Equal(first.Seal(0, plaintext), second.Seal(0, plaintext)) {
		t.Error("two ciphers with identical parameters sealed differently")
	}
}

func TestOpenWrongPassword(t *testing.T) {
	t.Parallel()

	sealed := newCipher(t, "hunter2", testOptions()).Seal(0, []byte("secret payload"))

	if _, err := newCipher(t, "*******", testOptions()).Open(0, sealed); !errors.Is(err, crypt.ErrAuthentication) {
		t.Errorf("wrong password: error = %v, want ErrAuthentication", err)
	}
}

// TestOpenTamperedChunk flips every byte position of a sealed chunk in turn;
// each mutation must fail authentication, never yield wrong plaintext.
func TestOpenTamperedChunk(t *testing.T) {
	t.Parallel()

	c := newCipher(t, "hunter2", testOptions())
	sealed := c.Seal(0, []byte("HELLO WORLD!"))

	for i := range sealed {
		mutated := append([]byte(nil), sealed...)
		mutated[i] ^= 0x01

		if _, err := c.Open(0, mutated); !errors.Is(err, crypt.ErrAuthentication) {
			t.Fatalf("byte %d flipped: error = %v, want ErrAuthentication", i, err)
		}
	}
}

func TestOpenTruncatedChunk(t *testing.T) {
	t.Parallel()

	c := newCipher(t, "hunter2", testOptions())
	sealed := c.Seal(0, []byte("HELLO WORLD!"))

	if _, err := c.Open(0, sealed[:c.Overhead()-1]); !errors.Is(err, crypt.ErrAuthentication) {
		t.Errorf("chunk shorter than tag: error = %v, want ErrAuthentication", err)
	}
}

func TestNonceFixedIgnoresIndex(t *testing.T) {
	t.Parallel()

	c := newCipher(t, "hunter2", testOptions())
	plaintext := []byte("chunk body")

	if !bytes.Equal(c.Seal(0, plaintext), c.Seal(7, plaintext)) {
		t.Error("fixed-nonce mode sealed the same plaintext differently across indexes")
	}
}

func TestNonceCounterVariesPerChunk(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.NonceMode = crypt.NonceCounter

	c := newCipher(t, "hunter2", opts)
	plaintext := []byte("chunk body")

	first := c.Seal(0, plaintext)
	second := c.Seal(1, plaintext)

	if bytes.Equal(first, second) {
		t.Error("counter mode sealed the same plaintext identically for two indexes")
	}

	// Each chunk still opens at its own index and nowhere else.
	for index, sealed := range [][]byte{first, second} {
		opened, err := c.Open(uint64(index), sealed) //nolint:gosec // small non-negative index
		if err != nil {
			t.Fatalf("Open at index %d: %v", index, err)
		}

		if !bytes.Equal(opened, plaintext) {
			t.Errorf("index %d: got %q, want %q", index, opened, plaintext)
		}
	}

	if _, err := c.Open(1, first); !errors.Is(err, crypt.ErrAuthentication) {
		t.Errorf("chunk opened at the wrong index: error = %v, want ErrAuthentication", err)
	}
}

func TestDefaultOptionsShape(t *testing.T) {
	t.Parallel()

	opts := crypt.DefaultOptions()

	if len(opts.Nonce) != crypt.NonceSize {
		t.Errorf("default nonce length = %d, want %d", len(opts.Nonce), crypt.NonceSize)
	}

	if opts.Iterations < 100_000 {
		t.Errorf("default iterations = %d, want at least 100000", opts.Iterations)
	}

	if opts.NonceMode != crypt.NonceFixed {
		t.Error("default nonce mode is not NonceFixed")
	}

	c := newCipher(t, "hunter2", opts)

	if c.Overhead() != crypt.TagSize {
		t.Errorf("Overhead() = %d, want %d", c.Overhead(), crypt.TagSize)
	}
}
