package crypt_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/ravenoss/rot/internal/crypt"
)

// pattern returns n bytes of a position-dependent pattern.
func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}

	return data
}

func ceilDiv(n, c int) int {
	return (n + c - 1) / c
}

func TestStreamRoundTrip(t *testing.T) {
	t.Parallel()

	const chunkSize = 64

	c := newCipher(t, "hunter2", testOptions())

	sizes := []int{0, 1, chunkSize - 1, chunkSize, chunkSize + 1, 2 * chunkSize, 2*chunkSize + 5, 10 * chunkSize}

	for _, size := range sizes {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			t.Parallel()

			input := pattern(size)

			var sealed bytes.Buffer
			if err := c.Encrypt(&sealed, bytes.NewReader(input), int64(size), chunkSize); err != nil {
				t.Fatalf("Encrypt: %v", err)
			}

			wantLen := size + ceilDiv(size, chunkSize)*c.Overhead()
			if sealed.Len() != wantLen {
				t.Errorf("ciphertext length = %d, want %d", sealed.Len(), wantLen)
			}

			var opened bytes.Buffer
			if err := c.Decrypt(&opened, bytes.NewReader(sealed.Bytes()), int64(sealed.Len()), chunkSize); err != nil {
				t.Fatalf("Decrypt: %v", err)
			}

			if !bytes.Equal(opened.Bytes(), input) {
				t.Error("decrypted stream differs from input")
			}
		})
	}
}

// TestStreamHelloWorld repeats "HELLO WORLD!" until the payload exceeds two
// chunk sizes and verifies the byte-for-byte round trip and the chunk count.
func TestStreamHelloWorld(t *testing.T) {
	t.Parallel()

	const chunkSize = 32

	var input []byte
	for len(input) <= 2*chunkSize {
		input = append(input, []byte("HELLO WORLD!")...)
	}

	c := newCipher(t, "hunter2", testOptions())

	var sealed bytes.Buffer
	if err := c.Encrypt(&sealed, bytes.NewReader(input), int64(len(input)), chunkSize); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	wantChunks := ceilDiv(len(input), chunkSize)

	gotChunks := sealed.Len() / (chunkSize + c.Overhead())
	if sealed.Len()%(chunkSize+c.Overhead()) != 0 {
		gotChunks++
	}

	if gotChunks != wantChunks {
		t.Errorf("processed %d chunks, want %d", gotChunks, wantChunks)
	}

	var opened bytes.Buffer
	if err := c.Decrypt(&opened, bytes.NewReader(sealed.Bytes()), int64(sealed.Len()), chunkSize); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	if !bytes.Equal(opened.Bytes(), input) {
		t.Error("round trip corrupted the payload")
	}
}

func TestStreamCounterModeRoundTrip(t *testing.T) {
	t.Parallel()

	const chunkSize = 48

	opts := testOptions()
	opts.NonceMode = crypt.NonceCounter

	c := newCipher(t, "hunter2", opts)

	input := pattern(5*chunkSize + 3)

	var sealed bytes.Buffer
	if err := c.Encrypt(&sealed, bytes.NewReader(input), int64(len(input)), chunkSize); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	var opened bytes.Buffer
	if err := c.Decrypt(&opened, bytes.NewReader(sealed.Bytes()), int64(sealed.Len()), chunkSize); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	if !bytes.Equal(opened.Bytes(), input) {
		t.Error("counter-mode round trip corrupted the payload")
	}

	// Two identical plaintext chunks must produce distinct ciphertext chunks.
	same := bytes.Repeat([]byte{0x42}, 2*chunkSize)

	sealed.Reset()

	if err := c.Encrypt(&sealed, bytes.NewReader(same), int64(len(same)), chunkSize); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	blockSize := chunkSize + c.Overhead()
	if bytes.Equal(sealed.Bytes()[:blockSize], sealed.Bytes()[blockSize:2*blockSize]) {
		t.Error("counter mode produced identical ciphertext for identical chunks")
	}
}

func TestStreamDecryptTampered(t *testing.T) {
	t.Parallel()

	const chunkSize = 64

	c := newCipher(t, "hunter2", testOptions())

	input := pattern(3*chunkSize + 7)

	var sealed bytes.Buffer
	if err := c.Encrypt(&sealed, bytes.NewReader(input), int64(len(input)), chunkSize); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// One flip per region: first chunk, middle chunk, final short chunk.
	for _, offset := range []int{3, chunkSize + c.Overhead() + 5, sealed.Len() - 1} {
		mutated := append([]byte(nil), sealed.Bytes()...)
		mutated[offset] ^= 0x80

		err := c.Decrypt(&bytes.Buffer{}, bytes.NewReader(mutated), int64(len(mutated)), chunkSize)
		if !errors.Is(err, crypt.ErrAuthentication) {
			t.Errorf("offset %d flipped: error = %v, want ErrAuthentication", offset, err)
		}
	}
}

func TestStreamDecryptTruncated(t *testing.T) {
	t.Parallel()

	const chunkSize = 64

	c := newCipher(t, "hunter2", testOptions())

	input := pattern(2 * chunkSize)

	var sealed bytes.Buffer
	if err := c.Encrypt(&sealed, bytes.NewReader(input), int64(len(input)), chunkSize); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// The source claims the full length but delivers one byte less.
	truncated := sealed.Bytes()[:sealed.Len()-1]

	err := c.Decrypt(&bytes.Buffer{}, bytes.NewReader(truncated), int64(sealed.Len()), chunkSize)
	if err == nil {
		t.Fatal("Decrypt succeeded on a truncated source")
	}

	if errors.Is(err, crypt.ErrAuthentication) {
		t.Errorf("truncated source reported as authentication failure: %v", err)
	}
}

func TestOutputName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		decrypt bool
		want    string
		wantErr bool
	}{
		{name: "encrypt_pdf", input: "report.pdf", want: "report.pdf.enc"},
		{name: "encrypt_no_ext", input: "README", want: "README.enc"},
		{name: "encrypt_tarball", input: "backup.tar.gz", want: "backup.tar.gz.enc"},
		{name: "decrypt_enc", input: "report.pdf.enc", decrypt: true, want: "report.pdf"},
		{name: "decrypt_strips_one_segment", input: "backup.tar.gz", decrypt: true, want: "backup.tar"},
		{name: "decrypt_no_ext", input: "README", decrypt: true, wantErr: true},
		{name: "decrypt_bare_suffix", input: ".enc", decrypt: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := crypt.OutputName(tt.input, tt.decrypt)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("OutputName(%q, %v) succeeded with %q, want error", tt.input, tt.decrypt, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("OutputName(%q, %v) error: %v", tt.input, tt.decrypt, err)
			}

			if got != tt.want {
				t.Errorf("OutputName(%q, %v) = %q, want %q", tt.input, tt.decrypt, got, tt.want)
			}
		})
	}
}
