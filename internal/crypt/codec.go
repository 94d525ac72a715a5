package crypt

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ravenoss/rot/pkg/chunkio"
)

// EncryptedSuffix is appended to encrypted file names.
const EncryptedSuffix = ".enc"

// Encrypt reads size bytes from src in chunkSize chunks, seals each chunk
// and writes ciphertext plus tag to dst. The output is exactly
// size + ceil(size/chunkSize)*Overhead() bytes.
func (c *Cipher) Encrypt(dst io.Writer, src io.Reader, size int64, chunkSize int) error {
	return pipe(dst, src, size, chunkSize, c.Sealer())
}

// Decrypt reads size bytes of sealed chunks, each chunkSize+Overhead() bytes
// except a possibly shorter final one, opens them in order and writes the
// plaintext to dst. size is the total ciphertext length.
func (c *Cipher) Decrypt(dst io.Writer, src io.Reader, size int64, chunkSize int) error {
	return pipe(dst, src, size, chunkSize+c.Overhead(), c.Opener())
}

// pipe drives the sequential chunk pipeline: read a chunk, transform it,
// write it, repeat. Chunk n+1 is never read before chunk n has been written.
func pipe(dst io.Writer, src io.Reader, size int64, chunkSize int, transform ChunkTransform) error {
	reader, err := chunkio.NewReader(src, size, chunkSize)
	if err != nil {
		return fmt.Errorf("creating chunk reader: %w", err)
	}

	for index := uint64(0); ; index++ {
		chunk, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("chunk %d: %w", index, err)
		}

		block, err := transform.Transform(index, chunk)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", index, err)
		}

		if _, err := dst.Write(block); err != nil {
			return fmt.Errorf("chunk %d: writing output: %w", index, err)
		}
	}
}

// OutputName derives the default output file name for a codec run:
// encrypting name.ext yields name.ext.enc, decrypting strips the single
// trailing extension segment, whatever it is. A pure string transform; the
// file content is never consulted.
func OutputName(name string, decrypt bool) (string, error) {
	if !decrypt {
		return name + EncryptedSuffix, nil
	}

	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return "", fmt.Errorf("cannot derive output name for %q: no extension to strip", name)
	}

	return strings.TrimSuffix(name, ext), nil
}
