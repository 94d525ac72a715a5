package crypt

// ChunkTransform is the per-chunk operation a transfer applies between
// reading and writing: sealing, opening, or passing bytes through untouched.
// The transform is selected once per transfer and applied uniformly to every
// chunk; index is the zero-based chunk position within the stream.
type ChunkTransform interface {
	Transform(index uint64, chunk []byte) ([]byte, error)
}

// Identity returns the pass-through transform used for plaintext transfers.
func Identity() ChunkTransform {
	return identity{}
}

type identity struct{}

func (identity) Transform(_ uint64, chunk []byte) ([]byte, error) {
	return chunk, nil
}

// Sealer returns the encrypting transform backed by c. Each output block is
// Overhead() bytes longer than its input chunk.
func (c *Cipher) Sealer() ChunkTransform {
	return sealer{c}
}

type sealer struct {
	c *Cipher
}

func (s sealer) Transform(index uint64, chunk []byte) ([]byte, error) {
	return s.c.Seal(index, chunk), nil
}

// Opener returns the decrypting transform backed by c.
func (c *Cipher) Opener() ChunkTransform {
	return opener{c}
}

type opener struct {
	c *Cipher
}

func (o opener) Transform(index uint64, chunk []byte) ([]byte, error) {
	return o.c.Open(index, chunk)
}
