// Package transfer drives chunked object transfers: upload streams a local
// file to the store as numbered multipart chunks, download reassembles a
// stored object against its declared length. With a password each chunk is
// sealed or opened independently; without one the same pipeline runs with
// the identity transform.
package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ravenoss/rot/internal/crypt"
	"github.com/ravenoss/rot/internal/store"
)

// ChunkSize is the plaintext chunk size for transfers. Every part except the
// last carries exactly this many plaintext bytes.
const ChunkSize = 5 * 1024 * 1024

// Store is the object-store surface the drivers consume. *store.Client
// implements it; tests substitute in-memory fakes.
type Store interface {
	Begin(ctx context.Context, key string, expires *time.Time) (string, error)
	UploadPart(ctx context.Context, key, uploadID string, number int64, body []byte) (string, error)
	Complete(ctx context.Context, key, uploadID string, parts []store.Part) error
	Abort(ctx context.Context, key, uploadID string) error
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)
}

// transform selects the per-chunk transform for a password: an AEAD sealer
// or opener when one is present, the identity otherwise.
func transform(password string, decrypt bool) (crypt.ChunkTransform, error) {
	if password == "" {
		return crypt.Identity(), nil
	}

	cipher, err := crypt.New(password, crypt.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("preparing cipher: %w", err)
	}

	if decrypt {
		return cipher.Opener(), nil
	}

	return cipher.Sealer(), nil
}

// progress returns a per-chunk progress bar on stderr, or nil when quiet or
// when there is nothing to count.
func progress(name string, chunks int64, quiet bool) *progressbar.ProgressBar {
	if quiet || chunks < 2 {
		return nil
	}

	return progressbar.NewOptions64(chunks,
		progressbar.OptionClearOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription(name),
	)
}
