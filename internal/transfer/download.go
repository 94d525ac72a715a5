package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/ravenoss/rot/internal/crypt"
	"github.com/ravenoss/rot/internal/fileutil"
	"github.com/ravenoss/rot/pkg/chunkio"
)

// DownloadOptions describes one download: the object key, the destination
// directory and the optional password (empty passes chunks through).
type DownloadOptions struct {
	Key      string
	Dir      string
	Password string
	Quiet    bool
}

// Download fetches the object at opts.Key into opts.Dir under the object's
// base name. With a password every ciphertext chunk is opened before
// writing. The output is renamed into place only after the declared content
// length has been consumed exactly; a short body is an error, never a
// truncated file.
func Download(ctx context.Context, st Store, opts DownloadOptions) (err error) {
	chunkTransform, err := transform(opts.Password, true)
	if err != nil {
		return err
	}

	body, length, err := st.Get(ctx, opts.Key)
	if err != nil {
		return fmt.Errorf("getting object %q: %w", opts.Key, err)
	}
	defer body.Close()

	chunkSize := ChunkSize
	if opts.Password != "" {
		chunkSize += crypt.TagSize

		// A remainder shorter than one tag cannot be a sealed chunk.
		if rem := length % int64(chunkSize); rem > 0 && rem < crypt.TagSize {
			return fmt.Errorf("%w: declared length %d leaves %d trailing bytes", ErrChunkBoundary, length, rem)
		}
	}

	reader, err := chunkio.NewReader(body, length, chunkSize)
	if err != nil {
		return fmt.Errorf("preparing chunk reader: %w", err)
	}

	outPath := filepath.Join(opts.Dir, filepath.Base(opts.Key))

	tc, err := fileutil.NewTempContext(outPath)
	if err != nil {
		return fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	bar := progress(filepath.Base(opts.Key), reader.Chunks(), opts.Quiet)

	var written int64

	for index := uint64(0); ; index++ {
		chunk, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("reading chunk %d: %w", index, err)
		}

		plain, err := chunkTransform.Transform(index, chunk)
		if err != nil {
			return fmt.Errorf("opening chunk %d: %w", index, err)
		}

		n, writeErr := tc.TmpFile.Write(plain)
		if writeErr != nil {
			return fmt.Errorf("writing output: %w", writeErr)
		}

		written += int64(n)

		if bar != nil {
			bar.Add(1) //nolint:errcheck // cosmetic
		}
	}

	const ownerReadWrite = 0o600

	if err = os.Chmod(tc.TmpName, os.FileMode(ownerReadWrite)); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err = tc.TmpFile.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	if err = os.Rename(tc.TmpName, outPath); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	if !opts.Quiet {
		fmt.Fprintf(os.Stderr, "Downloaded %q -> %q (%s)\n", opts.Key, outPath, humanize.IBytes(uint64(max(0, written))))
	}

	return nil
}
