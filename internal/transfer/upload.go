package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ravenoss/rot/internal/crypt"
	"github.com/ravenoss/rot/internal/fileutil"
	"github.com/ravenoss/rot/internal/store"
	"github.com/ravenoss/rot/pkg/chunkio"
)

// UploadOptions describes one upload: the local file, the remote key prefix,
// the optional password (empty uploads plaintext) and an optional expiry.
type UploadOptions struct {
	Path     string
	Prefix   string
	Password string
	Expires  *time.Time
	Quiet    bool
}

// Upload streams the file at opts.Path to the store as one multipart upload,
// sealing each chunk when a password is given, and returns the object key
// written. Part numbers ascend from 1 with no gaps; on any part failure the
// multipart upload is aborted so no partial object remains.
func Upload(ctx context.Context, st Store, opts UploadOptions) (string, error) {
	chunkTransform, err := transform(opts.Password, false)
	if err != nil {
		return "", err
	}

	file, err := os.Open(filepath.Clean(opts.Path))
	if err != nil {
		return "", fmt.Errorf("opening input file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("getting file info: %w", err)
	}

	reader, err := chunkio.NewReader(file, info.Size(), ChunkSize)
	if err != nil {
		return "", fmt.Errorf("preparing chunk reader: %w", err)
	}

	key := objectKey(opts.Prefix, filepath.Base(opts.Path))

	uploadID, err := st.Begin(ctx, key, opts.Expires)
	if err != nil {
		return "", fmt.Errorf("beginning upload of %q: %w", key, err)
	}

	parts, err := uploadParts(ctx, st, key, uploadID, reader, chunkTransform, opts.Quiet)
	if err != nil {
		abort(ctx, st, key, uploadID)

		return "", err
	}

	if err := st.Complete(ctx, key, uploadID, parts); err != nil {
		abort(ctx, st, key, uploadID)

		return "", fmt.Errorf("%w: %v", ErrComplete, err)
	}

	if !opts.Quiet {
		fmt.Fprintf(os.Stderr, "Uploaded %q -> %q (%s)\n", opts.Path, key, humanize.IBytes(uint64(max(0, info.Size()))))
	}

	return key, nil
}

// uploadParts runs the sequential chunk pipeline: read, transform, upload as
// the next part. Chunk index n becomes part number n+1.
func uploadParts(
	ctx context.Context,
	st Store,
	key, uploadID string,
	reader *chunkio.Reader,
	chunkTransform crypt.ChunkTransform,
	quiet bool,
) ([]store.Part, error) {
	bar := progress(filepath.Base(key), reader.Chunks(), quiet)

	parts := make([]store.Part, 0, reader.Chunks())

	for index := uint64(0); ; index++ {
		chunk, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading chunk %d: %w", index, err)
		}

		sealed, err := chunkTransform.Transform(index, chunk)
		if err != nil {
			return nil, fmt.Errorf("sealing chunk %d: %w", index, err)
		}

		number := int64(index) + 1

		etag, err := st.UploadPart(ctx, key, uploadID, number, sealed)
		if err != nil {
			return nil, fmt.Errorf("%w: part %d: %v", ErrPartUpload, number, err)
		}

		parts = append(parts, store.Part{Number: number, ETag: etag})

		if bar != nil {
			bar.Add(1) //nolint:errcheck // cosmetic
		}
	}

	// An empty file still needs one part for the store to stitch an object.
	if len(parts) == 0 {
		sealed, err := chunkTransform.Transform(0, nil)
		if err != nil {
			return nil, fmt.Errorf("sealing empty chunk: %w", err)
		}

		etag, err := st.UploadPart(ctx, key, uploadID, 1, sealed)
		if err != nil {
			return nil, fmt.Errorf("%w: part 1: %v", ErrPartUpload, err)
		}

		parts = append(parts, store.Part{Number: 1, ETag: etag})
	}

	return parts, nil
}

// abort is best effort: a failed abort leaves at most an orphaned upload on
// the store, which must never mask the original failure.
func abort(ctx context.Context, st Store, key, uploadID string) {
	if err := st.Abort(ctx, key, uploadID); err != nil {
		fmt.Fprintf(os.Stderr, "Error aborting upload of %q: %v\n", key, err)
	}
}

// objectKey joins the sanitized prefix and the object name.
func objectKey(prefix, name string) string {
	prefix = fileutil.SanitizePrefix(prefix)
	if prefix == "" {
		return name
	}

	return strings.TrimRight(prefix, "/") + "/" + name
}
