package transfer

import "errors"

// ErrPartUpload indicates that uploading a part failed. The multipart upload
// is aborted; nothing of it remains on the store.
var ErrPartUpload = errors.New("part upload failed")

// ErrComplete indicates that the store rejected finalizing the multipart
// upload after all parts were sent.
var ErrComplete = errors.New("completing upload failed")

// ErrChunkBoundary indicates a declared content length that cannot be split
// into encrypted chunks: the remainder is smaller than one authentication
// tag.
var ErrChunkBoundary = errors.New("content length does not align with encrypted chunk boundaries")
