// Package commands provides the command-line interfaces for the rot and
// rcrypt tools.
//
// rot transfers files to and from an S3 compatible object store:
//   - upload: chunked multipart upload, optionally encrypted
//   - download: length-checked streaming download, optionally decrypted
//   - list: bucket listing
//
// rcrypt encrypts and decrypts local files with the same chunked format,
// without touching the store.
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands
