// Package crypt implements password-based chunked authenticated encryption.
// A password is stretched into an AES-256 key once per operation; data is
// sealed and opened in fixed-size chunks with AES-GCM, so arbitrarily large
// files stream through without ever being held in memory whole.
package crypt
