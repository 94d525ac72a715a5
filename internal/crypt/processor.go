package crypt

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ravenoss/rot/internal/config"
	"github.com/ravenoss/rot/internal/fileutil"
)

// Result represents the outcome of processing a single file.
type Result struct {
	// Input file path
	Input string

	// Output file path
	Output string

	// Output file size in bytes
	OutputSize int64

	// Any error that occurred during processing
	Error error
}

// Processor encrypts or decrypts a set of local files. The key is derived
// once per run; files are processed concurrently, each as its own
// sequential chunk pipeline.
type Processor struct {
	// cfg contains runtime configuration options
	cfg *config.Codec

	// cipher seals or opens chunks for every file in this run
	cipher *Cipher

	// results channels processing outcomes to the printer goroutine
	results chan Result
}

// NewProcessor derives the key for the configured password and prepares a
// processor over the configured files.
func NewProcessor(cfg *config.Codec, opts Options) (*Processor, error) {
	cipher, err := New(cfg.Password, opts)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &Processor{
		cfg:     cfg,
		cipher:  cipher,
		results: make(chan Result, len(cfg.Files)),
	}, nil
}

// Run concurrently processes all files specified in the configuration.
// Returns the number of successfully processed files, the number of errors,
// and the total output size.
//
//nolint:cyclop,gocognit
func (p *Processor) Run() (processed, errored int, totalSize int64, err error) {
	group := errgroup.Group{}
	group.SetLimit(p.cfg.Parallel)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for result := range p.results {
			if result.Error != nil {
				errored++

				fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", result.Input, result.Error)
			} else {
				processed++

				totalSize += result.OutputSize

				if !p.cfg.Quiet {
					fmt.Printf("Processed %q -> %q\n", result.Input, result.Output) //nolint:forbidigo
				}
			}

			if p.cfg.Delete && result.Error == nil {
				if err := os.Remove(result.Input); err != nil {
					fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", result.Input, err)
				} else if !p.cfg.Quiet {
					fmt.Printf("Deleted %q\n", result.Input) //nolint:forbidigo
				}
			}
		}
	}()

	for _, file := range p.cfg.Files {
		group.Go(func() error {
			outPath, err := p.outputPath(file)
			if err != nil {
				p.results <- Result{Input: file, Error: err}

				return err
			}

			size, err := p.processFile(file, outPath)
			if err != nil {
				p.results <- Result{Input: file, Error: err}

				return err
			}

			p.results <- Result{Input: file, Output: outPath, OutputSize: size}

			return nil
		})
	}

	err = group.Wait()

	close(p.results)

	<-done // Wait for printer to finish

	if err != nil {
		return processed, errored, totalSize, fmt.Errorf("processing files: %w", err)
	}

	return processed, errored, totalSize, nil
}

// processFile handles the encryption or decryption of a single file.
// It writes to a temporary file and performs an atomic rename on completion.
func (p *Processor) processFile(filename, outPath string) (size int64, err error) {
	tc, err := fileutil.NewTempContext(outPath)
	if err != nil {
		return 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	inFile, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return 0, fmt.Errorf("opening input file: %w", err)
	}
	defer inFile.Close()

	info, err := inFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("getting file info: %w", err)
	}

	if p.cfg.Decrypt {
		err = p.cipher.Decrypt(tc.TmpFile, inFile, info.Size(), DefaultFileChunkSize)
	} else {
		err = p.cipher.Encrypt(tc.TmpFile, inFile, info.Size(), DefaultFileChunkSize)
	}

	if err != nil {
		return 0, fmt.Errorf("processing %q: %w", filename, err)
	}

	const ownerReadWrite = 0o600

	if err := os.Chmod(tc.TmpName, os.FileMode(ownerReadWrite)); err != nil {
		return 0, fmt.Errorf("setting file permissions: %w", err)
	}

	if err := tc.TmpFile.Close(); err != nil {
		return 0, fmt.Errorf("closing temporary file: %w", err)
	}

	if err := inFile.Close(); err != nil {
		return 0, fmt.Errorf("closing input file: %w", err)
	}

	if err := os.Rename(tc.TmpName, outPath); err != nil {
		return 0, fmt.Errorf("renaming output file: %w", err)
	}

	size, err = fileutil.FinalizeOutput(outPath, p.cfg.PreserveTimestamps, info.ModTime())
	if err != nil {
		return 0, fmt.Errorf("finalizing output: %w", err)
	}

	return size, nil
}

// outputPath resolves the output path for filename: the explicit --output
// when configured, otherwise the transformed base name in the current
// working directory.
func (p *Processor) outputPath(filename string) (string, error) {
	if p.cfg.Output != "" {
		return p.cfg.Output, nil
	}

	name, err := OutputName(filepath.Base(filename), p.cfg.Decrypt)
	if err != nil {
		return "", err
	}

	return name, nil
}
