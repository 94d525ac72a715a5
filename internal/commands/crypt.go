package commands

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ravenoss/rot/internal/config"
	"github.com/ravenoss/rot/internal/crypt"
)

// NewCryptCommand creates the rcrypt root command with the encrypt and
// decrypt subcommands.
func NewCryptCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "rcrypt [flags] command [flags]",
		Short: "Standalone file encryption utility",
		Long: `Encrypts and decrypts local files with the same chunked authenticated
encryption the transfer tool applies to objects, without touching the store.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("password", "p", "", "Password (prompted when omitted on a terminal)")
	root.PersistentFlags().StringP("output", "o", "", "Explicit output path, single input file only")
	root.PersistentFlags().IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().Bool("delete", false, "Delete the original file after successful encryption/decryption")
	root.PersistentFlags().BoolP("stats", "s", false, "Print processing statistics")
	root.PersistentFlags().Bool("preserve-timestamps", false, "Preserve the input file's timestamps on the output")

	root.AddCommand(NewEncryptCommand(), NewDecryptCommand())

	return root
}

// NewEncryptCommand creates the cobra command for encrypting local files.
func NewEncryptCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "encrypt [flags] files...",
		Aliases: []string{"enc", "en"},
		Short:   "Encrypt files",
		Args:    cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return runCodec(args, false)
		},
	}
}

// NewDecryptCommand creates the cobra command for decrypting local files.
func NewDecryptCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "decrypt [flags] files...",
		Aliases: []string{"dec", "de"},
		Short:   "Decrypt files",
		Args:    cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return runCodec(args, true)
		},
	}
}

// runCodec unmarshals the bound flags, resolves the password and runs the
// file processor over the positional arguments.
func runCodec(files []string, decrypt bool) error {
	var cfg config.Codec
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	cfg.Files = files
	cfg.Decrypt = decrypt

	if cfg.Password == "" {
		// Encrypting with a mistyped password is unrecoverable, so
		// confirmation is only asked for on the way in.
		password, err := promptPassword(!decrypt)
		if err != nil {
			return err
		}

		cfg.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	processor, err := crypt.NewProcessor(&cfg, crypt.DefaultOptions())
	if err != nil {
		return fmt.Errorf("creating processor: %w", err)
	}

	start := time.Now()

	processed, errored, totalSize, err := processor.Run()

	if cfg.Stats {
		printStats(processed, errored, totalSize, time.Since(start))
	}

	return err
}

func printStats(processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", processed)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(os.Stderr, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
