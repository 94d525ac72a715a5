package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ravenoss/rot/internal/config"
	"github.com/ravenoss/rot/internal/store"
)

// NewRotCommand creates the rot root command with its persistent flags and
// the upload, download and list subcommands.
func NewRotCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "rot [flags] command [flags]",
		Short: "Encrypted object-store transfer tool",
		Long: `Transfers files to and from an S3 compatible object store in fixed-size
chunks, optionally sealing every chunk with password-derived authenticated
encryption. Without a password, objects move as plain bytes.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Fall back to a relative path when the user config dir is undefined.
	defaultConfig, err := config.DefaultPath()
	if err != nil {
		defaultConfig = "rot.json"
	}

	root.PersistentFlags().String("config", defaultConfig, "Path to the configuration file")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")

	root.AddCommand(NewUploadCommand(), NewDownloadCommand(), NewListCommand())

	return root
}

// newClient loads the store configuration for the running command and dials
// the store.
func newClient() (*store.Client, error) {
	path := viper.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q is incomplete, fill in all fields: %w", path, err)
	}

	return store.New(cfg)
}
