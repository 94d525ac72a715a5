package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ravenoss/rot/internal/config"
	"github.com/ravenoss/rot/internal/transfer"
)

// NewDownloadCommand creates the cobra command for streaming downloads.
func NewDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "download [flags] keys...",
		Aliases: []string{"down", "dl"},
		Short:   "Download objects from the object store",
		Args:    cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Download
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("parsing config: %w", err)
			}

			cfg.Keys = args

			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Output != "" {
				const dirPerm = 0o755

				if err := os.MkdirAll(cfg.Output, dirPerm); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			for _, key := range cfg.Keys {
				if err := transfer.Download(cmd.Context(), client, transfer.DownloadOptions{
					Key:      key,
					Dir:      cfg.Output,
					Password: cfg.Password,
					Quiet:    cfg.Quiet,
				}); err != nil {
					return fmt.Errorf("downloading %q: %w", key, err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Directory to download into (defaults to the working directory)")
	cmd.Flags().StringP("password", "p", "", "Password for chunk decryption (omit to download as stored)")

	return cmd
}
