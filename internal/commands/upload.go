package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ravenoss/rot/internal/config"
	"github.com/ravenoss/rot/internal/transfer"
)

// NewUploadCommand creates the cobra command for multipart uploads.
func NewUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "upload [flags] files...",
		Aliases: []string{"up"},
		Short:   "Upload files to the object store",
		Args:    cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Upload
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("parsing config: %w", err)
			}

			cfg.Files = args

			if err := cfg.Validate(); err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			var expires *time.Time

			if cfg.Expires > 0 {
				at := time.Now().Add(time.Duration(cfg.Expires) * time.Second)
				expires = &at
			}

			for _, file := range cfg.Files {
				if _, err := transfer.Upload(cmd.Context(), client, transfer.UploadOptions{
					Path:     file,
					Prefix:   cfg.Prefix,
					Password: cfg.Password,
					Expires:  expires,
					Quiet:    cfg.Quiet,
				}); err != nil {
					return fmt.Errorf("uploading %q: %w", file, err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringP("prefix", "u", "", "Remote key prefix to upload under")
	cmd.Flags().StringP("password", "p", "", "Password for chunk encryption (omit to upload plaintext)")
	cmd.Flags().Int64P("expires", "t", 0, "Seconds until the object expires (0 = never)")

	return cmd
}
