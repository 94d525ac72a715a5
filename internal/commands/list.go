package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ravenoss/rot/internal/config"
	"github.com/ravenoss/rot/internal/fileutil"
)

// NewListCommand creates the cobra command for bucket listings.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [flags]",
		Aliases: []string{"ls"},
		Short:   "List objects in the bucket",
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg config.List
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("parsing config: %w", err)
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			objects, truncated, err := client.List(cmd.Context(), fileutil.SanitizePrefix(cfg.Prefix), cfg.Max)
			if err != nil {
				return err
			}

			if len(objects) == 0 {
				if !cfg.Quiet {
					fmt.Fprintln(os.Stderr, "No objects found")
				}

				return nil
			}

			for _, object := range objects {
				//nolint:forbidigo // listing output belongs on stdout
				fmt.Printf("%10s  %s  %s\n",
					humanize.IBytes(uint64(max(0, object.Size))),
					object.LastModified.Format("2006-01-02 15:04:05"),
					object.Key)
			}

			if truncated && !cfg.Quiet {
				fmt.Fprintln(os.Stderr, "Listing truncated; raise --max or narrow --prefix")
			}

			return nil
		},
	}

	cmd.Flags().StringP("prefix", "u", "", "Only list keys under this prefix")
	cmd.Flags().Int64P("max", "m", 0, "Maximum number of keys to return (0 = store default)")

	return cmd
}
