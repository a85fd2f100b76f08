package version

import (
	"fmt"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
)

// NewCommand creates the version command.
func NewCommand(info goversion.Info) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:          "version",
		Short:        "display the current version of sudo-prompt",
		Long:         `Display detailed version information including revision, version, build time, and dirty status.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := info.String()
			if asJSON {
				s, err := info.JSONString()
				if err != nil {
					return fmt.Errorf("failed to encode version: %w", err)
				}
				out = s
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")

	return cmd
}
