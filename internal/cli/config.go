package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/treediff/internal/errors"
)

func newConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and report warnings",
		Args:  usageArgs(cobra.NoArgs),
		RunE: e.runE(func(cmd *cobra.Command, args []string) error {
			e.out.ValidationSuccess("configuration is valid")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: e.runE(func(cmd *cobra.Command, args []string) error {
			return e.showConfig(cmd)
		}),
	})

	return cmd
}

// showConfig prints the merged configuration as YAML, or JSON with
// --format json.
func (e *env) showConfig(cmd *cobra.Command) error {
	if e.format == "json" {
		return e.out.JSON(e.cfg)
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(e.cfg); err != nil {
		return errors.Wrap(err, "failed to encode configuration")
	}
	return enc.Close()
}
