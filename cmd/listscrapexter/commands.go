// cmd/listscrapexter/commands.go
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/ListScrapexter/internal/config"
)

func newValidateCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), args[0], *verbose)
		},
	}
}

// validateConfig loads configFile, reporting warnings and, when verbose, the
// effective settings.
func validateConfig(out io.Writer, configFile string, verbose bool) error {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return err
	}
	if _, _, err := cfg.SelectRegistries(); err != nil {
		return err
	}

	result := config.ValidateConfig(cfg)
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "⚠ %s\n", warning)
	}
	fmt.Fprintf(out, "✓ Configuration file '%s' is valid\n", configFile)

	if verbose {
		fmt.Fprintf(out, "Configuration details:\n")
		fmt.Fprintf(out, "  Name: %s\n", cfg.Name)
		fmt.Fprintf(out, "  Target URL: %s\n", cfg.Target.URL)
		if len(cfg.Target.HTMLFiles) > 0 {
			fmt.Fprintf(out, "  HTML files: %s\n", strings.Join(cfg.Target.HTMLFiles, ", "))
		}
		fmt.Fprintf(out, "  Registries: %s, fallback %s\n", cfg.Registries.Primary, cfg.Registries.Fallback)
		fmt.Fprintf(out, "  Next control: %s\n", valueOr(cfg.Pagination.Next, "(none)"))
		fmt.Fprintf(out, "  Output: %s into %s (%s download)\n", cfg.Output.Format, cfg.Output.Dir, cfg.Output.Download)
	}
	return nil
}

func newTemplateCmd() *cobra.Command {
	var (
		templateType string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Generate a configuration template",
		Long: "Generate a configuration template. Types:\n" +
			"  live      launch Chrome with a saved profile and follow the next button (default)\n" +
			"  offline   read saved HTML pages and export to Excel\n" +
			"  custom    define a registry from XPath patterns and export to SQLite",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateTemplate(cmd.OutOrStdout(), templateType, outputFile)
		},
	}
	cmd.Flags().StringVarP(&templateType, "type", "t", "live", "template type: "+strings.Join(config.TemplateTypes(), ", "))
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the template to a file instead of stdout")
	return cmd
}

func generateTemplate(out io.Writer, templateType, outputFile string) error {
	template := config.GenerateTemplate(templateType)
	if outputFile == "" {
		return config.SaveToWriter(&template, out)
	}
	if err := config.SaveToFile(&template, outputFile); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Template written to %s\n", outputFile)
	return nil
}

func newRegistriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registries [config.yaml]",
		Short: "List the registries and their row locators",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if len(args) == 1 {
				loaded, err := config.LoadFromFile(args[0])
				if err != nil {
					return err
				}
				cfg = loaded
			}
			return listRegistries(cmd.OutOrStdout(), cfg)
		},
	}
}

// listRegistries prints every registry with the locators of its first row.
func listRegistries(out io.Writer, cfg *config.Config) error {
	set, err := cfg.RegistrySet()
	if err != nil {
		return err
	}
	primary, fallback, err := cfg.SelectRegistries()
	if err != nil {
		return err
	}

	for _, name := range set.Names() {
		reg, err := set.Lookup(name)
		if err != nil {
			return err
		}

		role := ""
		switch {
		case reg == primary:
			role = " (primary)"
		case reg == fallback:
			role = " (fallback)"
		}
		fmt.Fprintf(out, "%s%s\n", reg.Name, role)

		for _, f := range reg.Fields {
			optional := ""
			if f.Optional {
				optional = ", optional"
			}
			fmt.Fprintf(out, "  %-10s %s%s  %s\n", f.Name, f.Kind, optional, f.Locator(1))
		}
	}
	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
