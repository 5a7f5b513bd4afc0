// Package cli provides the command-line interface for shade.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jmylchreest/shade/internal/version"
	"github.com/spf13/cobra"
)

var (
	// Global config file flag
	globalConfigPath string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "shade",
		Short: "Skin tone analysis and cosmetic shade matching",
		Long: `Shade analyses a face photo, measures the skin tone in CIELAB and matches
it against a catalog of foundation, concealer, lipstick, blush and bronzer
shades.

Skin tone is reported as hex, LAB, undertone (cool, warm or neutral), Monk
Skin Tone scale (1-10) and Fitzpatrick scale (1-6). Shades are ranked by
colour distance and undertone agreement.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&globalConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/shade/config.yaml)")

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", formatTable, "output format (table, json)")

	// Set version template
	rootCmd.SetVersionTemplate(version.String() + "\n")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyseCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(convertCmd)
}

// Version command flags
var versionFormat string

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := validateFormat(versionFormat); err != nil {
			return err
		}
		info := version.Get()
		if versionFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintln(cmd.OutOrStdout(), info)
		return nil
	},
}
