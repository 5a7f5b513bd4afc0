package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/shade/internal/catalog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Catalog command flags
	catalogListFormat   string
	catalogShowFormat   string
	catalogExportFormat string
	catalogCategory     string
	catalogInStock      bool
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the product catalog",
	Long: `Inspect the product catalog used for matching.

The catalog is read from catalog.path in the config file or SHADE_CATALOG.
Without either the built-in sample catalog is used. Catalogs may be JSON
or YAML, optionally compressed with gzip, xz or bzip2, and may be loaded
from an HTTPS URL.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog products",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show a product and its shades",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog as YAML or JSON",
	Long: `Write the active catalog to stdout. Exporting the built-in sample is
a convenient starting point for a custom catalog file.

Examples:
  shade catalog export > catalog.yaml
  shade catalog export --format json | gzip > catalog.json.gz`,
	Args: cobra.NoArgs,
	RunE: runCatalogExport,
}

func init() {
	catalogListCmd.Flags().StringVarP(&catalogListFormat, "format", "f", formatTable, "output format (table, json)")
	catalogListCmd.Flags().StringVar(&catalogCategory, "category", "", "only list products in this category")
	catalogShowCmd.Flags().StringVarP(&catalogShowFormat, "format", "f", formatTable, "output format (table, json)")
	catalogShowCmd.Flags().BoolVar(&catalogInStock, "in-stock", false, "only list shades in stock")
	catalogExportCmd.Flags().StringVarP(&catalogExportFormat, "format", "f", string(catalog.FormatYAML), "output format (yaml, json)")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogExportCmd)
}

// runCatalogList executes the catalog list command.
func runCatalogList(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(catalogListFormat); err != nil {
		return err
	}
	env, err := newCmdEnv(cmd)
	if err != nil {
		return err
	}
	cat, err := env.catalog(cmd.Context())
	if err != nil {
		return err
	}

	products := make([]catalog.Product, 0, len(cat.Products))
	for _, p := range cat.Products {
		if catalogCategory == "" || p.Category == catalog.Category(catalogCategory) {
			products = append(products, p)
		}
	}

	if catalogListFormat == formatJSON {
		return writeJSON(env.out, products)
	}

	t := NewTable([]string{"ID", "Brand", "Product", "Category", "Price", "Shades"})
	t.SetColumnAlign(4, AlignRight)
	t.SetColumnAlign(5, AlignRight)
	for _, p := range products {
		t.AddRow([]string{
			p.ID,
			p.Brand,
			p.Name,
			string(p.Category),
			price(p),
			fmt.Sprintf("%d", len(p.Shades)),
		})
	}
	fmt.Fprint(env.out, t.Render())
	fmt.Fprintf(env.out, "\n%d products, %d shades\n", len(products), countShades(products))
	return nil
}

// runCatalogShow executes the catalog show command.
func runCatalogShow(cmd *cobra.Command, args []string) error {
	if err := validateFormat(catalogShowFormat); err != nil {
		return err
	}
	env, err := newCmdEnv(cmd)
	if err != nil {
		return err
	}
	cat, err := env.catalog(cmd.Context())
	if err != nil {
		return err
	}

	p, err := cat.Product(args[0])
	if err != nil {
		return err
	}

	product := *p
	if catalogInStock {
		product.Shades = nil
		for _, s := range p.Shades {
			if s.InStock {
				product.Shades = append(product.Shades, s)
			}
		}
	}

	if catalogShowFormat == formatJSON {
		return writeJSON(env.out, product)
	}

	printProduct(env.out, product)
	return nil
}

// runCatalogExport executes the catalog export command.
func runCatalogExport(cmd *cobra.Command, _ []string) error {
	env, err := newCmdEnv(cmd)
	if err != nil {
		return err
	}
	cat, err := env.catalog(cmd.Context())
	if err != nil {
		return err
	}

	switch catalog.Format(catalogExportFormat) {
	case catalog.FormatJSON:
		return writeJSON(env.out, cat)
	case catalog.FormatYAML:
		enc := yaml.NewEncoder(env.out)
		enc.SetIndent(2)
		if err := enc.Encode(cat); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid export format: %s (valid: yaml, json)", catalogExportFormat)
	}
}

// printProduct writes product details followed by a shade table.
func printProduct(w io.Writer, p catalog.Product) {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(w, "Brand     %s\n", p.Brand)
	category := string(p.Category)
	if p.Subcategory != "" {
		category += " / " + p.Subcategory
	}
	fmt.Fprintf(w, "Category  %s\n", category)
	fmt.Fprintf(w, "Price     %s\n", price(p))
	if p.Description != "" {
		fmt.Fprintf(w, "About     %s\n", p.Description)
	}
	if len(p.Features) > 0 {
		fmt.Fprintf(w, "Features  %s\n", strings.Join(p.Features, ", "))
	}
	fmt.Fprintln(w)

	t := NewTable([]string{"Shade ID", "Name", "Code", "Colour", "Undertone", "Monk", "Stock"})
	t.SetColumnAlign(5, AlignRight)
	for _, s := range p.Shades {
		stock := "yes"
		if !s.InStock {
			stock = "no"
		}
		monk := "-"
		if s.MonkScale > 0 {
			monk = fmt.Sprintf("%d", s.MonkScale)
		}
		t.AddRow([]string{s.ID, s.Name, s.Code, swatch(s.Hex()), string(s.Undertone), monk, stock})
	}
	fmt.Fprint(w, t.Render())
}

func price(p catalog.Product) string {
	if p.Price <= 0 {
		return "-"
	}
	if p.Currency == "" || p.Currency == "USD" {
		return fmt.Sprintf("$%.2f", p.Price)
	}
	return fmt.Sprintf("%.2f %s", p.Price, p.Currency)
}

func countShades(products []catalog.Product) int {
	n := 0
	for _, p := range products {
		n += len(p.Shades)
	}
	return n
}
