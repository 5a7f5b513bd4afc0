// Package catalog models cosmetic products and their shades, and loads
// catalogs from JSON or YAML files, optionally compressed.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/shade/internal/colour"
)

// ErrNotFound is returned when a product or shade ID is not in the catalog.
var ErrNotFound = errors.New("not found in catalog")

// Category is a product category such as foundation or lipstick.
type Category string

const (
	CategoryFoundation Category = "foundation"
	CategoryConcealer  Category = "concealer"
	CategoryLipstick   Category = "lipstick"
	CategoryBlush      Category = "blush"
	CategoryBronzer    Category = "bronzer"
)

// Shade is a single colour variant of a product.
type Shade struct {
	ID               string           `json:"shadeId" yaml:"shadeId"`
	ProductID        string           `json:"productId,omitempty" yaml:"productId,omitempty"`
	Name             string           `json:"name" yaml:"name"`
	Code             string           `json:"code,omitempty" yaml:"code,omitempty"`
	HexColor         string           `json:"hexColor,omitempty" yaml:"hexColor,omitempty"`
	LAB              *colour.LAB      `json:"lab,omitempty" yaml:"lab,omitempty"`
	Undertone        colour.Undertone `json:"undertone" yaml:"undertone"`
	MonkScale        int              `json:"monkScale" yaml:"monkScale"`
	FitzpatrickScale int              `json:"fitzpatrickScale,omitempty" yaml:"fitzpatrickScale,omitempty"`
	Coverage         string           `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	Finish           string           `json:"finish,omitempty" yaml:"finish,omitempty"`
	InStock          bool             `json:"inStock" yaml:"inStock"`
	Popularity       float64          `json:"popularity" yaml:"popularity"`
}

// Colour returns the shade's LAB colour: the stored value when present and
// finite, otherwise one derived from the hex colour. The boolean is false
// when the shade carries neither.
func (s Shade) Colour() (colour.LAB, bool) {
	if s.LAB != nil && s.LAB.IsValid() {
		return *s.LAB, true
	}
	if s.HexColor != "" {
		if lab, err := colour.HexToLab(s.HexColor); err == nil {
			return lab, true
		}
	}
	return colour.LAB{}, false
}

// Hex returns the shade's hex colour, rendering it from LAB when the shade
// has none.
func (s Shade) Hex() string {
	if s.HexColor != "" {
		return s.HexColor
	}
	if lab, ok := s.Colour(); ok {
		return colour.LabToRGB(lab).Hex()
	}
	return ""
}

// A shade with no inStock field is in stock.
type plainShade Shade

// UnmarshalJSON implements json.Unmarshaler.
func (s *Shade) UnmarshalJSON(data []byte) error {
	p := plainShade{InStock: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Shade(p)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Shade) UnmarshalYAML(node *yaml.Node) error {
	p := plainShade{InStock: true}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Shade(p)
	return nil
}

// Product is a catalog item offered in one or more shades.
type Product struct {
	ID          string   `json:"productId" yaml:"productId"`
	Name        string   `json:"name" yaml:"name"`
	Brand       string   `json:"brand" yaml:"brand"`
	Category    Category `json:"category" yaml:"category"`
	Subcategory string   `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Price       float64  `json:"price" yaml:"price"`
	Currency    string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	Shades      []Shade  `json:"shades" yaml:"shades"`
	Features    []string `json:"features,omitempty" yaml:"features,omitempty"`
	SkinTypes   []string `json:"skinTypes,omitempty" yaml:"skinTypes,omitempty"`
	Ingredients []string `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
}

// Catalog is an ordered list of products. Matching never mutates it.
type Catalog struct {
	Products []Product `json:"products" yaml:"products"`
}

// ShadeRef is a shade together with the product that owns it.
type ShadeRef struct {
	Shade   Shade
	Product *Product
}

// Product returns the product with the given ID.
func (c *Catalog) Product(id string) (*Product, error) {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i], nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", id, ErrNotFound)
}

// Shade returns the shade with the given ID and its product.
func (c *Catalog) Shade(id string) (ShadeRef, error) {
	for i := range c.Products {
		p := &c.Products[i]
		for _, s := range p.Shades {
			if s.ID == id {
				return ShadeRef{Shade: s, Product: p}, nil
			}
		}
	}
	return ShadeRef{}, fmt.Errorf("shade %q: %w", id, ErrNotFound)
}

// Categories returns the distinct product categories in catalog order.
func (c *Catalog) Categories() []Category {
	var out []Category
	for _, p := range c.Products {
		if !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	return out
}

// Brands returns the distinct brands in catalog order.
func (c *Catalog) Brands() []string {
	var out []string
	for _, p := range c.Products {
		if !slices.Contains(out, p.Brand) {
			out = append(out, p.Brand)
		}
	}
	return out
}

// ShadeCount returns the total number of shades across all products.
func (c *Catalog) ShadeCount() int {
	n := 0
	for _, p := range c.Products {
		n += len(p.Shades)
	}
	return n
}

// Link sets each shade's ProductID from its owning product.
func (c *Catalog) Link() {
	for i := range c.Products {
		for j := range c.Products[i].Shades {
			c.Products[i].Shades[j].ProductID = c.Products[i].ID
		}
	}
}

// Validate checks that product and shade IDs are present and unique.
// Shades without usable colour data are allowed; matching skips them.
func (c *Catalog) Validate() error {
	products := make(map[string]bool)
	shades := make(map[string]bool)

	for i, p := range c.Products {
		if p.ID == "" {
			return fmt.Errorf("product %d has no productId", i)
		}
		if products[p.ID] {
			return fmt.Errorf("duplicate productId %q", p.ID)
		}
		products[p.ID] = true

		for j, s := range p.Shades {
			if s.ID == "" {
				return fmt.Errorf("product %q shade %d has no shadeId", p.ID, j)
			}
			if shades[s.ID] {
				return fmt.Errorf("duplicate shadeId %q", s.ID)
			}
			shades[s.ID] = true
		}
	}

	return nil
}
