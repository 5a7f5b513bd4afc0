package catalog

import (
	_ "embed"
	"fmt"
	"hash/fnv"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/shade/internal/colour"
)

//go:embed shades.yaml
var sampleShadesYAML []byte

// sampleShade is one entry in shades.yaml.
type sampleShade struct {
	Name      string           `yaml:"name"`
	Code      string           `yaml:"code"`
	Hex       string           `yaml:"hex"`
	LAB       colour.LAB       `yaml:"lab"`
	Undertone colour.Undertone `yaml:"undertone"`
	MonkScale int              `yaml:"monkScale"`
}

type sampleProduct struct {
	id          string
	name        string
	brand       string
	category    Category
	subcategory string
	description string
	price       float64
	coverage    string
	finish      string
	features    []string
	skinTypes   []string
	ingredients []string
	// stockChecked products have a deterministic share of shades out of stock.
	stockChecked bool
}

var foundationBrands = []struct {
	name   string
	prefix string
}{
	{"Pippa of London", "PL"},
	{"Luxury Beauty Co", "LB"},
	{"Natural Glow", "NG"},
}

func sampleProducts() []sampleProduct {
	var products []sampleProduct

	for i, brand := range foundationBrands {
		products = append(products, sampleProduct{
			id:           fmt.Sprintf("found-%d", i+1),
			name:         brand.prefix + " Flawless Foundation",
			brand:        brand.name,
			category:     CategoryFoundation,
			subcategory:  "liquid",
			description:  "Full coverage liquid foundation with 24-hour wear",
			price:        35 + float64(i)*10,
			coverage:     "full",
			features:     []string{"long-wearing", "buildable", "non-comedogenic"},
			skinTypes:    []string{"all", "dry", "oily", "combination"},
			ingredients:  []string{"water", "dimethicone", "titanium dioxide"},
			stockChecked: true,
		})
	}

	return append(products,
		sampleProduct{
			id:          "conc-001",
			name:        "Perfect Coverage Concealer",
			brand:       "Pippa of London",
			category:    CategoryConcealer,
			subcategory: "liquid",
			description: "Brightening concealer for under-eye and blemishes",
			price:       25,
			coverage:    "full",
			features:    []string{"brightening", "long-wearing", "crease-resistant"},
			skinTypes:   []string{"all"},
			ingredients: []string{"water", "cyclopentasiloxane", "vitamin E"},
		},
		sampleProduct{
			id:          "lip-001",
			name:        "Velvet Matte Lipstick",
			brand:       "Pippa of London",
			category:    CategoryLipstick,
			subcategory: "matte",
			description: "Long-wearing matte lipstick with intense color payoff",
			price:       22,
			finish:      "matte",
			features:    []string{"long-wearing", "non-drying", "intense color"},
			ingredients: []string{"isododecane", "dimethicone", "pigments"},
		},
		sampleProduct{
			id:          "blush-001",
			name:        "Natural Glow Blush",
			brand:       "Pippa of London",
			category:    CategoryBlush,
			subcategory: "powder",
			description: "Silky powder blush for a natural flush of color",
			price:       18,
			finish:      "satin",
			features:    []string{"buildable", "long-wearing", "natural finish"},
			ingredients: []string{"talc", "mica", "silica"},
		},
		sampleProduct{
			id:          "bronz-001",
			name:        "Sun-Kissed Bronzer",
			brand:       "Pippa of London",
			category:    CategoryBronzer,
			subcategory: "powder",
			description: "Matte bronzer for natural contouring and warmth",
			price:       20,
			finish:      "matte",
			features:    []string{"buildable", "natural finish", "long-wearing"},
			ingredients: []string{"talc", "mica", "iron oxides"},
		},
	)
}

// Sample returns the built-in demonstration catalog: three foundation
// ranges plus a concealer, lipstick, blush and bronzer. The result is
// identical on every call.
func Sample() (*Catalog, error) {
	var shades map[Category][]sampleShade
	if err := yaml.Unmarshal(sampleShadesYAML, &shades); err != nil {
		return nil, fmt.Errorf("failed to parse sample shades: %w", err)
	}

	cat := &Catalog{}
	for _, sp := range sampleProducts() {
		set, ok := shades[sp.category]
		if !ok {
			return nil, fmt.Errorf("no sample shades for category %s", sp.category)
		}
		cat.Products = append(cat.Products, sp.build(set))
	}

	return cat, nil
}

func (sp sampleProduct) build(set []sampleShade) Product {
	p := Product{
		ID:          sp.id,
		Name:        sp.name,
		Brand:       sp.brand,
		Category:    sp.category,
		Subcategory: sp.subcategory,
		Description: sp.description,
		Price:       sp.price,
		Currency:    "GBP",
		Features:    sp.features,
		SkinTypes:   sp.skinTypes,
		Ingredients: sp.ingredients,
		Shades:      make([]Shade, 0, len(set)),
	}

	for i, s := range set {
		lab := s.LAB
		id := fmt.Sprintf("%s-%d", sp.id, i+1)
		shade := Shade{
			ID:         id,
			ProductID:  sp.id,
			Name:       s.Name,
			Code:       s.Code,
			HexColor:   s.Hex,
			LAB:        &lab,
			Undertone:  s.Undertone,
			MonkScale:  s.MonkScale,
			Coverage:   sp.coverage,
			Finish:     sp.finish,
			InStock:    true,
			Popularity: popularity(id),
		}
		if sp.category == CategoryFoundation || sp.category == CategoryConcealer {
			shade.FitzpatrickScale = (s.MonkScale + 1) / 2
		}
		if sp.stockChecked {
			shade.InStock = inStock(id)
		}
		p.Shades = append(p.Shades, shade)
	}

	return p
}

func hashID(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32()
}

// popularity returns a stable score in [0, 10) with one decimal place.
func popularity(id string) float64 {
	return float64(hashID(id)%100) / 10
}

// inStock marks roughly one shade in ten as sold out.
func inStock(id string) bool {
	return hashID(id)%10 != 0
}
