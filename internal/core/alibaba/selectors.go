package alibaba

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors hold the CSS strategy lists for every field pulled off a
// page. Each list is tried in order and the first selector that yields
// content wins, so markup changes usually mean editing a YAML file
// instead of shipping a new binary.
type Selectors struct {
	SearchResultLinks []string `yaml:"searchResultLinks"`
	Title             []string `yaml:"title"`
	Description       []string `yaml:"description"`
	Price             []string `yaml:"price"`
	MOQ               []string `yaml:"moq"`
	LeadTime          []string `yaml:"leadTime"`
	SupplierName      []string `yaml:"supplierName"`
	SupplierRating    []string `yaml:"supplierRating"`
	Breadcrumbs       []string `yaml:"breadcrumbs"`
	Images            []string `yaml:"images"`
}

// DefaultSelectors returns the selector set known to work against the
// current marketplace markup. data-role hooks are the stable primary
// strategy; the class-prefix fallbacks survive CSS-module hash churn.
func DefaultSelectors() Selectors {
	return Selectors{
		SearchResultLinks: []string{`a.list-no-v2__product-title`},
		Title:             []string{`[data-role="product-title"]`, `h1`},
		Description:       []string{`[data-role="product-detail"]`, `#J-rich-text-description`},
		Price:             []string{`[data-role="price-wrapper"] [data-role="price"]`, `[class*="Price--"]`},
		MOQ:               []string{`[data-role="moq"]`, `[class*="MOQ--"]`},
		LeadTime:          []string{`[data-role="lead-time"]`, `[class*="LeadTime--"]`},
		SupplierName:      []string{`[data-role="company-name"]`, `[class*="SupplierName--"]`},
		SupplierRating:    []string{`[data-role="supplier-rating"]`, `[class*="RatingScore--"]`},
		Breadcrumbs:       []string{`[data-role="breadcrumb"] li`},
		Images:            []string{`img[src*="sc01.alicdn.com"], img[src*="img.alicdn.com"]`},
	}
}

// LoadSelectors reads a YAML override file and merges it over the
// defaults. Only fields present in the file are replaced; an empty path
// returns the defaults untouched.
func LoadSelectors(path string) (Selectors, error) {
	sel := DefaultSelectors()
	if path == "" {
		return sel, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sel, fmt.Errorf("read selectors file: %w", err)
	}

	var override Selectors
	if err := yaml.Unmarshal(data, &override); err != nil {
		return sel, fmt.Errorf("parse selectors file: %w", err)
	}

	merge := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	merge(&sel.SearchResultLinks, override.SearchResultLinks)
	merge(&sel.Title, override.Title)
	merge(&sel.Description, override.Description)
	merge(&sel.Price, override.Price)
	merge(&sel.MOQ, override.MOQ)
	merge(&sel.LeadTime, override.LeadTime)
	merge(&sel.SupplierName, override.SupplierName)
	merge(&sel.SupplierRating, override.SupplierRating)
	merge(&sel.Breadcrumbs, override.Breadcrumbs)
	merge(&sel.Images, override.Images)

	return sel, nil
}
