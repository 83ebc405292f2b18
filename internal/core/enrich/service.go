package enrich

import (
	"context"
	"fmt"
	"strings"

	"sourcing/internal/core/product"
	"sourcing/internal/logger"
	"sourcing/internal/platform/eino"
)

// Service drafts merchandising copy for imported products. It is an
// optional stage: the importer runs fine without it and treats every
// failure here as "no generated description".
type Service struct {
	log *logger.Logger
	llm *eino.Service
}

func New(llm *eino.Service) *Service {
	return &Service{log: logger.New("EnrichService"), llm: llm}
}

// GenerateDescription turns the normalized listing into an 80-120 word
// product description. Only fields actually present on the listing are
// offered to the model, so it cannot echo back absent data.
func (s *Service) GenerateDescription(ctx context.Context, p product.NormalizedProduct) (string, error) {
	if p.Name == "" {
		return "", fmt.Errorf("product has no name")
	}
	text, err := s.llm.DraftDescription(ctx, p.Name, listingData(p))
	if err != nil {
		return "", err
	}
	s.log.Debug().Str("source_url", p.SourceURL).Int("chars", len(text)).Msg("description drafted")
	return text, nil
}

func listingData(p product.NormalizedProduct) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	if p.Description != nil {
		fmt.Fprintf(&b, "Supplier description: %s\n", *p.Description)
	}
	if p.Currency != nil && p.PriceMin != nil && p.PriceMax != nil {
		fmt.Fprintf(&b, "Price: %s %.2f - %.2f\n", *p.Currency, *p.PriceMin, *p.PriceMax)
	}
	if p.MOQ != nil {
		fmt.Fprintf(&b, "Minimum order quantity: %d\n", *p.MOQ)
	}
	if p.LeadTimeDays != nil {
		fmt.Fprintf(&b, "Lead time: %d days\n", *p.LeadTimeDays)
	}
	if p.SupplierName != nil {
		fmt.Fprintf(&b, "Supplier: %s\n", *p.SupplierName)
	}
	if len(p.CategoryTrail) > 0 {
		fmt.Fprintf(&b, "Category: %s\n", strings.Join(p.CategoryTrail, " > "))
	}
	return b.String()
}
