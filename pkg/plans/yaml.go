package plans

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultCatalogYAML string

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := LoadYAML(strings.NewReader(defaultCatalogYAML))
	if err != nil {
		panic(fmt.Sprintf("plans: embedded catalog: %v", err))
	}
	return c
})

// Default returns the built-in Ngola Suite catalog: basic, professional and
// enterprise, priced per seat in AOA.
func Default() *Catalog {
	return defaultCatalog()
}

type catalogDoc struct {
	Plans []planDoc `yaml:"plans"`
}

type planDoc struct {
	ID          ID              `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
	Currency    string          `yaml:"currency"`
	ContactUs   bool            `yaml:"contact_us"`
	PriceRef    string          `yaml:"price_ref"`
	ProductRef  string          `yaml:"product_ref"`
	Popular     bool            `yaml:"popular"`
	Features    []string        `yaml:"features"`
	Limits      limitsDoc       `yaml:"limits"`
}

type limitsDoc struct {
	MaxProjects     Limit `yaml:"max_projects"`
	MaxTeamMembers  Limit `yaml:"max_team_members"`
	AdvancedReports bool  `yaml:"advanced_reports"`
	Chat            bool  `yaml:"chat"`
	VideoCalls      bool  `yaml:"video_calls"`
	APIAccess       bool  `yaml:"api_access"`
}

// UnmarshalYAML accepts an integer or the keyword "unlimited".
func (l *Limit) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: limit must be a scalar", node.Line)
	}
	if strings.EqualFold(node.Value, "unlimited") {
		*l = Unlimited
		return nil
	}
	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("line %d: limit must be an integer or \"unlimited\": %w", node.Line, err)
	}
	*l = Limit(n)
	return nil
}

// LoadYAML builds a catalog from a YAML document shaped like the embedded
// plans.yaml. The result is validated like NewCatalog.
func LoadYAML(r io.Reader) (*Catalog, error) {
	var doc catalogDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadYAML, err)
	}

	plans := make([]Plan, 0, len(doc.Plans))
	for _, p := range doc.Plans {
		price := Price{Amount: p.Price, Currency: p.Currency, ContactUs: p.ContactUs}
		if price.ContactUs {
			price.Amount = decimal.Zero
		}
		plans = append(plans, Plan{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       price,
			PriceRef:    p.PriceRef,
			ProductRef:  p.ProductRef,
			Features:    p.Features,
			Popular:     p.Popular,
			Limits: Limits{
				MaxProjects:     p.Limits.MaxProjects,
				MaxTeamMembers:  p.Limits.MaxTeamMembers,
				AdvancedReports: p.Limits.AdvancedReports,
				Chat:            p.Limits.Chat,
				VideoCalls:      p.Limits.VideoCalls,
				APIAccess:       p.Limits.APIAccess,
			},
		})
	}

	return NewCatalog(plans...)
}
