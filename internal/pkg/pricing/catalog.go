package pricing

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
)

// Catalog maps service tiers to their price in whole rupees.
type Catalog struct {
	prices map[string]tierPrice
}

type tierPrice struct {
	tier  model.Tier
	price int64
}

// DefaultCatalog returns the published price list.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[model.Tier]int64{
		model.TierStarter: 2999,
		model.TierBasic:   5999,
		model.TierPremium: 9999,
	})
}

// NewCatalog builds catalog from tier to price map. Non-positive prices are skipped.
func NewCatalog(prices map[model.Tier]int64) *Catalog {
	c := &Catalog{prices: make(map[string]tierPrice, len(prices))}
	for tier, price := range prices {
		name := strings.TrimSpace(string(tier))
		if name == "" || price <= 0 {
			continue
		}
		c.prices[strings.ToLower(name)] = tierPrice{tier: model.Tier(name), price: price}
	}
	return c
}

// Lookup resolves tier name case-insensitively and returns its canonical form.
func (c *Catalog) Lookup(name string) (model.Tier, int64, error) {
	p, ok := c.prices[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", 0, domainErrors.ErrInvalidService
	}
	return p.tier, p.price, nil
}

// Price returns price for tier.
func (c *Catalog) Price(tier model.Tier) (int64, error) {
	_, price, err := c.Lookup(string(tier))
	return price, err
}

// Tiers lists tiers ordered by price.
func (c *Catalog) Tiers() []model.Tier {
	items := make([]tierPrice, 0, len(c.prices))
	for _, p := range c.prices {
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].price == items[j].price {
			return items[i].tier < items[j].tier
		}
		return items[i].price < items[j].price
	})
	tiers := make([]model.Tier, len(items))
	for i, p := range items {
		tiers[i] = p.tier
	}
	return tiers
}

// Advance returns half of price rounded half away from zero.
func Advance(price int64) int64 {
	return decimal.NewFromInt(price).Div(decimal.NewFromInt(2)).Round(0).IntPart()
}

type catalogFile struct {
	Tiers []struct {
		Name  string `yaml:"name"`
		Price int64  `yaml:"price"`
	} `yaml:"tiers"`
}

// LoadCatalog reads YAML price list. Empty path yields the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	prices := make(map[model.Tier]int64, len(file.Tiers))
	for _, t := range file.Tiers {
		if t.Price <= 0 {
			return nil, fmt.Errorf("tier %q: price must be positive", t.Name)
		}
		prices[model.Tier(t.Name)] = t.Price
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("catalog %s defines no tiers", path)
	}
	return NewCatalog(prices), nil
}
