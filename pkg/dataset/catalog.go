package dataset

import (
	"fmt"
	"os"
	"sort"

	"shampoo-demand-api/pkg/features"
	"shampoo-demand-api/pkg/models"

	"github.com/goccy/go-json"
)

// Catalog 商品カタログ（読み取り専用）
type Catalog struct {
	products []models.Product
	index    map[string]int
}

// DefaultCatalog Clinic Plus（量販）と Head & Shoulders（プレミアム）の10商品
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog([]models.Product{
		{Name: "Clinic Plus Strong & Long (650ml)", Brand: "Clinic Plus", Category: "General", BasePrice: 380, BaseDemand: 150},
		{Name: "Clinic Plus Strong & Long (340ml)", Brand: "Clinic Plus", Category: "General", BasePrice: 220, BaseDemand: 200},
		{Name: "Clinic Plus Egg Protein (340ml)", Brand: "Clinic Plus", Category: "General", BasePrice: 230, BaseDemand: 120},
		{Name: "Clinic Plus Ayurveda (340ml)", Brand: "Clinic Plus", Category: "Herbal", BasePrice: 240, BaseDemand: 100},
		{Name: "Clinic Plus Almond Gold (175ml)", Brand: "Clinic Plus", Category: "General", BasePrice: 110, BaseDemand: 250},
		{Name: "H&S Cool Menthol (650ml)", Brand: "Head & Shoulders", Category: "Summer", BasePrice: 550, BaseDemand: 80},
		{Name: "H&S Smooth & Silky (340ml)", Brand: "Head & Shoulders", Category: "Beauty", BasePrice: 310, BaseDemand: 110},
		{Name: "H&S Anti-Hairfall (340ml)", Brand: "Head & Shoulders", Category: "Monsoon", BasePrice: 310, BaseDemand: 90},
		{Name: "H&S Lemon Fresh (180ml)", Brand: "Head & Shoulders", Category: "Summer", BasePrice: 190, BaseDemand: 130},
		{Name: "H&S Neem (180ml)", Brand: "Head & Shoulders", Category: "Herbal", BasePrice: 185, BaseDemand: 100},
	})
	return c
}

// NewCatalog validates and indexes products. Names must be unique and non-empty.
func NewCatalog(products []models.Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	index := make(map[string]int, len(products))
	list := make([]models.Product, len(products))
	for i, p := range products {
		if p.Name == "" || p.Brand == "" || p.Category == "" {
			return nil, fmt.Errorf("catalog entry %d is missing name, brand or category", i)
		}
		if _, dup := index[p.Name]; dup {
			return nil, fmt.Errorf("duplicate catalog product %q", p.Name)
		}
		index[p.Name] = i
		list[i] = p
	}
	return &Catalog{products: list, index: index}, nil
}

// LoadCatalog JSONファイルからカタログを読み込む
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return NewCatalog(products)
}

// Products returns the catalog entries in catalog order.
func (c *Catalog) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Names returns the product names sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.products))
	for _, p := range c.products {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Get returns the product by name.
func (c *Catalog) Get(name string) (models.Product, bool) {
	i, ok := c.index[name]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Lookup エンコーダーに注入する商品ルックアップを作成
func (c *Catalog) Lookup() *features.StaticProductLookup {
	m := make(map[string]features.ProductInfo, len(c.products))
	for _, p := range c.products {
		m[p.Name] = features.ProductInfo{Brand: p.Brand, Category: p.Category}
	}
	return features.NewStaticProductLookup(m)
}
