package repository

import (
	"context"
	"sort"
)

const uncategorized = "Sin categoría"

// CategoryStock summarises one product category.
type CategoryStock struct {
	Name     string `json:"name"`
	Products int    `json:"products"`
	Units    int    `json:"units"`
}

// CategoryRepository derives categories from the product list; categories
// have no record of their own.
type CategoryRepository interface {
	List(ctx context.Context) []CategoryStock
}

type categoryRepository struct {
	products ProductRepository
}

func NewCategoryRepository(products ProductRepository) CategoryRepository {
	return &categoryRepository{products: products}
}

// List returns categories sorted by name with product count and units on hand.
func (r *categoryRepository) List(ctx context.Context) []CategoryStock {
	byName := make(map[string]*CategoryStock)
	for _, p := range r.products.List(ctx) {
		name := p.Category
		if name == "" {
			name = uncategorized
		}
		c, ok := byName[name]
		if !ok {
			c = &CategoryStock{Name: name}
			byName[name] = c
		}
		c.Products++
		c.Units += p.Stock
	}

	out := make([]CategoryStock, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
