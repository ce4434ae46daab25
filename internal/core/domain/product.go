package domain

// Product is a catalog entry. Products are defined once at startup and
// never change while the process runs.
type Product struct {
	ID    int
	Name  string
	Price int // whole currency units
	Image string
}

type Catalog struct {
	products []Product
	byID     map[int]int
}

func NewCatalog(products ...Product) Catalog {
	c := Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// DefaultCatalog returns the shop's flavours.
func DefaultCatalog() Catalog {
	return NewCatalog(
		Product{ID: 1, Name: "Vanilla", Price: 100, Image: "images/vanila.jpg"},
		Product{ID: 2, Name: "Chocolate", Price: 100, Image: "images/chocolate.jpg"},
		Product{ID: 3, Name: "Strawberry", Price: 100, Image: "images/strawberry.jpg"},
		Product{ID: 4, Name: "Mint", Price: 100, Image: "images/mint.jpg"},
		Product{ID: 5, Name: "Caramel", Price: 100, Image: "images/caramel.jpg"},
	)
}

func (c Catalog) Lookup(id int) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// All returns the products in catalog order. The slice is a copy.
func (c Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}
