package view

import (
	"strconv"

	"github.com/rl1809/scoop-shop/internal/core/domain"
	"github.com/rl1809/scoop-shop/internal/core/service"
)

const CurrencySuffix = " ₽"

type PanelRow struct {
	ProductID int    `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Amount    int    `json:"amount"`
}

// CartPanel is everything the cart panel shows. It is derived from the cart
// alone; the panel is always rebuilt in full.
type CartPanel struct {
	Empty           bool       `json:"empty"`
	Rows            []PanelRow `json:"rows"`
	Total           int        `json:"total"`
	CheckoutEnabled bool       `json:"checkout_enabled"`
	DropZoneVisible bool       `json:"drop_zone_visible"`
}

func Panel(cart domain.Cart) CartPanel {
	p := CartPanel{
		Empty:           cart.IsEmpty(),
		CheckoutEnabled: !cart.IsEmpty(),
		DropZoneVisible: cart.IsEmpty(),
	}
	for _, l := range cart.Lines {
		row := PanelRow{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Amount:    l.Amount(),
		}
		p.Rows = append(p.Rows, row)
		p.Total += row.Amount
	}
	return p
}

type ProductCard struct {
	ID    int
	Name  string
	Price int
	Image string
}

func Products(c domain.Catalog) []ProductCard {
	all := c.All()
	out := make([]ProductCard, 0, len(all))
	for _, p := range all {
		out = append(out, ProductCard{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image})
	}
	return out
}

type OrderRow struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	// ShowQuantity is false for single units, which are listed by name only.
	ShowQuantity bool `json:"-"`
	Amount       int  `json:"amount"`
}

type OrderSummary struct {
	Rows  []OrderRow `json:"rows"`
	Total int        `json:"total"`
}

func Summary(s service.Summary) OrderSummary {
	out := OrderSummary{Total: s.Total}
	for _, l := range s.Lines {
		out.Rows = append(out.Rows, OrderRow{
			Name:         l.Name,
			Quantity:     l.Quantity,
			ShowQuantity: l.Quantity > 1,
			Amount:       l.Amount(),
		})
	}
	return out
}

// Money renders an amount the way the storefront prints prices.
func Money(amount int) string {
	return strconv.Itoa(amount) + CurrencySuffix
}
