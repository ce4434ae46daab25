package domain

import (
	"errors"
	"math"
)

var (
	ErrUnknownProduct   = errors.New("unknown product")
	ErrNotInCart        = errors.New("product not in cart")
	ErrQuantityOverflow = errors.New("cart quantity out of range")
)

// CartLine carries a copy of the product fields taken when the product was
// first added, so later catalog changes do not touch existing lines.
type CartLine struct {
	ProductID int    `json:"id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
}

func (l CartLine) Amount() int {
	return l.Price * l.Quantity
}

// Cart lines are ordered by first add. There is at most one line per
// product and no line ever has a quantity below 1.
type Cart struct {
	Lines []CartLine
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Line(productID int) (CartLine, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

func (c Cart) index(productID int) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	if len(c.Lines) == 0 {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

func Total(c Cart) int {
	total := 0
	for _, l := range c.Lines {
		total += l.Amount()
	}
	return total
}

// Normalize drops lines that break the cart invariants: non-positive
// quantities and repeated product ids (the first occurrence wins).
func Normalize(c Cart) Cart {
	var out Cart
	seen := make(map[int]struct{}, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity <= 0 {
			continue
		}
		if _, dup := seen[l.ProductID]; dup {
			continue
		}
		seen[l.ProductID] = struct{}{}
		out.Lines = append(out.Lines, l)
	}
	return out
}

// fits reports whether every line amount and the cart total are
// representable as int.
func (c Cart) fits() bool {
	total := 0
	for _, l := range c.Lines {
		if l.Price < 0 || l.Quantity < 0 {
			return false
		}
		if l.Price > 0 && l.Quantity > math.MaxInt/l.Price {
			return false
		}
		amount := l.Amount()
		if total > math.MaxInt-amount {
			return false
		}
		total += amount
	}
	return true
}
