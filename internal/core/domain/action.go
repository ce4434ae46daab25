package domain

import (
	"fmt"
	"math"
)

type ActionKind string

const (
	ActionAdd            ActionKind = "add"
	ActionRemove         ActionKind = "remove"
	ActionChangeQuantity ActionKind = "change_quantity"
	ActionClear          ActionKind = "clear"
)

// Action is a single cart mutation. Delta is only read by
// ActionChangeQuantity.
type Action struct {
	Kind      ActionKind
	ProductID int
	Delta     int
}

func Add(productID int) Action { return Action{Kind: ActionAdd, ProductID: productID} }

func Remove(productID int) Action { return Action{Kind: ActionRemove, ProductID: productID} }

func ChangeQuantity(productID, delta int) Action {
	return Action{Kind: ActionChangeQuantity, ProductID: productID, Delta: delta}
}

func Clear() Action { return Action{Kind: ActionClear} }

// Apply returns the cart that results from applying a to c. c itself is
// left untouched. When the action does not apply (unknown product, line
// not in the cart) the input cart is returned together with
// ErrUnknownProduct or ErrNotInCart. A change that would take a quantity,
// line amount or total past the int range fails with ErrQuantityOverflow
// and also leaves the cart as it was.
func Apply(c Cart, catalog Catalog, a Action) (Cart, error) {
	switch a.Kind {
	case ActionAdd:
		p, ok := catalog.Lookup(a.ProductID)
		if !ok {
			return c, fmt.Errorf("add %d: %w", a.ProductID, ErrUnknownProduct)
		}
		next := c.clone()
		if i := next.index(p.ID); i >= 0 {
			if next.Lines[i].Quantity == math.MaxInt {
				return c, fmt.Errorf("add %d: %w", a.ProductID, ErrQuantityOverflow)
			}
			next.Lines[i].Quantity++
		} else {
			next.Lines = append(next.Lines, CartLine{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Image:     p.Image,
				Quantity:  1,
			})
		}
		if !next.fits() {
			return c, fmt.Errorf("add %d: %w", a.ProductID, ErrQuantityOverflow)
		}
		return next, nil

	case ActionRemove:
		i := c.index(a.ProductID)
		if i < 0 {
			return c, fmt.Errorf("remove %d: %w", a.ProductID, ErrNotInCart)
		}
		next := c.clone()
		if next.Lines[i].Quantity > 1 {
			next.Lines[i].Quantity--
			return next, nil
		}
		return next.without(i), nil

	case ActionChangeQuantity:
		i := c.index(a.ProductID)
		if i < 0 {
			return c, fmt.Errorf("change quantity %d: %w", a.ProductID, ErrNotInCart)
		}
		if a.Delta > 0 && c.Lines[i].Quantity > math.MaxInt-a.Delta {
			return c, fmt.Errorf("change quantity %d by %d: %w", a.ProductID, a.Delta, ErrQuantityOverflow)
		}
		next := c.clone()
		next.Lines[i].Quantity += a.Delta
		if next.Lines[i].Quantity <= 0 {
			return next.without(i), nil
		}
		if !next.fits() {
			return c, fmt.Errorf("change quantity %d by %d: %w", a.ProductID, a.Delta, ErrQuantityOverflow)
		}
		return next, nil

	case ActionClear:
		return Cart{}, nil
	}

	return c, fmt.Errorf("unsupported cart action %q", a.Kind)
}

func (c Cart) without(i int) Cart {
	lines := append(c.Lines[:i:i], c.Lines[i+1:]...)
	if len(lines) == 0 {
		return Cart{}
	}
	return Cart{Lines: lines}
}
