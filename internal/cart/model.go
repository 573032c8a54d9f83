package cart

import (
	"errors"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
)

// Line is a cart row joined with the product's current price and stock.
type Line struct {
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Image     string          `json:"image" db:"image"`
	Category  string          `json:"category" db:"category"`
	Stock     int             `json:"stock" db:"stock"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Items     []Line          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

func newCart(lines []Line) *Cart {
	c := &Cart{Items: lines, Total: decimal.Zero}
	if c.Items == nil {
		c.Items = []Line{}
	}
	for _, l := range c.Items {
		c.Total = c.Total.Add(l.Subtotal())
		c.ItemCount += l.Quantity
	}
	return c
}
