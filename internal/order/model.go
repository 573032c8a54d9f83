package order

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound                = errors.New("order not found")
	ErrInvalidOrder            = errors.New("invalid order")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrStatusConflict          = errors.New("order status was changed by another request")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if _, ok := statusRank[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
	return s, nil
}

// Item is a snapshot of a cart line taken at checkout.
type Item struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Items is stored as a JSONB array.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(it)
}

func (it *Items) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("cannot scan %T into Items", src)
	}
	if data == nil {
		*it = Items{}
		return nil
	}
	return json.Unmarshal(data, it)
}

func (it Items) Total() decimal.Decimal {
	total := decimal.Zero
	for _, i := range it {
		total = total.Add(i.Subtotal())
	}
	return total
}

type ShippingAddress struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *ShippingAddress) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("cannot scan %T into ShippingAddress", src)
	}
	if data == nil {
		*a = ShippingAddress{}
		return nil
	}
	return json.Unmarshal(data, a)
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported type")
	}
}

// Customer is the owner's contact info, populated on admin listings.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	Items           Items           `json:"items" db:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status          Status          `json:"status" db:"status"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	PaymentID       *string         `json:"paymentId,omitempty" db:"payment_id"`
	RazorpayOrderID *string         `json:"razorpayOrderId,omitempty" db:"razorpay_order_id"`
	Customer        *Customer       `json:"user,omitempty" db:"-"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

type CreateInput struct {
	Items           Items
	TotalAmount     decimal.Decimal
	ShippingAddress ShippingAddress
	PaymentMethod   string
	PaymentID       *string
	RazorpayOrderID *string
}

// Validate checks the snapshot is internally consistent.
func (in CreateInput) Validate() error {
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrInvalidOrder)
	}
	for _, it := range in.Items {
		if it.ProductID == uuid.Nil {
			return fmt.Errorf("%w: item product id is required", ErrInvalidOrder)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for product %s must be positive", ErrInvalidOrder, it.ProductID)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("%w: price for product %s cannot be negative", ErrInvalidOrder, it.ProductID)
		}
	}
	// Totals are stored as NUMERIC(10,2); compare at cent precision.
	if sum := in.Items.Total(); !sum.Round(2).Equal(in.TotalAmount.Round(2)) {
		return fmt.Errorf("%w: total %s does not match items sum %s", ErrInvalidOrder, in.TotalAmount, sum)
	}
	if in.PaymentMethod == "" {
		return fmt.Errorf("%w: payment method is required", ErrInvalidOrder)
	}
	return nil
}

type ListFilter struct {
	Status Status
	Page   int
	Limit  int
}

type Page struct {
	Orders      []Order `json:"orders"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	TotalOrders int     `json:"totalOrders"`
}
