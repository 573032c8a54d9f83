package product

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
)

var maxRating = decimal.NewFromInt(5)

// Specifications is stored as a JSONB object.
type Specifications map[string]string

func (s Specifications) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *Specifications) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = Specifications{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Specifications", src)
	}
	return json.Unmarshal(data, s)
}

type Product struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	Description    string           `json:"description" db:"description"`
	Price          decimal.Decimal  `json:"price" db:"price"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice,omitempty" db:"original_price"`
	Category       string           `json:"category" db:"category"`
	Image          string           `json:"image" db:"image"`
	Images         pq.StringArray   `json:"images" db:"images"`
	Stock          int              `json:"stock" db:"stock"`
	Rating         decimal.Decimal  `json:"rating" db:"rating"`
	Reviews        int              `json:"reviews" db:"reviews"`
	Features       pq.StringArray   `json:"features" db:"features"`
	Specifications Specifications   `json:"specifications" db:"specifications"`
	IsNew          bool             `json:"isNew" db:"is_new"`
	IsFeatured     bool             `json:"isFeatured" db:"is_featured"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

// Validate enforces the catalog invariants and fills empty collections so
// they serialise as [] / {} rather than null.
func (p *Product) Validate() error {
	var problems []string

	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Price.IsNegative() {
		problems = append(problems, "price must be non-negative")
	}
	if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
		problems = append(problems, "original price must be non-negative")
	}
	if p.Stock < 0 {
		problems = append(problems, "stock must be non-negative")
	}
	if p.Rating.IsNegative() || p.Rating.GreaterThan(maxRating) {
		problems = append(problems, "rating must be between 0 and 5")
	}
	if p.Reviews < 0 {
		problems = append(problems, "reviews must be non-negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProduct, strings.Join(problems, "; "))
	}

	if p.Images == nil {
		p.Images = pq.StringArray{}
	}
	if p.Features == nil {
		p.Features = pq.StringArray{}
	}
	if p.Specifications == nil {
		p.Specifications = Specifications{}
	}
	return nil
}

// Patch holds the fields of an update request that were actually sent. Nil
// fields leave the stored value untouched.
type Patch struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	OriginalPrice  *decimal.Decimal
	Category       *string
	Image          *string
	Images         []string
	Stock          *int
	Rating         *decimal.Decimal
	Reviews        *int
	Features       []string
	Specifications map[string]string
	IsNew          *bool
	IsFeatured     *bool
}

func (pt Patch) Apply(p *Product) {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.OriginalPrice != nil {
		op := *pt.OriginalPrice
		p.OriginalPrice = &op
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.Image != nil {
		p.Image = *pt.Image
	}
	if pt.Images != nil {
		p.Images = pt.Images
	}
	if pt.Stock != nil {
		p.Stock = *pt.Stock
	}
	if pt.Rating != nil {
		p.Rating = *pt.Rating
	}
	if pt.Reviews != nil {
		p.Reviews = *pt.Reviews
	}
	if pt.Features != nil {
		p.Features = pt.Features
	}
	if pt.Specifications != nil {
		p.Specifications = pt.Specifications
	}
	if pt.IsNew != nil {
		p.IsNew = *pt.IsNew
	}
	if pt.IsFeatured != nil {
		p.IsFeatured = *pt.IsFeatured
	}
}

type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPriceLow  SortKey = "price-low"
	SortByPriceHigh SortKey = "price-high"
	SortByRating    SortKey = "rating"
)

// ParseSortKey falls back to SortByName for unknown values.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortByPriceLow, SortByPriceHigh, SortByRating:
		return k
	default:
		return SortByName
	}
}

func (k SortKey) orderBy() string {
	switch k {
	case SortByPriceLow:
		return "price ASC, name ASC"
	case SortByPriceHigh:
		return "price DESC, name ASC"
	case SortByRating:
		return "rating DESC, name ASC"
	default:
		return "name ASC"
	}
}

type ListFilter struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   SortKey
	Page     int
	Limit    int
}

type Page struct {
	Products      []Product `json:"products"`
	TotalPages    int       `json:"totalPages"`
	CurrentPage   int       `json:"currentPage"`
	TotalProducts int       `json:"totalProducts"`
}
