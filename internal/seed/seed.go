package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

type UserCreator interface {
	CreateUser(ctx context.Context, u *user.User, password string) (*user.User, error)
}

type ProductCreator interface {
	CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error)
}

type ProductLookup interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type Account struct {
	Name     string
	Email    string
	Password string
	Role     user.Role
}

// Report counts what a run created and what was already present.
type Report struct {
	UsersCreated    int
	UsersSkipped    int
	ProductsCreated int
	ProductsSkipped int
}

type Seeder struct {
	users    UserCreator
	products ProductCreator
	lookup   ProductLookup
	accounts []Account
	catalog  []product.Product
}

func NewSeeder(users UserCreator, products ProductCreator, lookup ProductLookup) *Seeder {
	return &Seeder{
		users:    users,
		products: products,
		lookup:   lookup,
		accounts: DefaultAccounts(),
		catalog:  DefaultCatalog(),
	}
}

// Run is safe to repeat: accounts are matched by email and products by name.
func (s *Seeder) Run(ctx context.Context) (Report, error) {
	var report Report
	log := zerolog.Ctx(ctx)

	for _, acc := range s.accounts {
		u := &user.User{Name: acc.Name, Email: acc.Email, Role: acc.Role}
		if _, err := s.users.CreateUser(ctx, u, acc.Password); err != nil {
			if errors.Is(err, user.ErrEmailExists) {
				log.Debug().Str("email", acc.Email).Msg("seed user already exists")
				report.UsersSkipped++
				continue
			}
			return report, fmt.Errorf("seed: failed to create user %s: %w", acc.Email, err)
		}
		log.Info().Str("email", acc.Email).Str("role", string(acc.Role)).Msg("seed user created")
		report.UsersCreated++
	}

	for i := range s.catalog {
		p := s.catalog[i]
		exists, err := s.lookup.ExistsByName(ctx, p.Name)
		if err != nil {
			return report, fmt.Errorf("seed: failed to look up product %q: %w", p.Name, err)
		}
		if exists {
			report.ProductsSkipped++
			continue
		}
		if _, err := s.products.CreateProduct(ctx, &p); err != nil {
			return report, fmt.Errorf("seed: failed to create product %q: %w", p.Name, err)
		}
		log.Info().Str("name", p.Name).Msg("seed product created")
		report.ProductsCreated++
	}

	return report, nil
}

func DefaultAccounts() []Account {
	return []Account{
		{Name: "Admin User", Email: "admin@example.com", Password: "password", Role: user.RoleAdmin},
		{Name: "John Doe", Email: "john@example.com", Password: "password", Role: user.RoleUser},
	}
}

func DefaultCatalog() []product.Product {
	const img = "?auto=compress&cs=tinysrgb&w=500"
	headphones := "https://images.pexels.com/photos/3394650/pexels-photo-3394650.jpeg" + img
	watch := "https://images.pexels.com/photos/393047/pexels-photo-393047.jpeg" + img
	shirt := "https://images.pexels.com/photos/1040945/pexels-photo-1040945.jpeg" + img
	originalPrice := decimal.RequireFromString("399.99")

	return []product.Product{
		{
			Name: "Premium Wireless Headphones",
			Description: "Experience crystal-clear audio with our premium wireless headphones featuring " +
				"active noise cancellation and 30-hour battery life.",
			Price:         decimal.RequireFromString("299.99"),
			OriginalPrice: &originalPrice,
			Category:      "Electronics",
			Image:         headphones,
			Images:        []string{headphones, "https://images.pexels.com/photos/1649771/pexels-photo-1649771.jpeg" + img},
			Stock:         25,
			Rating:        decimal.RequireFromString("4.8"),
			Reviews:       127,
			Features:      []string{"Active Noise Cancellation", "30-hour battery", "Quick charge", "Bluetooth 5.0"},
			Specifications: product.Specifications{
				"Driver Size":        "40mm",
				"Frequency Response": "20Hz - 20kHz",
				"Impedance":          "32 ohms",
				"Weight":             "250g",
			},
			IsNew:      true,
			IsFeatured: true,
		},
		{
			Name: "Smart Fitness Watch",
			Description: "Track your fitness goals with this advanced smartwatch featuring heart rate " +
				"monitoring, GPS, and water resistance.",
			Price:    decimal.RequireFromString("199.99"),
			Category: "Electronics",
			Image:    watch,
			Images:   []string{watch},
			Stock:    15,
			Rating:   decimal.RequireFromString("4.6"),
			Reviews:  89,
			Features: []string{"Heart Rate Monitor", "GPS Tracking", "Water Resistant", "Sleep Tracking"},
			Specifications: product.Specifications{
				"Display":      "1.4 inch AMOLED",
				"Battery":      "7 days",
				"Water Rating": "5ATM",
				"Sensors":      "Heart Rate, GPS, Accelerometer",
			},
			IsFeatured: true,
		},
		{
			Name: "Organic Cotton T-Shirt",
			Description: "Comfortable and sustainable organic cotton t-shirt perfect for everyday wear. " +
				"Made from 100% certified organic cotton.",
			Price:    decimal.RequireFromString("29.99"),
			Category: "Clothing",
			Image:    shirt,
			Images:   []string{shirt},
			Stock:    50,
			Rating:   decimal.RequireFromString("4.4"),
			Reviews:  203,
			Features: []string{"100% Organic Cotton", "Machine Washable", "Pre-shrunk", "Tagless"},
			Specifications: product.Specifications{
				"Material": "100% Organic Cotton",
				"Fit":      "Regular",
				"Care":     "Machine wash cold",
				"Origin":   "USA",
			},
		},
	}
}
