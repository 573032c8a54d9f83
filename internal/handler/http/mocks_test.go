package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	storehttp "github.com/vasiliy-maslov/ecommerce-storefront/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/order"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, u *user.User, password string) (*user.User, error) {
	args := m.Called(ctx, u, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, page, limit int) (*user.Page, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Page), args.Error(1)
}

func (m *MockUserService) ToggleBlock(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(ctx context.Context, filter product.ListFilter) (*product.Page, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Page), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id uuid.UUID, patch product.Patch) (*product.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	return m.Called(ctx, userID, productID, quantity).Error(0)
}

func (m *MockCartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	return m.Called(ctx, userID, productID, quantity).Error(0)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, in order.CreateInput) (*order.Order, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*order.Order, error) {
	args := m.Called(ctx, id, requesterID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter order.ListFilter) (*order.Page, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Page), args.Error(1)
}

func (m *MockOrderService) SetStatus(ctx context.Context, id uuid.UUID, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockRazorpay struct {
	mock.Mock
}

func (m *MockRazorpay) CreateOrder(ctx context.Context, amount decimal.Decimal) (*payment.GatewayOrder, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayOrder), args.Error(1)
}

func (m *MockRazorpay) Verify(ctx context.Context, orderID, paymentID, signature string) (*payment.Verification, error) {
	args := m.Called(ctx, orderID, paymentID, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Verification), args.Error(1)
}

type MockStripe struct {
	mock.Mock
}

func (m *MockStripe) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, userID uuid.UUID) (*payment.Intent, error) {
	args := m.Called(ctx, amount, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

type testEnv struct {
	users    *MockUserService
	products *MockProductService
	cart     *MockCartService
	orders   *MockOrderService
	razorpay *MockRazorpay
	stripe   *MockStripe
	issuer   *auth.Issuer
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:    new(MockUserService),
		products: new(MockProductService),
		cart:     new(MockCartService),
		orders:   new(MockOrderService),
		razorpay: new(MockRazorpay),
		stripe:   new(MockStripe),
		issuer:   auth.NewIssuer("test-secret", time.Hour),
	}
	env.router = storehttp.NewRouter(storehttp.Dependencies{
		Logger:   zerolog.Nop(),
		Users:    env.users,
		Products: env.products,
		Cart:     env.cart,
		Orders:   env.orders,
		Razorpay: env.razorpay,
		Stripe:   env.stripe,
		Tokens:   env.issuer,
	})
	return env
}

func newTestUser(role user.Role) *user.User {
	return &user.User{
		ID:    uuid.Must(uuid.NewV4()),
		Name:  "John Doe",
		Email: "john@example.com",
		Role:  role,
	}
}

// login issues a token for u and lets the authenticator resolve it.
func (e *testEnv) login(t *testing.T, u *user.User) string {
	t.Helper()
	token, err := e.issuer.Issue(u.ID, string(u.Role))
	require.NoError(t, err)
	e.users.On("GetUserByID", mock.Anything, u.ID).Return(u, nil).Maybe()
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out), "body: %s", rr.Body.String())
	return out
}
