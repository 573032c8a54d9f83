package http_test

import (
	"net/http"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	storehttp "github.com/vasiliy-maslov/ecommerce-storefront/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

func TestProductHandler_List_ParsesQuery(t *testing.T) {
	env := newTestEnv(t)

	var got product.ListFilter
	env.products.On("ListProducts", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(product.ListFilter) }).
		Return(&product.Page{Products: []product.Product{}, CurrentPage: 2}, nil).Once()

	rr := env.do(t, http.MethodGet, "/api/products?search=head&category=Electronics&minPrice=10&maxPrice=500&sortBy=price-high&page=2&limit=6", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	minPrice, maxPrice := decimal.NewFromInt(10), decimal.NewFromInt(500)
	want := product.ListFilter{
		Search: "head", Category: "Electronics", MinPrice: &minPrice, MaxPrice: &maxPrice,
		SortBy: product.SortByPriceHigh, Page: 2, Limit: 6,
	}
	assert.Empty(t, cmp.Diff(want, got, cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })))
}

func TestProductHandler_List_BadPrice(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/products?minPrice=cheap", "", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env.products.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestProductHandler_GetAndCategories(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.Must(uuid.NewV4())
	env.products.On("GetProduct", mock.Anything, id).Return(nil, product.ErrNotFound).Once()
	env.products.On("ListCategories", mock.Anything).Return([]string{"Electronics", "Sports"}, nil).Once()

	rr := env.do(t, http.MethodGet, "/api/products/"+id.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Product not found", decodeBody[storehttp.ErrorResponse](t, rr).Message)

	rr = env.do(t, http.MethodGet, "/api/products/categories/list", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["Electronics","Sports"]`, rr.Body.String())
}

func TestProductHandler_AdminWrites(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, newTestUser(user.RoleAdmin))
	id := uuid.Must(uuid.NewV4())

	body := storehttp.ProductRequest{
		Name: "Desk Lamp", Description: "LED", Price: decimal.RequireFromString("19.99"),
		Category: "Home", Image: "lamp.jpg", Stock: 4, Rating: decimal.RequireFromString("4.5"),
	}

	env.products.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p *product.Product) bool {
		return p.Name == "Desk Lamp" && p.Stock == 4
	})).Return(&product.Product{ID: id, Name: "Desk Lamp"}, nil).Once()
	env.products.On("UpdateProduct", mock.Anything, id, mock.MatchedBy(func(p product.Patch) bool {
		return p.Name != nil && *p.Name == "Desk Lamp" && p.Stock != nil && *p.Stock == 4
	})).Return(&product.Product{ID: id, Name: "Desk Lamp"}, nil).Once()
	env.products.On("DeleteProduct", mock.Anything, id).Return(nil).Once()

	rr := env.do(t, http.MethodPost, "/api/products", token, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPut, "/api/products/"+id.String(), token, body)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/products/"+id.String(), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body.Stock = -1
	rr = env.do(t, http.MethodPost, "/api/products", token, body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	env.products.AssertExpectations(t)
}

func TestProductHandler_Update_Partial(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, newTestUser(user.RoleAdmin))
	id := uuid.Must(uuid.NewV4())

	var got product.Patch
	env.products.On("UpdateProduct", mock.Anything, id, mock.AnythingOfType("product.Patch")).
		Run(func(args mock.Arguments) { got = args.Get(2).(product.Patch) }).
		Return(&product.Product{ID: id, Name: "Desk Lamp", Stock: 20}, nil).Once()

	rr := env.do(t, http.MethodPut, "/api/products/"+id.String(), token, `{"stock":20}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	stock := 20
	assert.Empty(t, cmp.Diff(product.Patch{Stock: &stock}, got))
	assert.Equal(t, 20, decodeBody[product.Product](t, rr).Stock)
}

func TestProductHandler_Update_RejectsBadValues(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, newTestUser(user.RoleAdmin))
	id := uuid.Must(uuid.NewV4())

	for _, body := range []string{`{"stock":-1}`, `{"rating":7}`, `{"name":""}`} {
		rr := env.do(t, http.MethodPut, "/api/products/"+id.String(), token, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	env.products.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
}
