package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	storehttp "github.com/vasiliy-maslov/ecommerce-storefront/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/order"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

func createOrderBody(productID uuid.UUID) map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"productId": productID, "name": "Cable", "price": 10, "quantity": 2, "image": "cable.jpg"},
		},
		"totalAmount": 20,
		"shippingAddress": map[string]any{
			"name": "John Doe", "email": "john@example.com", "address": "1 Main St",
			"city": "Pune", "state": "MH", "zipCode": "411001", "phone": "9999999999",
		},
		"paymentMethod":   "razorpay",
		"paymentId":       "pay_1",
		"razorpayOrderId": "order_1",
	}
}

func TestOrderHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	u := newTestUser(user.RoleUser)
	token := env.login(t, u)
	productID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	env.orders.On("CreateOrder", mock.Anything, u.ID, mock.MatchedBy(func(in order.CreateInput) bool {
		return len(in.Items) == 1 &&
			in.Items[0].ProductID == productID &&
			in.Items[0].Quantity == 2 &&
			in.TotalAmount.Equal(decimal.NewFromInt(20)) &&
			in.ShippingAddress.ZipCode == "411001" &&
			in.PaymentID != nil && *in.PaymentID == "pay_1"
	})).Return(&order.Order{ID: orderID, UserID: u.ID, Status: order.StatusPending, TotalAmount: decimal.NewFromInt(20)}, nil).Once()

	rr := env.do(t, http.MethodPost, "/api/orders", token, createOrderBody(productID))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	got := decodeBody[order.Order](t, rr)
	assert.Equal(t, orderID, got.ID)
	assert.Equal(t, order.StatusPending, got.Status)
	env.orders.AssertExpectations(t)
}

func TestOrderHandler_Create_FromCartLines(t *testing.T) {
	env := newTestEnv(t)
	u := newTestUser(user.RoleUser)
	token := env.login(t, u)
	cableID := uuid.Must(uuid.NewV4())
	mouseID := uuid.Must(uuid.NewV4())

	env.cart.On("GetCart", mock.Anything, u.ID).Return(&cart.Cart{
		Items: []cart.Line{
			{ProductID: cableID, Name: "Cable", Price: decimal.RequireFromString("10.00"), Image: "cable.jpg", Category: "Accessories", Stock: 7, Quantity: 2},
			{ProductID: mouseID, Name: "Mouse", Price: decimal.RequireFromString("2.55"), Image: "mouse.jpg", Category: "Accessories", Stock: 3, Quantity: 3},
		},
		Total:     decimal.RequireFromString("27.65"),
		ItemCount: 5,
	}, nil).Once()

	rr := env.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	c := decodeBody[map[string]json.RawMessage](t, rr)

	body := createOrderBody(cableID)
	body["items"] = c["items"]
	body["totalAmount"] = c["total"]

	env.orders.On("CreateOrder", mock.Anything, u.ID, mock.MatchedBy(func(in order.CreateInput) bool {
		return len(in.Items) == 2 &&
			in.Items[0].ProductID == cableID && in.Items[0].Quantity == 2 &&
			in.Items[1].ProductID == mouseID && in.Items[1].Price.Equal(decimal.RequireFromString("2.55")) &&
			in.TotalAmount.Equal(decimal.RequireFromString("27.65"))
	})).Return(&order.Order{ID: uuid.Must(uuid.NewV4()), UserID: u.ID, Status: order.StatusPending}, nil).Once()

	rr = env.do(t, http.MethodPost, "/api/orders", token, body)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	env.cart.AssertExpectations(t)
	env.orders.AssertExpectations(t)
}

func TestOrderHandler_Create_Rejections(t *testing.T) {
	t.Run("missing shipping fields", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.login(t, newTestUser(user.RoleUser))
		body := createOrderBody(uuid.Must(uuid.NewV4()))
		body["shippingAddress"] = map[string]any{"name": "John"}

		rr := env.do(t, http.MethodPost, "/api/orders", token, body)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeBody[storehttp.ValidationErrorResponse](t, rr).Details, "zipCode")
	})

	t.Run("empty items", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.login(t, newTestUser(user.RoleUser))
		body := createOrderBody(uuid.Must(uuid.NewV4()))
		body["items"] = []any{}

		rr := env.do(t, http.MethodPost, "/api/orders", token, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("stock exhausted", func(t *testing.T) {
		env := newTestEnv(t)
		u := newTestUser(user.RoleUser)
		token := env.login(t, u)
		env.orders.On("CreateOrder", mock.Anything, u.ID, mock.Anything).Return(nil, order.ErrInsufficientStock).Once()

		rr := env.do(t, http.MethodPost, "/api/orders", token, createOrderBody(uuid.Must(uuid.NewV4())))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "insufficient_stock", decodeBody[storehttp.ErrorResponse](t, rr).Error)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	env := newTestEnv(t)
	stranger := newTestUser(user.RoleUser)
	token := env.login(t, stranger)
	id := uuid.Must(uuid.NewV4())

	env.orders.On("GetOrder", mock.Anything, id, stranger.ID, false).Return(nil, order.ErrNotFound).Once()

	rr := env.do(t, http.MethodGet, "/api/orders/"+id.String(), token, nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "order_not_found", decodeBody[storehttp.ErrorResponse](t, rr).Error)
}

func TestOrderHandler_ListMine(t *testing.T) {
	env := newTestEnv(t)
	u := newTestUser(user.RoleUser)
	token := env.login(t, u)
	env.orders.On("ListMyOrders", mock.Anything, u.ID).Return([]order.Order{}, nil).Once()

	rr := env.do(t, http.MethodGet, "/api/orders/my-orders", token, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestOrderHandler_Admin(t *testing.T) {
	env := newTestEnv(t)
	admin := newTestUser(user.RoleAdmin)
	token := env.login(t, admin)
	id := uuid.Must(uuid.NewV4())

	env.orders.On("ListOrders", mock.Anything, order.ListFilter{Status: order.StatusPending, Page: 2, Limit: 5}).
		Return(&order.Page{Orders: []order.Order{}, TotalPages: 2, CurrentPage: 2, TotalOrders: 6}, nil).Once()
	env.orders.On("SetStatus", mock.Anything, id, order.StatusShipped).
		Return(&order.Order{ID: id, Status: order.StatusShipped}, nil).Once()
	env.orders.On("SetStatus", mock.Anything, id, order.StatusPending).
		Return(nil, order.ErrInvalidStatusTransition).Once()
	env.orders.On("SetStatus", mock.Anything, id, order.StatusCancelled).
		Return(nil, order.ErrStatusConflict).Once()

	rr := env.do(t, http.MethodGet, "/api/orders?status=pending&page=2&limit=5", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 6, decodeBody[order.Page](t, rr).TotalOrders)

	rr = env.do(t, http.MethodPut, "/api/orders/"+id.String()+"/status", token, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, order.StatusShipped, decodeBody[order.Order](t, rr).Status)

	rr = env.do(t, http.MethodPut, "/api/orders/"+id.String()+"/status", token, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/orders/"+id.String()+"/status", token, map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "status_conflict", decodeBody[storehttp.ErrorResponse](t, rr).Error)

	rr = env.do(t, http.MethodPut, "/api/orders/"+id.String()+"/status", token, map[string]string{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	env.orders.AssertExpectations(t)
}
