package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/order"
)

// OrderItemRequest accepts cart lines as returned by GET /cart. Category and
// stock are part of that shape but are not stored on the order.
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"productId" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Image     string          `json:"image"`
	Category  string          `json:"category,omitempty"`
	Stock     *int            `json:"stock,omitempty"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest    `json:"items" validate:"required,min=1,dive"`
	TotalAmount     decimal.Decimal       `json:"totalAmount" validate:"gte=0"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod" validate:"required,max=50"`
	PaymentID       *string               `json:"paymentId,omitempty"`
	RazorpayOrderID *string               `json:"razorpayOrderId,omitempty"`
}

func (req CreateOrderRequest) toInput() order.CreateInput {
	items := make(order.Items, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return order.CreateInput{
		Items:           items,
		TotalAmount:     req.TotalAmount,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentID:       req.PaymentID,
		RazorpayOrderID: req.RazorpayOrderID,
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service, validate: newValidator()}
}

// RegisterRoutes expects router to be behind Authenticate; admin guards the
// back-office routes.
func (h *OrderHandler) RegisterRoutes(router chi.Router, admin func(http.Handler) http.Handler) {
	router.Post("/orders", h.handleCreate)
	router.Get("/orders/my-orders", h.handleListMine)
	router.Get("/orders/{id}", h.handleGet)

	router.With(admin).Get("/orders", h.handleListAll)
	router.With(admin).Put("/orders/{id}/status", h.handleSetStatus)
}

func (h *OrderHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.CreateOrder(r.Context(), u.ID, req.toInput())
	if err != nil {
		respondWithServiceError(w, r, err, "failed to create order")
		return
	}
	respondWithJSON(w, r, http.StatusCreated, created)
}

func (h *OrderHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListMyOrders(r.Context(), u.ID)
	if err != nil {
		respondWithServiceError(w, r, err, "failed to list orders")
		return
	}
	respondWithJSON(w, r, http.StatusOK, orders)
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.GetOrder(r.Context(), id, u.ID, u.IsAdmin())
	if err != nil {
		respondWithServiceError(w, r, err, "failed to get order")
		return
	}
	respondWithJSON(w, r, http.StatusOK, o)
}

func (h *OrderHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.service.ListOrders(r.Context(), order.ListFilter{
		Status: order.Status(q.Get("status")),
		Page:   queryInt(q.Get("page")),
		Limit:  queryInt(q.Get("limit")),
	})
	if err != nil {
		respondWithServiceError(w, r, err, "failed to list orders")
		return
	}
	respondWithJSON(w, r, http.StatusOK, page)
}

func (h *OrderHandler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.SetStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		respondWithServiceError(w, r, err, "failed to update order status")
		return
	}
	respondWithJSON(w, r, http.StatusOK, updated)
}
