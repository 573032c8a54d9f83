package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
)

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  *int      `json:"quantity,omitempty" validate:"omitempty,gte=1"`
}

type UpdateCartRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  *int      `json:"quantity" validate:"required"`
}

type CartHandler struct {
	service  cart.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{service: service, validate: newValidator()}
}

// RegisterRoutes expects router to be behind Authenticate.
func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGet)
	router.Post("/cart/add", h.handleAdd)
	router.Put("/cart/update", h.handleUpdate)
	router.Delete("/cart/remove/{productId}", h.handleRemove)
	router.Delete("/cart/clear", h.handleClear)
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}

	c, err := h.service.GetCart(r.Context(), u.ID)
	if err != nil {
		respondWithServiceError(w, r, err, "failed to load cart")
		return
	}
	respondWithJSON(w, r, http.StatusOK, c)
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := h.service.AddItem(r.Context(), u.ID, req.ProductID, quantity); err != nil {
		respondWithServiceError(w, r, err, "failed to add item to cart")
		return
	}
	respondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Product added to cart"})
}

func (h *CartHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateCartRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	if err := h.service.SetQuantity(r.Context(), u.ID, req.ProductID, *req.Quantity); err != nil {
		respondWithServiceError(w, r, err, "failed to update cart")
		return
	}

	msg := "Cart updated"
	if *req.Quantity <= 0 {
		msg = "Item removed from cart"
	}
	respondWithJSON(w, r, http.StatusOK, MessageResponse{Message: msg})
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathUUID(w, r, "productId")
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), u.ID, productID); err != nil {
		respondWithServiceError(w, r, err, "failed to remove cart item")
		return
	}
	respondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Item removed from cart"})
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), u.ID); err != nil {
		respondWithServiceError(w, r, err, "failed to clear cart")
		return
	}
	respondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Cart cleared"})
}
