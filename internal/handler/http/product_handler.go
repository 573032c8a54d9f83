package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
)

type ProductRequest struct {
	Name           string            `json:"name" validate:"required,max=200"`
	Description    string            `json:"description" validate:"required"`
	Price          decimal.Decimal   `json:"price" validate:"gte=0"`
	OriginalPrice  *decimal.Decimal  `json:"originalPrice,omitempty"`
	Category       string            `json:"category" validate:"required"`
	Image          string            `json:"image" validate:"required"`
	Images         []string          `json:"images"`
	Stock          int               `json:"stock" validate:"gte=0"`
	Rating         decimal.Decimal   `json:"rating" validate:"gte=0,lte=5"`
	Reviews        int               `json:"reviews" validate:"gte=0"`
	Features       []string          `json:"features"`
	Specifications map[string]string `json:"specifications"`
	IsNew          bool              `json:"isNew"`
	IsFeatured     bool              `json:"isFeatured"`
}

func (req ProductRequest) toProduct() *product.Product {
	return &product.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		OriginalPrice:  req.OriginalPrice,
		Category:       req.Category,
		Image:          req.Image,
		Images:         req.Images,
		Stock:          req.Stock,
		Rating:         req.Rating,
		Reviews:        req.Reviews,
		Features:       req.Features,
		Specifications: req.Specifications,
		IsNew:          req.IsNew,
		IsFeatured:     req.IsFeatured,
	}
}

// UpdateProductRequest is a partial update: omitted fields keep their
// stored values.
type UpdateProductRequest struct {
	Name           *string           `json:"name,omitempty" validate:"omitnil,min=1,max=200"`
	Description    *string           `json:"description,omitempty"`
	Price          *decimal.Decimal  `json:"price,omitempty" validate:"omitnil,gte=0"`
	OriginalPrice  *decimal.Decimal  `json:"originalPrice,omitempty" validate:"omitnil,gte=0"`
	Category       *string           `json:"category,omitempty" validate:"omitnil,min=1"`
	Image          *string           `json:"image,omitempty" validate:"omitnil,min=1"`
	Images         []string          `json:"images,omitempty"`
	Stock          *int              `json:"stock,omitempty" validate:"omitnil,gte=0"`
	Rating         *decimal.Decimal  `json:"rating,omitempty" validate:"omitnil,gte=0,lte=5"`
	Reviews        *int              `json:"reviews,omitempty" validate:"omitnil,gte=0"`
	Features       []string          `json:"features,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	IsNew          *bool             `json:"isNew,omitempty"`
	IsFeatured     *bool             `json:"isFeatured,omitempty"`
}

func (req UpdateProductRequest) toPatch() product.Patch {
	return product.Patch{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		OriginalPrice:  req.OriginalPrice,
		Category:       req.Category,
		Image:          req.Image,
		Images:         req.Images,
		Stock:          req.Stock,
		Rating:         req.Rating,
		Reviews:        req.Reviews,
		Features:       req.Features,
		Specifications: req.Specifications,
		IsNew:          req.IsNew,
		IsFeatured:     req.IsFeatured,
	}
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{service: service, validate: newValidator()}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router, authed, admin func(http.Handler) http.Handler) {
	router.Get("/products", h.handleList)
	router.Get("/products/categories/list", h.handleCategories)
	router.Get("/products/{id}", h.handleGet)

	router.Group(func(r chi.Router) {
		r.Use(authed, admin)
		r.Post("/products", h.handleCreate)
		r.Put("/products/{id}", h.handleUpdate)
		r.Delete("/products/{id}", h.handleDelete)
	})
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := product.ListFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		SortBy:   product.ParseSortKey(q.Get("sortBy")),
		Page:     queryInt(q.Get("page")),
		Limit:    queryInt(q.Get("limit")),
	}

	var ok bool
	if filter.MinPrice, ok = queryDecimal(q.Get("minPrice")); !ok {
		respondWithError(w, r, http.StatusBadRequest, "invalid_query", "minPrice must be a number")
		return
	}
	if filter.MaxPrice, ok = queryDecimal(q.Get("maxPrice")); !ok {
		respondWithError(w, r, http.StatusBadRequest, "invalid_query", "maxPrice must be a number")
		return
	}

	page, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, err, "failed to list products")
		return
	}
	respondWithJSON(w, r, http.StatusOK, page)
}

func (h *ProductHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "failed to list categories")
		return
	}
	respondWithJSON(w, r, http.StatusOK, categories)
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err, "failed to get product")
		return
	}
	respondWithJSON(w, r, http.StatusOK, p)
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.CreateProduct(r.Context(), req.toProduct())
	if err != nil {
		respondWithServiceError(w, r, err, "failed to create product")
		return
	}
	respondWithJSON(w, r, http.StatusCreated, created)
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.UpdateProduct(r.Context(), id, req.toPatch())
	if err != nil {
		respondWithServiceError(w, r, err, "failed to update product")
		return
	}
	respondWithJSON(w, r, http.StatusOK, updated)
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err, "failed to delete product")
		return
	}
	respondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.FromString(raw)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, "invalid_id", "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns 0 for missing or malformed values so defaults apply.
func queryInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func queryDecimal(raw string) (*decimal.Decimal, bool) {
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, false
	}
	return &d, true
}
