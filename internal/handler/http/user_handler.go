package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

type ToggleBlockResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes expects router to be behind Authenticate and RequireAdmin.
func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users", h.handleList)
	router.Put("/users/{id}/toggle-block", h.handleToggleBlock)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.service.ListUsers(r.Context(), queryInt(q.Get("page")), queryInt(q.Get("limit")))
	if err != nil {
		respondWithServiceError(w, r, err, "failed to list users")
		return
	}
	respondWithJSON(w, r, http.StatusOK, page)
}

func (h *UserHandler) handleToggleBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	u, err := h.service.ToggleBlock(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err, "failed to toggle user block")
		return
	}

	state := "unblocked"
	if u.IsBlocked {
		state = "blocked"
	}
	respondWithJSON(w, r, http.StatusOK, ToggleBlockResponse{
		Message: fmt.Sprintf("User %s successfully", state),
		User:    newUserResponse(u),
	})
}
