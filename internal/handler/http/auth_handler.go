package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

type TokenIssuer interface {
	Issue(userID uuid.UUID, role string) (string, error)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	IsBlocked bool      `json:"isBlocked"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, IsBlocked: u.IsBlocked}
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type AuthHandler struct {
	users    user.Service
	tokens   TokenIssuer
	validate *validator.Validate
}

func NewAuthHandler(users user.Service, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, validate: newValidator()}
}

// RegisterRoutes mounts the public auth routes; authed wraps /me.
func (h *AuthHandler) RegisterRoutes(router chi.Router, authed func(http.Handler) http.Handler) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
	router.With(authed).Get("/auth/me", h.handleMe)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	u, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, err, "failed to register user")
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, u)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, err, "login failed")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, u)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, r, http.StatusOK, newUserResponse(u))
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, code int, u *user.User) {
	token, err := h.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		respondWithServiceError(w, r, err, "failed to issue token")
		return
	}
	respondWithJSON(w, r, code, AuthResponse{Token: token, User: newUserResponse(u)})
}
