package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-shop-api/internal/domain"
	"go-gin-shop-api/internal/feature/user"
	"go-gin-shop-api/internal/transport/http/ez"
	resp "go-gin-shop-api/internal/transport/http/response"
	"go-gin-shop-api/pkg/utils"
)

// AccountService is implemented by *user.Service.
type AccountService interface {
	SignUp(ctx context.Context, in user.SignUpInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type UserHandler struct {
	svc AccountService
	log *zap.Logger
}

func NewUserHandler(svc AccountService, l *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: l}
}

func (h *UserHandler) Priority() int { return 10 }

func (h *UserHandler) MountAPI(public, authed *gin.RouterGroup) {
	ez.RegisterAction(public, h.log, ez.Action[user.SignUpInput]{
		Method:  http.MethodPost,
		Path:    "/signup",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Handler: h.signUp,
	})
	ez.RegisterAction(public, h.log, ez.Action[loginIn]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Handler: h.login,
	})
	ez.RegisterAction(authed, h.log, ez.Action[findUserIn]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  ez.BindQuery,
		Handler: h.findByEmail,
	})
}

func (h *UserHandler) signUp(c *gin.Context, in *user.SignUpInput) (resp.Body, error) {
	u, tok, err := h.svc.SignUp(c.Request.Context(), *in)
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return resp.Body{}, ez.BadRequest("Please provide all required fields.")
	case errors.Is(err, domain.ErrInvalidInput):
		return resp.Body{}, ez.BadRequest(fmt.Sprintf("Password must be at most %d bytes.", utils.MaxPasswordBytes))
	case errors.Is(err, domain.ErrDuplicateEmail):
		return resp.Body{}, ez.Conflict(fmt.Sprintf("User with email %s already exists.", domain.NormalizeEmail(in.Email)))
	case err != nil:
		return resp.Body{}, ez.Internal("Error creating user.", err)
	}
	return resp.Body{Message: "User created successfully.", Data: user.NewView(u), Token: tok}, nil
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) login(c *gin.Context, in *loginIn) (resp.Body, error) {
	u, tok, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return resp.Body{}, ez.BadRequest("Please provide all required fields.")
	case errors.Is(err, domain.ErrNotFound):
		return resp.Body{}, ez.NotFound("User not found.")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return resp.Body{}, ez.Unauthorized("Invalid email or password.")
	case err != nil:
		return resp.Body{}, ez.Internal("Error logging in user.", err)
	}
	return resp.Body{Message: "User logged in successfully.", Data: user.NewView(u), Token: tok}, nil
}

type findUserIn struct {
	Email string `form:"email"`
}

func (h *UserHandler) findByEmail(c *gin.Context, in *findUserIn) (resp.Body, error) {
	u, err := h.svc.GetByEmail(c.Request.Context(), in.Email)
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return resp.Body{}, ez.BadRequest("Email is required.")
	case errors.Is(err, domain.ErrNotFound):
		return resp.Body{}, ez.NotFound("User not found.")
	case err != nil:
		return resp.Body{}, ez.Internal("Error finding user.", err)
	}
	return resp.OK("User found successfully.", user.NewView(u)), nil
}
