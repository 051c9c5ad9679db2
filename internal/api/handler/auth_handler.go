package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Avatar   string `json:"avatar"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type accountResponse struct {
	Message string               `json:"message"`
	User    domain.PublicAccount `json:"user"`
}

type identityResponse struct {
	Message string          `json:"message"`
	User    domain.Identity `json:"user"`
}

type loginUser struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Avatar   string      `json:"avatar,omitempty"`
	Token    string      `json:"token"`
}

type loginResponse struct {
	Message string    `json:"message"`
	User    loginUser `json:"user"`
}

// Check reports that the auth server is reachable.
//
// @Summary      Auth server check
// @Tags         users
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /users/check [get]
func (h *AuthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Auth server is up and running"})
}

// Register creates a patient account. Any role in the body is ignored.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /users [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, accountResponse{Message: "User created", User: *account})
}

// Login authenticates a user and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidCredentials
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	a := result.Account
	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		User: loginUser{
			ID:       a.ID,
			Username: a.Username,
			Email:    a.Email,
			Role:     a.Role,
			Avatar:   a.Avatar,
			Token:    result.Token,
		},
	})
}

// Token echoes the identity behind a valid bearer token.
//
// @Summary      Check token
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  identityResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/token [get]
func (h *AuthHandler) Token(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityResponse{Message: "Token is valid", User: identity})
}
