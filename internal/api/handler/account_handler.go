package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/core/ports"
)

// AccountHandler serves the account directory routes.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// --- Request types ---

type updateSelfRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=1,max=72"`
	Avatar   *string `json:"avatar"`
}

type updateAccountRequest struct {
	updateSelfRequest
	Role *string `json:"role" validate:"omitempty,oneof=patient healthcare_provider admin"`
}

func (r updateSelfRequest) input() ports.UpdateAccountInput {
	return ports.UpdateAccountInput{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Avatar:   r.Avatar,
	}
}

// List returns the public fields of every account.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.PublicAccount
// @Failure      500  {object}  ErrorResponse
// @Router       /users [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

// Get returns the public fields of one account.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  domain.PublicAccount
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	account, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// UpdateSelf changes the caller's own profile. The target id always comes
// from the token.
//
// @Summary      Update current user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateSelfRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users [put]
func (h *AccountHandler) UpdateSelf(c echo.Context) error {
	caller, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req updateSelfRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.service.UpdateSelf(c.Request().Context(), caller, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Message: "User updated", User: *account})
}

// DeleteSelf removes the caller's own account.
//
// @Summary      Delete current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users [delete]
func (h *AccountHandler) DeleteSelf(c echo.Context) error {
	caller, err := identityFrom(c)
	if err != nil {
		return err
	}

	account, err := h.service.DeleteSelf(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Message: "User deleted", User: *account})
}

// UpdateByAdmin changes any account, including its role.
//
// @Summary      Update user as admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Account ID"
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /users/{id} [put]
func (h *AccountHandler) UpdateByAdmin(c echo.Context) error {
	caller, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := req.input()
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}

	account, err := h.service.UpdateByAdmin(c.Request().Context(), caller, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Message: "User updated", User: *account})
}

// DeleteByAdmin removes any account.
//
// @Summary      Delete user as admin
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (h *AccountHandler) DeleteByAdmin(c echo.Context) error {
	caller, err := identityFrom(c)
	if err != nil {
		return err
	}

	account, err := h.service.DeleteByAdmin(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Message: "User deleted", User: *account})
}
