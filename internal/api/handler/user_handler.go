package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// UserHandler exposes directory administration.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type createUserRequest struct {
	Name      string `json:"name"       validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required"`
	Role      string `json:"role"       validate:"required,oneof=admin client support"`
	Avatar    string `json:"avatar"`
	ERPSystem string `json:"erp_system" validate:"omitempty,oneof=s4_hana sap_bydesign acumatica"`
	Status    string `json:"status"     validate:"omitempty,oneof=active inactive"`
}

// updateUserRequest is a partial update: absent fields keep their value.
type updateUserRequest struct {
	Name      *string            `json:"name"`
	Email     *string            `json:"email"      validate:"omitempty,email"`
	Role      *domain.Role       `json:"role"       validate:"omitempty,oneof=admin client support"`
	Avatar    *string            `json:"avatar"`
	ERPSystem *domain.ERPSystem  `json:"erp_system" validate:"omitempty,oneof=s4_hana sap_bydesign acumatica"`
	Status    *domain.UserStatus `json:"status"     validate:"omitempty,oneof=active inactive"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type listUsersResponse struct {
	Data []domain.User `json:"data"`
}

// List handles GET /v1/users.
//
// @Summary      List the directory
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.authService.GetAllUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, listUsersResponse{Data: users})
}

// Create handles POST /v1/users.
//
// @Summary      Create an identity
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Identity"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.CreateUser(c.Request().Context(), sess, ports.CreateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		Role:      domain.Role(req.Role),
		Avatar:    req.Avatar,
		ERPSystem: domain.ERPSystem(req.ERPSystem),
		Status:    domain.UserStatus(req.Status),
	}, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Update handles PATCH /v1/users/:id.
//
// @Summary      Update an identity
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateUser(c.Request().Context(), sess, c.Param("id"), domain.UserPatch{
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		Avatar:    req.Avatar,
		ERPSystem: req.ERPSystem,
		Status:    req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /v1/users/:id.
//
// @Summary      Delete an identity
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.authService.DeleteUser(c.Request().Context(), sess, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword handles POST /v1/users/:id/password.
//
// @Summary      Set a new password for an identity
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                true  "User id"
// @Param        body  body  resetPasswordRequest  true  "New password"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/password [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), sess, c.Param("id"), req.Password); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
