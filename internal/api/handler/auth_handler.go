package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    session.SnapshotStore
	// allowStaffSignup lets /auth/register create support and admin identities.
	allowStaffSignup bool
}

func NewAuthHandler(authService ports.AuthService, sessions session.SnapshotStore, allowStaffSignup bool) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, allowStaffSignup: allowStaffSignup}
}

type registerRequest struct {
	Name      string `json:"name"       validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required"`
	Role      string `json:"role"       validate:"omitempty,oneof=admin client support"`
	ERPSystem string `json:"erp_system" validate:"omitempty,oneof=s4_hana sap_bydesign acumatica"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *domain.User `json:"user,omitempty"`
}

// Register creates a new identity. A client registration also opens a
// session and returns its token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role := domain.Role(req.Role)
	if role.Staff() && !h.allowStaffSignup {
		return domain.ErrForbidden
	}

	sess := session.New(uuid.NewString(), h.sessions)
	user, err := h.authService.Register(c.Request().Context(), sess, ports.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      role,
		ERPSystem: domain.ERPSystem(req.ERPSystem),
	})
	if err != nil {
		return err
	}

	if !sess.IsAuthenticated() {
		return c.JSON(http.StatusCreated, authResponse{User: user})
	}
	resp, err := h.issue(sess, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login authenticates a user and returns a JWT bound to a new session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	sess := session.New(uuid.NewString(), h.sessions)
	user, err := h.authService.Login(c.Request().Context(), sess, req.Email, req.Password)
	if err != nil {
		return err
	}

	resp, err := h.issue(sess, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout ends the caller's session. Its token stops resolving immediately.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	h.authService.Logout(c.Request().Context(), sess)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the identity of the caller's session.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.User())
}

func (h *AuthHandler) issue(sess *session.Session, user *domain.User) (authResponse, error) {
	token, exp, err := h.authService.IssueToken(sess)
	if err != nil {
		return authResponse{}, err
	}
	return authResponse{Token: token, ExpiresAt: &exp, User: user}, nil
}
