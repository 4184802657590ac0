package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"userhub/internal/auth"
	apperrors "userhub/internal/errors"
	"userhub/internal/middleware"
	"userhub/internal/service"
)

const (
	refreshCookieName = "refreshToken"
	dobLayout         = "2006-01-02"
)

// UserHandler handles the public and self-service user endpoints.
type UserHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(authService service.AuthService, userService service.UserService) *UserHandler {
	return &UserHandler{authService: authService, userService: userService}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=32"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Phone           string `json:"phone" validate:"required"`
	DOB             string `json:"dob" validate:"required,datetime=2006-01-02"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ChangePasswordRequest represents a password change request.
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=6,max=32"`
	NewPasswordConfirm string `json:"newPasswordConfirm" validate:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest represents a profile update; absent fields keep their value.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1"`
	Phone     *string `json:"phone" validate:"omitempty,min=1"`
	DOB       *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

// LoginResponse is the resData payload of a successful login.
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        interface{} `json:"user"`
}

func (h *UserHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.RefreshTokenExpiry / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UserHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register godoc
// @Summary Register a new user
// @Tags user
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Router /user/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dob, err := time.Parse(dobLayout, req.DOB)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dob")
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		DOB:       dob,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, apperrors.OK("user registered successfully", user))
}

// Login godoc
// @Summary Login and open a session
// @Tags user
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 202 {object} errors.Response{resData=LoginResponse}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /user/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	accessToken, refreshToken, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, refreshToken)

	return c.JSON(http.StatusAccepted, apperrors.OK("logged in successfully", LoginResponse{
		AccessToken: accessToken,
		User:        user,
	}))
}

// RefreshToken godoc
// @Summary Exchange the refresh cookie for a new token pair
// @Tags user
// @Produce json
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Router /user/refreshToken [get]
func (h *UserHandler) RefreshToken(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no refresh token cookie found")
	}

	accessToken, refreshToken, err := h.authService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, refreshToken)

	return c.JSON(http.StatusOK, apperrors.OK("refresh token rotated successfully", map[string]string{
		"accessToken": accessToken,
	}))
}

// Logout godoc
// @Summary Close the current session
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /user/logout [get]
func (h *UserHandler) Logout(c echo.Context) error {
	var token string
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}

	// The cookie is dropped regardless of whether a session matched.
	h.clearRefreshCookie(c)

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, apperrors.OK("logged out successfully", nil))
}

// ReadProfile godoc
// @Summary Read a public profile by id
// @Tags user
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /user/{id} [get]
func (h *UserHandler) ReadProfile(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.OK("found information successfully", user))
}

// UpdateProfile godoc
// @Summary Update the caller's own profile
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Router /user/ [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if req.DOB != nil {
		dob, err := time.Parse(dobLayout, *req.DOB)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid dob")
		}
		in.DOB = &dob
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), claims.UserID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.OK("the data has been updated", user))
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Router /user/changePassword [patch]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.OK("changed password successfully", nil))
}
