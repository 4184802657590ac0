package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/service"
)

// AdminHandler handles the admin-only user-management endpoints.
type AdminHandler struct {
	userService service.UserService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(userService service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// AdminCreateUserRequest is the admin variant of registration: the role is chosen.
type AdminCreateUserRequest struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=32"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Phone           string `json:"phone" validate:"required"`
	DOB             string `json:"dob" validate:"required,datetime=2006-01-02"`
	Role            string `json:"role" validate:"required,oneof=user admin"`
}

// ListUsers godoc
// @Summary List users with pagination and search
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(7)
// @Param searchText query string false "Matches email, first name and last name"
// @Success 200 {object} errors.Response
// @Failure 403 {object} errors.Response
// @Router /auth/ [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	users, err := h.userService.ListUsers(c.Request().Context(), repository.SearchQuery{
		Page:       page,
		Limit:      limit,
		SearchText: c.QueryParam("searchText"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.OK("get data successfully", users))
}

// CreateUser godoc
// @Summary Create a user with a chosen role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AdminCreateUserRequest true "User data"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 403 {object} errors.Response
// @Router /auth/ [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req AdminCreateUserRequest
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

	user, err := h.userService.CreateUser(c.Request().Context(), service.CreateUserInput{
		RegisterInput: service.RegisterInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Password:  req.Password,
			Phone:     req.Phone,
			DOB:       dob,
		},
		Role: model.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.OK("user created successfully", user))
}

// DeleteUser godoc
// @Summary Delete a user by id
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} errors.Response
// @Failure 403 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /auth/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.userService.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apperrors.OK("delete user successfully", nil))
}
