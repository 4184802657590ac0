package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo-contrib/echoprometheus"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"userhub/internal/auth"
	"userhub/internal/config"
	"userhub/internal/handler"
	"userhub/internal/middleware"
	"userhub/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
) {
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echoprometheus.NewMiddleware("userhub"))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Access tokens are verified here; failure detail stays server-side and
	// the client only ever sees a single unauthorized classification.
	requireAccessToken := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.AccessTokenSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.AccessClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
		},
	})

	api := e.Group("/api")

	user := api.Group("/user")
	user.POST("/register", userHandler.Register)
	user.POST("/login", userHandler.Login)
	user.GET("/refreshToken", userHandler.RefreshToken)
	user.GET("/logout", userHandler.Logout, requireAccessToken)
	user.PUT("/", userHandler.UpdateProfile, requireAccessToken)
	user.PATCH("/changePassword", userHandler.ChangePassword, requireAccessToken)
	user.GET("/:id", userHandler.ReadProfile)

	admin := api.Group("/auth", requireAccessToken, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/", adminHandler.ListUsers)
	admin.POST("/", adminHandler.CreateUser)
	admin.DELETE("/:id", adminHandler.DeleteUser)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
