package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// NewHTTPErrorHandler returns the central echo error handler. Every error that
// escapes a handler is rendered as the standard envelope: domain errors map to
// their status codes, validation failures carry field detail, and anything
// unexpected is logged in full while the client sees only a generic message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolve(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolve(err error, log zerolog.Logger, c echo.Context) (int, Response) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return http.StatusBadRequest, Fail("Validation error in request body", fields...)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, Fail(fmt.Sprintf("%v", he.Message))
	}

	if code := MapError(err); code != http.StatusInternalServerError {
		return code, Fail(err.Error())
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
	return http.StatusInternalServerError, Fail("internal server error")
}
