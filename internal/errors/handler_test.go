package errors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewHTTPErrorHandler(zerolog.New(io.Discard))
	handler(err, c)

	var resp Response
	if jerr := json.Unmarshal(rec.Body.Bytes(), &resp); jerr != nil {
		t.Fatalf("invalid envelope: %v", jerr)
	}
	return rec, resp
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{ErrEmailNotFound, http.StatusNotFound},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrSessionNotFound, http.StatusNotFound},
		{ErrInvalidCredentials, http.StatusBadRequest},
		{ErrInvalidRefreshToken, http.StatusBadRequest},
		{ErrEmailTaken, http.StatusBadRequest},
		{ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		rec, resp := render(t, tt.err)
		if rec.Code != tt.code {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.code, rec.Code)
		}
		if resp.Meta.OK {
			t.Fatalf("%v: expected failure envelope", tt.err)
		}
		if resp.Meta.Message != tt.err.Error() {
			t.Fatalf("%v: unexpected message %q", tt.err, resp.Meta.Message)
		}
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsNotLeaked(t *testing.T) {
	rec, resp := render(t, errors.New("dial tcp 10.0.0.5:3306: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp.Meta.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %q", resp.Meta.Message)
	}
}

func TestHTTPErrorHandler_EchoErrorsKeepTheirCode(t *testing.T) {
	rec, resp := render(t, echo.NewHTTPError(http.StatusBadRequest, "no refresh token cookie found"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp.Meta.Message != "no refresh token cookie found" {
		t.Fatalf("unexpected message: %q", resp.Meta.Message)
	}
}
