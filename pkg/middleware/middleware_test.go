package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/appctx"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/resolution"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/search"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = Error(testLogger())
	e.Use(Context())
	e.Use(Logger(testLogger()))
	return e
}

func TestContext(t *testing.T) {
	e := newEcho()

	var requestID, operatorID string
	var locale language.Tag
	e.GET("/ping", func(c echo.Context) error {
		ctx := c.Request().Context()
		requestID = appctx.GetRequestID(ctx)
		operatorID = appctx.GetOperatorID(ctx)
		locale = appctx.GetLocale(ctx)
		return c.NoContent(http.StatusNoContent)
	})

	t.Run("generates a request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NotEmpty(t, requestID)
		assert.Equal(t, requestID, rec.Header().Get(echo.HeaderXRequestID))
		assert.Equal(t, language.Russian, locale)
	})

	t.Run("keeps incoming values", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(echo.HeaderXRequestID, "req-42")
		req.Header.Set(HeaderOperatorID, "operator-1")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", requestID)
		assert.Equal(t, "operator-1", operatorID)
		assert.Equal(t, language.English, locale)
	})
}

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "nope"},
		{"http error", httperror.NewHTTPError(http.StatusBadGateway, "upstream down"), http.StatusBadGateway, "upstream down"},
		{"domain error", fmt.Errorf("%w: s-1", resolution.ErrSessionNotOpen), http.StatusNotFound, "no resolution is open for this import session: s-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			e.GET("/fail", func(c echo.Context) error { return tt.err })

			req := httptest.NewRequest(http.MethodGet, "/fail", nil)
			req.Header.Set(echo.HeaderXRequestID, "req-1")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, "req-1", body.RequestID)
		})
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{search.ErrUnknownCollection, http.StatusNotFound},
		{fmt.Errorf("%w: limit", search.ErrInvalidQuery), http.StatusBadRequest},
		{resolution.ErrUnknownRow, http.StatusNotFound},
		{resolution.ErrRowInvalid, http.StatusBadRequest},
		{resolution.ErrMissingPersonID, http.StatusBadRequest},
		{resolution.ErrDecisionsIncomplete, http.StatusPreconditionFailed},
		{resolution.ErrCommitInProgress, http.StatusConflict},
		{resolution.ErrSessionClosed, http.StatusConflict},
		{resolution.ErrSessionLocked, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			translated := Translate(tt.err)
			require.True(t, httperror.IsHTTPError(translated))
			assert.Equal(t, tt.status, httperror.GetStatusCode(translated))
		})
	}

	t.Run("passes through", func(t *testing.T) {
		assert.Nil(t, Translate(nil))

		upstream := httperror.NewHTTPError(http.StatusConflict, "already committed")
		assert.Equal(t, upstream, Translate(upstream))

		plain := errors.New("boom")
		assert.Equal(t, plain, Translate(plain))
	})
}
