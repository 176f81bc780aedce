package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/appctx"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/confidence"
)

// HeaderOperatorID is the header carrying the console operator id
const HeaderOperatorID = "X-Operator-ID"

// Context copies request metadata and the negotiated locale onto the request context.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := req.Context()
			ctx = appctx.SetRequestID(ctx, requestID)
			ctx = appctx.SetRoute(ctx, c.Path())
			ctx = appctx.SetRemoteIP(ctx, c.RealIP())
			ctx = appctx.SetOperatorID(ctx, req.Header.Get(HeaderOperatorID))
			ctx = appctx.SetLocale(ctx, confidence.Locale(req.Header.Get("Accept-Language")))

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
