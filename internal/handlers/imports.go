package handlers

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/appctx"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/resolution"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/utils"
)

// Resolutions runs duplicate resolution for import sessions
type Resolutions interface {
	Open(ctx context.Context, sessionID string) (*resolution.View, error)
	Get(ctx context.Context, sessionID string) (*resolution.View, error)
	Choose(ctx context.Context, sessionID string, rowNumber int, action models.DecisionAction, personID *int64) (*resolution.View, error)
	Confirm(ctx context.Context, sessionID string) (*resolution.View, error)
	Cancel(ctx context.Context, sessionID string) error
}

// ImportHandler handles the duplicate review screen of an import
type ImportHandler struct {
	resolutions Resolutions
	logger      ectologger.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(resolutions Resolutions, logger ectologger.Logger) *ImportHandler {
	return &ImportHandler{resolutions: resolutions, logger: logger}
}

type sessionRequest struct {
	SessionID string `param:"session_id" validate:"required"`
}

// DecisionRequest is an operator decision for one row
type DecisionRequest struct {
	SessionID string                `param:"session_id" validate:"required"`
	RowNumber int                   `param:"row_number" validate:"gt=0"`
	Action    models.DecisionAction `json:"action" validate:"required,oneof=create update skip"`
	PersonID  *int64                `json:"person_id"`
}

// Open starts resolving a session, committing it at once when nothing needs a decision
// POST /api/v1/imports/:session_id/resolution
func (h *ImportHandler) Open(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.ImportHandler.Open")
	defer span.End()

	req, err := utils.BindRequest[sessionRequest](c)
	if err != nil {
		return err
	}

	view, err := h.resolutions.Open(ctx, req.SessionID)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if view.Status == resolution.StatusCommitted {
		status = http.StatusCreated
	}
	return c.JSON(status, view.Localize(appctx.GetLocale(ctx)))
}

// Get returns the review state of an open session
// GET /api/v1/imports/:session_id/resolution
func (h *ImportHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[sessionRequest](c)
	if err != nil {
		return err
	}

	view, err := h.resolutions.Get(ctx, req.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.Localize(appctx.GetLocale(ctx)))
}

// Decide records a decision for a row
// PUT /api/v1/imports/:session_id/resolution/rows/:row_number
func (h *ImportHandler) Decide(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.ImportHandler.Decide")
	defer span.End()

	req, err := utils.BindRequest[DecisionRequest](c)
	if err != nil {
		return err
	}

	view, err := h.resolutions.Choose(ctx, req.SessionID, req.RowNumber, req.Action, req.PersonID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.Localize(appctx.GetLocale(ctx)))
}

// Confirm commits the decisions of a session
// POST /api/v1/imports/:session_id/resolution/confirm
func (h *ImportHandler) Confirm(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.ImportHandler.Confirm")
	defer span.End()

	req, err := utils.BindRequest[sessionRequest](c)
	if err != nil {
		return err
	}

	view, err := h.resolutions.Confirm(ctx, req.SessionID)
	if err != nil {
		h.logger.WithContext(ctx).WithField("session_id", req.SessionID).WithError(err).Warn("Import commit rejected")
		return err
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id":  req.SessionID,
		"operator_id": appctx.GetOperatorID(ctx),
	}).Info("Import committed")
	return c.JSON(http.StatusOK, view.Localize(appctx.GetLocale(ctx)))
}

// Cancel abandons a session
// DELETE /api/v1/imports/:session_id/resolution
func (h *ImportHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[sessionRequest](c)
	if err != nil {
		return err
	}

	if err := h.resolutions.Cancel(ctx, req.SessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RegisterRoutes registers the import resolution routes
func (h *ImportHandler) RegisterRoutes(g *echo.Group) {
	r := g.Group("/imports/:session_id/resolution")
	r.POST("", h.Open)
	r.GET("", h.Get)
	r.DELETE("", h.Cancel)
	r.PUT("/rows/:row_number", h.Decide)
	r.POST("/confirm", h.Confirm)
}
