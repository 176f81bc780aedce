package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/appctx"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/search"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/utils"
)

// Searcher ranks a collection for a query
type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Response, error)
}

// SearchHandler handles the quick search panels
type SearchHandler struct {
	searcher Searcher
	logger   ectologger.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher Searcher, logger ectologger.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, logger: logger}
}

// SearchRequest is the query string of a search
type SearchRequest struct {
	Collection    string `param:"collection" validate:"required"`
	Query         string `query:"q"`
	Type          string `query:"type"`
	MinConfidence string `query:"min_confidence"`
	Limit         int    `query:"limit" validate:"gte=0,lte=100"`
}

// Search ranks a collection
// GET /api/v1/search/:collection
func (h *SearchHandler) Search(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.SearchHandler.Search")
	defer span.End()

	req, err := utils.BindRequest[SearchRequest](c)
	if err != nil {
		return err
	}

	q := search.Query{
		Collection: req.Collection,
		Text:       req.Query,
		Type:       req.Type,
		Limit:      req.Limit,
		Locale:     appctx.GetLocale(ctx),
	}
	if req.MinConfidence != "" {
		minConfidence, err := strconv.ParseFloat(req.MinConfidence, 64)
		if err != nil {
			return httperror.NewHTTPErrorf(http.StatusBadRequest, "min_confidence must be a number, got %q", req.MinConfidence)
		}
		q.MinConfidence = &minConfidence
	}

	response, err := h.searcher.Search(ctx, q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response)
}

// RegisterRoutes registers the search routes
func (h *SearchHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/search/:collection", h.Search)
}
