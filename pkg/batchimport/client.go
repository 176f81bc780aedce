// Package batchimport talks to the batch-import service, which owns import
// sessions, duplicate detection and the bulk write of decided rows.
package batchimport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/httpclient"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing"
)

// Client is the batch-import API client. It satisfies resolution.SessionSource and resolution.Committer.
type Client struct {
	baseURL string
	token   string
	http    *httpclient.Client
	logger  ectologger.Logger
}

// NewClient creates a batch-import client rooted at baseURL, e.g. http://host/api/v1.
func NewClient(baseURL, token string, httpClient *httpclient.Client, logger ectologger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
		logger:  logger,
	}
}

// GetSession fetches an import session with its duplicate-annotated preview rows.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*models.ImportSession, error) {
	ctx, span := tracing.StartSpan(ctx, "batchimport.Client.GetSession")
	defer span.End()

	resp, err := c.http.Get(ctx, c.sessionURL(sessionID), c.headers())
	if err != nil {
		return nil, httperror.WrapError(http.StatusBadGateway, err)
	}
	if !resp.IsSuccess() {
		return nil, upstreamError(resp, "failed to load import session")
	}

	var session models.ImportSession
	if err := resp.DecodeJSON(&session); err != nil {
		return nil, httperror.WrapError(http.StatusBadGateway, err)
	}
	if session.SessionID == "" {
		session.SessionID = sessionID
	}
	if err := checkMatchScores(&session); err != nil {
		c.logger.WithContext(ctx).WithField("session_id", sessionID).WithError(err).Warn("Rejected import session")
		return nil, err
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": sessionID,
		"rows":       len(session.RecordsData.Preview),
	}).Debug("Loaded import session")

	return &session, nil
}

// Commit sends the decision list and returns the bulk write summary.
func (c *Client) Commit(ctx context.Context, sessionID string, decisions []models.ImportDecision) (*models.CommitResult, error) {
	ctx, span := tracing.StartSpan(ctx, "batchimport.Client.Commit")
	defer span.End()

	resp, err := c.http.PostJSON(ctx, c.sessionURL(sessionID)+"confirm/", models.CommitRequest{Decisions: decisions}, c.headers())
	if err != nil {
		return nil, httperror.WrapError(http.StatusBadGateway, err)
	}
	if !resp.IsSuccess() {
		return nil, upstreamError(resp, "import commit was rejected")
	}

	var result models.CommitResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, httperror.WrapError(http.StatusBadGateway, err)
	}
	return &result, nil
}

// checkMatchScores rejects sessions whose duplicate scores are not 0-100 percentages.
func checkMatchScores(session *models.ImportSession) error {
	for _, row := range session.RecordsData.Preview {
		for _, d := range row.PotentialDuplicates {
			if d.MatchScore < 0 || d.MatchScore > 100 {
				return httperror.NewHTTPErrorf(http.StatusBadGateway,
					"import session %s row %d: match_score %d for person %d is outside 0-100",
					session.SessionID, row.RowNumber, d.MatchScore, d.PersonID)
			}
		}
	}
	return nil
}

func (c *Client) sessionURL(sessionID string) string {
	return fmt.Sprintf("%s/imports/%s/", c.baseURL, url.PathEscape(sessionID))
}

func (c *Client) headers() map[string]string {
	headers := map[string]string{"Accept": "application/json"}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}
	return headers
}

// upstreamError keeps the upstream status and the detail the service sent back.
func upstreamError(resp *httpclient.Response, fallback string) error {
	var body struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		for _, detail := range []string{body.Detail, body.Error, body.Message} {
			if detail != "" {
				return httperror.NewHTTPErrorf(resp.StatusCode, "%s: %s", fallback, detail)
			}
		}
	}
	return httperror.NewHTTPError(resp.StatusCode, fallback)
}
