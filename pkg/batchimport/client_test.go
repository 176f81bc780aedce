package batchimport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/httpclient"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
)

var testLogger = ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api/v1/", "secret", httpclient.NewClient(httpclient.DefaultConfig(), testLogger), testLogger)
}

func TestClient_GetSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/imports/abc-123/", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"session_id": "abc-123",
			"status": "preview",
			"records_data": {"preview": [
				{"row_number": 1, "data": {"last_name": "Петров"}, "validation_errors": [], "potential_duplicates": []},
				{"row_number": 2, "data": {"last_name": "Иванова"}, "validation_errors": [],
				 "potential_duplicates": [{"person_id": 42, "match_score": 87, "match_reasons": ["phone"], "existing_data": {"last_name": "Иванова"}}]}
			]}
		}`))
	})

	session, err := client.GetSession(context.Background(), "abc-123")

	require.NoError(t, err)
	assert.Equal(t, "abc-123", session.SessionID)
	require.Len(t, session.RecordsData.Preview, 2)
	row := session.RecordsData.Preview[1]
	assert.Equal(t, 2, row.RowNumber)
	require.Len(t, row.PotentialDuplicates, 1)
	assert.Equal(t, int64(42), row.PotentialDuplicates[0].PersonID)
	assert.Equal(t, 0.87, row.PotentialDuplicates[0].Confidence())
	assert.JSONEq(t, `{"last_name": "Иванова"}`, string(row.Data))
}

func TestClient_GetSession_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Сессия не найдена"}`))
	})

	_, err := client.GetSession(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err))
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	assert.Contains(t, err.Error(), "Сессия не найдена")
}

func TestClient_GetSession_MatchScoreOutOfRange(t *testing.T) {
	for _, score := range []string{"150", "-1"} {
		t.Run(score, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"session_id": "abc-123", "records_data": {"preview": [
					{"row_number": 4, "data": {}, "potential_duplicates": [{"person_id": 42, "match_score": ` + score + `}]}
				]}}`))
			})

			session, err := client.GetSession(context.Background(), "abc-123")

			require.Error(t, err)
			assert.Nil(t, session)
			assert.True(t, httperror.IsHTTPError(err))
			assert.Equal(t, http.StatusBadGateway, httperror.GetStatusCode(err))
		})
	}
}

func TestClient_Commit(t *testing.T) {
	personID := int64(42)
	decisions := []models.ImportDecision{
		{RowNumber: 1, Action: models.ActionCreate},
		{RowNumber: 2, Action: models.ActionUpdate, PersonID: &personID},
		{RowNumber: 3, Action: models.ActionSkip},
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/imports/abc-123/confirm/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body["decisions"], 3)
		first := body["decisions"].([]any)[0].(map[string]any)
		assert.NotContains(t, first, "person_id")

		_, _ = w.Write([]byte(`{"created": 1, "updated": 1, "skipped": 1, "errors": 0,
			"details": [{"row_number": 2, "action": "update", "person_id": 42}]}`))
	})

	result, err := client.Commit(context.Background(), "abc-123", decisions)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Details, 1)
	assert.Equal(t, models.ActionUpdate, result.Details[0].Action)
}

func TestClient_Commit_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.Commit(context.Background(), "abc-123", nil)

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	assert.Contains(t, err.Error(), "import commit was rejected")
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(server.URL, "", httpclient.NewClient(httpclient.DefaultConfig(), testLogger), testLogger)

	_, err := client.GetSession(context.Background(), "abc")

	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, httperror.GetStatusCode(err))
}
