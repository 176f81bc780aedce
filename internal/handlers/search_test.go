package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/search"
)

type fakePersons struct {
	people    []models.Person
	lastType  string
	callCount int
}

func (f *fakePersons) ListActive(_ context.Context, personType string) ([]models.Person, error) {
	f.callCount++
	f.lastType = personType
	return f.people, nil
}

type fakeCompanies struct{}

func (fakeCompanies) ListActive(context.Context, string) ([]models.Company, error) {
	return []models.Company{{ID: 1, Name: "Мосфильм"}}, nil
}

type fakeProjects struct{}

func (fakeProjects) List(context.Context, string) ([]models.Project, error) {
	return nil, nil
}

type searchBody struct {
	Collection string `json:"collection"`
	Query      string `json:"query"`
	Total      int    `json:"total"`
	Results    []struct {
		Item       map[string]any `json:"item"`
		Confidence float64        `json:"confidence"`
		Category   string         `json:"category"`
		Color      string         `json:"color"`
		Label      string         `json:"label"`
	} `json:"results"`
}

func newSearchServer(t *testing.T) (*echo.Echo, *fakePersons) {
	t.Helper()

	persons := &fakePersons{people: []models.Person{
		{ID: 1, PersonType: models.PersonTypeArtist, FirstName: "Иван", LastName: "Петров"},
		{ID: 2, PersonType: models.PersonTypeArtist, FirstName: "Анна", LastName: "Сидорова"},
	}}

	svc, err := search.NewService(persons, fakeCompanies{}, fakeProjects{}, search.Config{
		PersonThreshold:  0.4,
		CompanyThreshold: 0.4,
		ProjectThreshold: 0.4,
		DefaultLimit:     10,
	}, testLogger())
	require.NoError(t, err)

	h := NewSearchHandler(svc, testLogger())
	return newTestServer(func(_ *echo.Echo, api *echo.Group) { h.RegisterRoutes(api) }), persons
}

func TestSearchHandler(t *testing.T) {
	t.Run("ranks the collection", func(t *testing.T) {
		e, persons := newSearchServer(t)

		res := do(e, http.MethodGet, "/api/v1/search/persons?q=петров&type=artist", "")
		require.Equal(t, http.StatusOK, res.code, string(res.body))

		var body searchBody
		res.decode(t, &body)
		assert.Equal(t, "persons", body.Collection)
		require.Equal(t, 1, body.Total)
		assert.EqualValues(t, 1, body.Results[0].Item["id"])
		assert.Equal(t, 1.0, body.Results[0].Confidence)
		assert.Equal(t, "exact", body.Results[0].Category)
		assert.Equal(t, "Точное совпадение", body.Results[0].Label)
		assert.Equal(t, "artist", persons.lastType)
	})

	t.Run("labels follow Accept-Language", func(t *testing.T) {
		e, _ := newSearchServer(t)

		res := do(e, http.MethodGet, "/api/v1/search/companies?q=мосфильм", "", "Accept-Language", "en")
		require.Equal(t, http.StatusOK, res.code)

		var body searchBody
		res.decode(t, &body)
		require.Len(t, body.Results, 1)
		assert.Equal(t, "Exact match", body.Results[0].Label)
	})

	t.Run("blank query", func(t *testing.T) {
		e, persons := newSearchServer(t)

		res := do(e, http.MethodGet, "/api/v1/search/persons?q=", "")
		require.Equal(t, http.StatusOK, res.code)

		var body searchBody
		res.decode(t, &body)
		assert.Equal(t, 0, body.Total)
		assert.Empty(t, body.Results)
		assert.Zero(t, persons.callCount)
	})

	t.Run("bad requests", func(t *testing.T) {
		e, _ := newSearchServer(t)

		tests := []struct {
			name   string
			target string
			status int
		}{
			{"unknown collection", "/api/v1/search/castings?q=x", http.StatusNotFound},
			{"limit too large", "/api/v1/search/persons?q=x&limit=500", http.StatusBadRequest},
			{"limit not a number", "/api/v1/search/persons?q=x&limit=ten", http.StatusBadRequest},
			{"min confidence not a number", "/api/v1/search/persons?q=x&min_confidence=high", http.StatusBadRequest},
			{"min confidence out of range", "/api/v1/search/persons?q=x&min_confidence=1.5", http.StatusBadRequest},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.status, do(e, http.MethodGet, tt.target, "").code)
			})
		}
	})
}
