package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/confidence"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/fuzzy"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
)

type fakePersons struct {
	byType map[string][]models.Person
	calls  int
	err    error
}

func (f *fakePersons) ListActive(_ context.Context, personType string) ([]models.Person, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if personType == "" {
		var all []models.Person
		for _, people := range f.byType {
			all = append(all, people...)
		}
		return all, nil
	}
	return f.byType[personType], nil
}

type fakeCompanies struct{ companies []models.Company }

func (f *fakeCompanies) ListActive(context.Context, string) ([]models.Company, error) {
	return f.companies, nil
}

type fakeProjects struct{ projects []models.Project }

func (f *fakeProjects) List(context.Context, string) ([]models.Project, error) {
	return f.projects, nil
}

func testConfig() Config {
	return Config{
		PersonThreshold:  0.4,
		CompanyThreshold: 0.4,
		ProjectThreshold: 0.4,
		DefaultLimit:     10,
	}
}

func newTestService(t *testing.T, persons *fakePersons) *Service {
	t.Helper()
	svc, err := NewService(
		persons,
		&fakeCompanies{companies: []models.Company{
			{ID: 1, Name: "Мосфильм"},
			{ID: 2, Name: "Ленфильм"},
			{ID: 3, Name: "Амедиа"},
		}},
		&fakeProjects{projects: []models.Project{
			{ID: 1, Title: "Мастер и Маргарита", Genre: "драма"},
			{ID: 2, Title: "Вызов", Genre: "фантастика"},
		}},
		testConfig(),
		ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}),
	)
	require.NoError(t, err)
	return svc
}

func testPersons() *fakePersons {
	return &fakePersons{byType: map[string][]models.Person{
		"artist": {
			{ID: 1, PersonType: models.PersonTypeArtist, FirstName: "Иван", LastName: "Петров"},
			{ID: 2, PersonType: models.PersonTypeArtist, FirstName: "Мария", LastName: "Иванова"},
		},
		"contact": {
			{ID: 3, PersonType: models.PersonTypeContact, FirstName: "Анна", LastName: "Петрова", Email: "anna@agency.ru"},
		},
	}}
}

func TestNewService_InvalidThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.CompanyThreshold = 2

	_, err := NewService(&fakePersons{}, &fakeCompanies{}, &fakeProjects{}, cfg, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))

	assert.ErrorIs(t, err, fuzzy.ErrInvalidConfig)
}

func TestService_SearchPersonsByType(t *testing.T) {
	persons := testPersons()
	svc := newTestService(t, persons)

	resp, err := svc.Search(context.Background(), Query{Collection: Persons, Text: "Петров", Type: "artist"})

	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, resp.Total, len(resp.Results))
	first := resp.Results[0]
	assert.Equal(t, int64(1), first.Item.(models.Person).ID)
	assert.Equal(t, 1.0, first.Confidence())
	assert.Equal(t, confidence.Exact, first.Category)
	assert.Equal(t, confidence.FullPalette[confidence.Exact], first.Color)
	assert.NotEmpty(t, first.Matches)

	for _, hit := range resp.Results {
		assert.Equal(t, models.PersonTypeArtist, hit.Item.(models.Person).PersonType)
	}
	assert.Equal(t, []Hit{first}, resp.Groups[confidence.Exact][:1])
}

func TestService_BlankQueryDoesNotLoad(t *testing.T) {
	persons := testPersons()
	svc := newTestService(t, persons)

	resp, err := svc.Search(context.Background(), Query{Collection: Persons, Text: "   "})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)
	assert.Equal(t, 0, persons.calls)
}

func TestService_RefreshesOnEveryQuery(t *testing.T) {
	persons := testPersons()
	svc := newTestService(t, persons)
	ctx := context.Background()

	resp, err := svc.Search(ctx, Query{Collection: Persons, Text: "Иванова", Type: "artist"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	persons.byType["artist"] = persons.byType["artist"][:1]

	resp, err = svc.Search(ctx, Query{Collection: Persons, Text: "Иванова", Type: "artist"})
	require.NoError(t, err)
	for _, hit := range resp.Results {
		assert.NotEqual(t, int64(2), hit.Item.(models.Person).ID)
	}
	assert.Equal(t, 2, persons.calls)
}

func TestService_MinConfidenceAndLimit(t *testing.T) {
	svc := newTestService(t, testPersons())
	ctx := context.Background()

	minConf := 0.95
	resp, err := svc.Search(ctx, Query{Collection: Companies, Text: "фильм", MinConfidence: &minConf})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)

	resp, err = svc.Search(ctx, Query{Collection: Companies, Text: "фильм", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, int64(1), resp.Results[0].Item.(models.Company).ID)
}

func TestService_Projects(t *testing.T) {
	svc := newTestService(t, testPersons())

	resp, err := svc.Search(context.Background(), Query{Collection: Projects, Text: "маргарита", Locale: language.English})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Exact match", resp.Results[0].Label)
}

func TestService_InvalidQueries(t *testing.T) {
	svc := newTestService(t, testPersons())
	ctx := context.Background()

	_, err := svc.Search(ctx, Query{Collection: "films", Text: "x"})
	assert.ErrorIs(t, err, ErrUnknownCollection)

	_, err = svc.Search(ctx, Query{Text: "x"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	bad := 1.5
	_, err = svc.Search(ctx, Query{Collection: Persons, Text: "x", MinConfidence: &bad})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = svc.Search(ctx, Query{Collection: Persons, Text: "x", Limit: -1})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestService_SourceError(t *testing.T) {
	persons := testPersons()
	persons.err = errors.New("db down")
	svc := newTestService(t, persons)

	_, err := svc.Search(context.Background(), Query{Collection: Persons, Text: "Петров"})

	assert.EqualError(t, err, "db down")
}

func TestIndex_ConcurrentSearchesSeeTheirOwnItems(t *testing.T) {
	ix, err := newIndex[fuzzy.Record](0, []string{"name"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("item-%03d", i)

			results := ix.search("", []fuzzy.Record{{"name": name}}, name, 0, 0)

			if assert.Len(t, results, 1) {
				assert.Equal(t, name, results[0].Item["name"])
			}
		}(i)
	}
	wg.Wait()
}
