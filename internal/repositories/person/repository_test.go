package person

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
)

type fakeDB struct {
	query  string
	args   []any
	people []models.Person
	err    error
}

func (f *fakeDB) GetContext(context.Context, any, string, ...any) error { return errors.New("unused") }
func (f *fakeDB) PingContext(context.Context) error                     { return nil }
func (f *fakeDB) Close() error                                          { return nil }

func (f *fakeDB) SelectContext(_ context.Context, dest any, query string, args ...any) error {
	f.query = query
	f.args = args
	if f.err != nil {
		return f.err
	}
	*dest.(*[]models.Person) = f.people
	return nil
}

var testLogger = ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

func TestRepository_ListActive(t *testing.T) {
	db := &fakeDB{people: []models.Person{{ID: 1, FirstName: "Иван"}}}
	repo := NewRepository(db, testLogger)

	people, err := repo.ListActive(context.Background(), "artist")

	require.NoError(t, err)
	assert.Len(t, people, 1)
	assert.Contains(t, db.query, "FROM persons")
	assert.Contains(t, db.query, "is_active = $1")
	assert.Contains(t, db.query, "person_type = $2")
	assert.Contains(t, db.query, "ORDER BY id")
	assert.Equal(t, []any{true, "artist"}, db.args)
}

func TestRepository_ListActive_AllTypes(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db, testLogger)

	_, err := repo.ListActive(context.Background(), "")

	require.NoError(t, err)
	assert.NotContains(t, db.query, "person_type =")
	assert.Equal(t, []any{true}, db.args)
}

func TestRepository_ListActive_Error(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	repo := NewRepository(db, testLogger)

	_, err := repo.ListActive(context.Background(), "contact")

	assert.ErrorContains(t, err, "connection reset")
}
